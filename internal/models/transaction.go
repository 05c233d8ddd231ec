package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string
type TransactionStatus string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"

	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

type Transaction struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TelegramID      int64              `json:"telegram_id" bson:"telegram_id" validate:"required"`
	Type            TransactionType    `json:"type" bson:"type" validate:"required"`
	Status          TransactionStatus  `json:"status" bson:"status" default:"pending"`
	AmountToSend    float64            `json:"amount_to_send" bson:"amount_to_send" validate:"required"`
	AmountToReceive float64            `json:"amount_to_receive" bson:"amount_to_receive" validate:"required"`
	CurrencyFrom    string             `json:"currency_from" bson:"currency_from" validate:"required"`
	CurrencyTo      string             `json:"currency_to" bson:"currency_to" validate:"required"`
	WalletAddress   string             `json:"wallet_address" bson:"wallet_address"`
	MomoNumber      string             `json:"momo_number" bson:"momo_number"`
	ResolvedAt      *time.Time         `json:"resolved_at" bson:"resolved_at"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsTerminal reports whether the transaction has reached a final status.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted || t.Status == TransactionStatusCancelled
}
