package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusCancelled WithdrawalStatus = "cancelled"
)

// Withdrawal is a reward payout request. The amount is debited from the
// requester's referral_earnings at request time, so a pending withdrawal
// already holds its reservation.
type Withdrawal struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TelegramID     int64              `json:"telegram_id" bson:"telegram_id" validate:"required"`
	Amount         float64            `json:"amount" bson:"amount" validate:"required"`
	MomoNumber     string             `json:"momo_number" bson:"momo_number"`
	Status         WithdrawalStatus   `json:"status" bson:"status" default:"pending"`
	RefundCredited bool               `json:"refund_credited" bson:"refund_credited" default:"false"`
	ResolvedAt     *time.Time         `json:"resolved_at" bson:"resolved_at"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

func (w *Withdrawal) IsTerminal() bool {
	return w.Status == WithdrawalStatusCompleted || w.Status == WithdrawalStatusCancelled
}
