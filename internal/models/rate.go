package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RateSetting holds the admin-set exchange rates for one crypto currency
// against the mobile-money fiat (XAF). BuyRate prices a user buying crypto
// with fiat, SellRate prices a user selling crypto for fiat.
type RateSetting struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Currency  string             `json:"currency" bson:"currency" validate:"required"`
	BuyRate   float64            `json:"buy_rate" bson:"buy_rate" validate:"required"`
	SellRate  float64            `json:"sell_rate" bson:"sell_rate" validate:"required"`
	MinBuy    float64            `json:"min_buy" bson:"min_buy"`
	MaxBuy    float64            `json:"max_buy" bson:"max_buy"`
	MinSell   float64            `json:"min_sell" bson:"min_sell"`
	MaxSell   float64            `json:"max_sell" bson:"max_sell"`
	UpdatedBy string             `json:"updated_by" bson:"updated_by"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
