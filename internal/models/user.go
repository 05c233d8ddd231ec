package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string
type KYCStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	KYCStatusNone     KYCStatus = "none"
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

type User struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TelegramID       int64              `json:"telegram_id" bson:"telegram_id" validate:"required"`
	Username         string             `json:"username" bson:"username"`
	FirstName        string             `json:"first_name" bson:"first_name"`
	Phone            string             `json:"phone" bson:"phone"`
	Status           UserStatus         `json:"status" bson:"status" default:"active"`
	ReferralCode     string             `json:"referral_code" bson:"referral_code"`
	ReferredBy       string             `json:"referred_by,omitempty" bson:"referred_by,omitempty"`
	IsActive         bool               `json:"is_active" bson:"is_active" default:"false"`
	ReferralCount    int64              `json:"referral_count" bson:"referral_count" default:"0"`
	ReferralEarnings float64            `json:"referral_earnings" bson:"referral_earnings" default:"0"`
	KYCStatus        KYCStatus          `json:"kyc_status" bson:"kyc_status" default:"none"`
	LastActiveAt     *time.Time         `json:"last_active_at" bson:"last_active_at"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasReferrer reports whether the user was created citing someone's referral code.
func (u *User) HasReferrer() bool {
	return u.ReferredBy != ""
}
