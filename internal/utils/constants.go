package utils

import "time"

// Application Constants
const (
	AppName    = "SwapCash"
	AppVersion = "1.0.0"

	// Default values
	DefaultFiatCurrency = "XAF"
	DefaultTimeZone     = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Referral
	ReferralCodeLength = 8

	// Exchange
	MinBuyAmount     = 1000.0   // XAF
	MaxBuyAmount     = 500000.0 // XAF
	MinSellAmountXAF = 500.0

	// KYC
	MaxDocumentSize = 10 * 1024 * 1024 // 10MB

	// Notification
	NotificationTimeout = 30 * time.Second
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Common error messages
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized"
	ErrForbidden        = "Forbidden"
)

// SupportedCurrencies are the crypto legs the desk trades against XAF.
var SupportedCurrencies = []string{"BTC", "USDT", "TRX"}

func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}
