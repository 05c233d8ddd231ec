package apperrors

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the given identifier
	// or referral code.
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionNotFound is returned for an unknown transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrWithdrawalNotFound is returned for an unknown withdrawal id.
	ErrWithdrawalNotFound = errors.New("withdrawal not found")

	// ErrRateNotFound is returned when no rate setting exists for a currency.
	ErrRateNotFound = errors.New("rate setting not found")

	// ErrAlreadyProcessed marks an idempotent no-op: the record already
	// reached a terminal state (or the user is already active). Callers
	// treat it as success with no change.
	ErrAlreadyProcessed = errors.New("already processed")

	// ErrInsufficientEarnings rejects a debit that would drive the
	// referral earnings balance negative. The balance is never clamped.
	ErrInsufficientEarnings = errors.New("insufficient referral earnings")

	// ErrSellLimitExceeded rejects a sell that would push the trailing
	// calendar-month volume over the configured limit.
	ErrSellLimitExceeded = errors.New("monthly sell limit exceeded")

	// ErrInvalidCredentials is returned on a failed admin login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsNoOp reports whether err signals an idempotent skip rather than a failure.
func IsNoOp(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed)
}
