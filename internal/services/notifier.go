package services

// Notifier is the outbound chat channel. Implementations are fire-and-forget:
// delivery failures are logged and never propagated, so a notification can
// never roll back or block the state mutation that triggered it. Services
// dispatch notifications only after the mutation has committed.
type Notifier interface {
	NotifyUser(telegramID int64, message string)
	NotifyAdmins(message string)
}

// NopNotifier discards all notifications. Used when the bot is not configured
// and in tests.
type NopNotifier struct{}

func (NopNotifier) NotifyUser(telegramID int64, message string) {}

func (NopNotifier) NotifyAdmins(message string) {}
