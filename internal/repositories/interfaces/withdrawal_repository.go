package interfaces

import (
	"context"

	"swapcash/internal/models"
	"swapcash/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *models.Withdrawal) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error)
	GetByTelegramID(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error)
	ListByStatus(ctx context.Context, status models.WithdrawalStatus, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error)

	// Resolve flips status pending->terminal with compare-and-set
	// semantics and reports false when the withdrawal was already
	// terminal. This is the fencing step for rejection refunds.
	Resolve(ctx context.Context, id primitive.ObjectID, status models.WithdrawalStatus) (bool, error)

	// MarkRefundCredited flips refund_credited false->true with
	// compare-and-set semantics on a cancelled withdrawal. Only the
	// caller that observes true owns the compensating credit.
	MarkRefundCredited(ctx context.Context, id primitive.ObjectID) (bool, error)

	// FindInterruptedRejections lists cancelled withdrawals whose
	// compensating credit never committed (rejection interrupted between
	// the status flip and the credit).
	FindInterruptedRejections(ctx context.Context) ([]*models.Withdrawal, error)
}
