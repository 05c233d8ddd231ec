package interfaces

import (
	"context"
	"time"

	"swapcash/internal/models"
	"swapcash/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	GetByTelegramID(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	ListByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error)

	// Resolve flips status pending->terminal with compare-and-set
	// semantics and reports false when the transaction was already
	// terminal. Terminal states never transition again.
	Resolve(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) (bool, error)

	// MonthlyVolume sums amount_to_receive over the user's completed sell
	// transactions created within the calendar month containing asOf.
	MonthlyVolume(ctx context.Context, telegramID int64, asOf time.Time) (float64, error)
}
