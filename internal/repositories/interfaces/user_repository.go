package interfaces

import (
	"context"

	"swapcash/internal/models"
	"swapcash/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetByReferralCode(ctx context.Context, code string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Atomic referral primitives. These are the only allowed mutations of
	// is_active, referral_count and referral_earnings: conditional writes
	// and pure-delta increments, never read-modify-write.

	// MarkActive flips is_active false->true with compare-and-set
	// semantics. It reports false when the user was already active (the
	// write matched no document), so racing qualifying events resolve to
	// exactly one winner.
	MarkActive(ctx context.Context, id primitive.ObjectID) (bool, error)

	// IncrementReferralCount applies a pure $inc to referral_count.
	IncrementReferralCount(ctx context.Context, id primitive.ObjectID, delta int64) error

	// CreditEarnings applies a pure $inc of amount to referral_earnings.
	CreditEarnings(ctx context.Context, telegramID int64, amount float64) error

	// DebitEarnings decrements referral_earnings by amount only when the
	// current balance covers it; otherwise it returns
	// apperrors.ErrInsufficientEarnings and mutates nothing.
	DebitEarnings(ctx context.Context, telegramID int64, amount float64) error

	// Listing
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error)
	ListReferredBy(ctx context.Context, code string, params *utils.PaginationParams) ([]*models.User, int64, error)
}
