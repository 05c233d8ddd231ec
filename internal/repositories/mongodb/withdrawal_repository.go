package mongodb

import (
	"context"
	"fmt"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/models"
	"swapcash/internal/repositories/interfaces"
	"swapcash/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type withdrawalRepository struct {
	collection *mongo.Collection
}

func NewWithdrawalRepository(db *mongo.Database) interfaces.WithdrawalRepository {
	return &withdrawalRepository{
		collection: db.Collection("withdrawals"),
	}
}

func (r *withdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	withdrawal.ID = primitive.NewObjectID()
	withdrawal.Status = models.WithdrawalStatusPending
	withdrawal.RefundCredited = false
	withdrawal.CreatedAt = time.Now()
	withdrawal.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, withdrawal)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}

	return nil
}

func (r *withdrawalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&withdrawal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}

	return &withdrawal, nil
}

func (r *withdrawalRepository) GetByTelegramID(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error) {
	return r.findWithFilter(ctx, bson.M{"telegram_id": telegramID}, params)
}

func (r *withdrawalRepository) ListByStatus(ctx context.Context, status models.WithdrawalStatus, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error) {
	return r.findWithFilter(ctx, bson.M{"status": status}, params)
}

// Resolve conditions the status flip on the withdrawal still being pending.
// The returned bool is the fence: only the caller that observes true owns
// the follow-up effects (the rejection refund).
func (r *withdrawalRepository) Resolve(ctx context.Context, id primitive.ObjectID, status models.WithdrawalStatus) (bool, error) {
	now := time.Now()
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.WithdrawalStatusPending},
		bson.M{"$set": bson.M{
			"status":      status,
			"resolved_at": now,
			"updated_at":  now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to resolve withdrawal: %w", err)
	}

	return result.ModifiedCount == 1, nil
}

// MarkRefundCredited flips refund_credited false->true on a cancelled
// withdrawal. The returned bool is the fence for the compensating credit:
// only the caller that observes true may apply it, so a rejection and the
// reconciliation sweep can never both refund the same withdrawal.
func (r *withdrawalRepository) MarkRefundCredited(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":             id,
			"status":          models.WithdrawalStatusCancelled,
			"refund_credited": false,
		},
		bson.M{"$set": bson.M{"refund_credited": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark refund credited: %w", err)
	}

	return result.ModifiedCount == 1, nil
}

func (r *withdrawalRepository) FindInterruptedRejections(ctx context.Context) ([]*models.Withdrawal, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"status":          models.WithdrawalStatusCancelled,
		"refund_credited": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find interrupted rejections: %w", err)
	}
	defer cursor.Close(ctx)

	var withdrawals []*models.Withdrawal
	for cursor.Next(ctx) {
		var withdrawal models.Withdrawal
		if err := cursor.Decode(&withdrawal); err != nil {
			return nil, fmt.Errorf("failed to decode withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, &withdrawal)
	}

	return withdrawals, nil
}

func (r *withdrawalRepository) findWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count withdrawals: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find withdrawals: %w", err)
	}
	defer cursor.Close(ctx)

	var withdrawals []*models.Withdrawal
	for cursor.Next(ctx) {
		var withdrawal models.Withdrawal
		if err := cursor.Decode(&withdrawal); err != nil {
			return nil, 0, fmt.Errorf("failed to decode withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, &withdrawal)
	}

	return withdrawals, total, nil
}
