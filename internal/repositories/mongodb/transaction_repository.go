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

type transactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) interfaces.TransactionRepository {
	return &transactionRepository{
		collection: db.Collection("transactions"),
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	tx.ID = primitive.NewObjectID()
	tx.Status = models.TransactionStatusPending
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &tx, nil
}

func (r *transactionRepository) GetByTelegramID(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return r.findWithFilter(ctx, bson.M{"telegram_id": telegramID}, params)
}

func (r *transactionRepository) ListByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return r.findWithFilter(ctx, bson.M{"status": status}, params)
}

// Resolve conditions the status flip on the transaction still being pending.
// A transaction that already reached a terminal status is never modified.
func (r *transactionRepository) Resolve(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) (bool, error) {
	now := time.Now()
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.TransactionStatusPending},
		bson.M{"$set": bson.M{
			"status":      status,
			"resolved_at": now,
			"updated_at":  now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to resolve transaction: %w", err)
	}

	return result.ModifiedCount == 1, nil
}

// MonthlyVolume sums amount_to_receive over completed sell transactions in
// the calendar month containing asOf. Buys are excluded: their
// amount_to_receive is denominated in crypto, not in the fiat the limit
// tracks.
func (r *transactionRepository) MonthlyVolume(ctx context.Context, telegramID int64, asOf time.Time) (float64, error) {
	from, to := utils.MonthRange(asOf)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"telegram_id": telegramID,
			"type":        models.TransactionTypeSell,
			"status":      models.TransactionStatusCompleted,
			"created_at":  bson.M{"$gte": from, "$lte": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount_to_receive"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate monthly volume: %w", err)
	}
	defer cursor.Close(ctx)

	if cursor.Next(ctx) {
		var result struct {
			Total float64 `bson:"total"`
		}
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode monthly volume: %w", err)
		}
		return result.Total, nil
	}

	return 0, nil
}

func (r *transactionRepository) findWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*models.Transaction
	for cursor.Next(ctx) {
		var tx models.Transaction
		if err := cursor.Decode(&tx); err != nil {
			return nil, 0, fmt.Errorf("failed to decode transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	return transactions, total, nil
}
