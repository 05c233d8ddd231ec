package mongodb

import (
	"context"
	"fmt"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/models"
	"swapcash/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rateRepository struct {
	collection *mongo.Collection
}

func NewRateRepository(db *mongo.Database) interfaces.RateRepository {
	return &rateRepository{
		collection: db.Collection("rate_settings"),
	}
}

func (r *rateRepository) GetByCurrency(ctx context.Context, currency string) (*models.RateSetting, error) {
	var setting models.RateSetting
	err := r.collection.FindOne(ctx, bson.M{"currency": currency}).Decode(&setting)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrRateNotFound
		}
		return nil, fmt.Errorf("failed to get rate setting: %w", err)
	}

	return &setting, nil
}

func (r *rateRepository) List(ctx context.Context) ([]*models.RateSetting, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list rate settings: %w", err)
	}
	defer cursor.Close(ctx)

	var settings []*models.RateSetting
	for cursor.Next(ctx) {
		var setting models.RateSetting
		if err := cursor.Decode(&setting); err != nil {
			return nil, fmt.Errorf("failed to decode rate setting: %w", err)
		}
		settings = append(settings, &setting)
	}

	return settings, nil
}

func (r *rateRepository) Upsert(ctx context.Context, setting *models.RateSetting) error {
	setting.UpdatedAt = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"currency": setting.Currency},
		bson.M{"$set": setting},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rate setting: %w", err)
	}

	return nil
}
