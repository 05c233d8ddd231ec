package mongodb

import (
	"context"
	"fmt"
	"time"

	"swapcash/internal/models"
	"swapcash/internal/repositories/interfaces"
	"swapcash/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type kycRepository struct {
	collection *mongo.Collection
}

func NewKYCRepository(db *mongo.Database) interfaces.KYCRepository {
	return &kycRepository{
		collection: db.Collection("kyc_documents"),
	}
}

func (r *kycRepository) Create(ctx context.Context, doc *models.KYCDocument) error {
	doc.ID = primitive.NewObjectID()
	doc.Status = models.KYCStatusPending
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create kyc document: %w", err)
	}

	return nil
}

func (r *kycRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.KYCDocument, error) {
	var doc models.KYCDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("kyc document not found")
		}
		return nil, fmt.Errorf("failed to get kyc document: %w", err)
	}

	return &doc, nil
}

func (r *kycRepository) GetByTelegramID(ctx context.Context, telegramID int64) ([]*models.KYCDocument, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"telegram_id": telegramID})
	if err != nil {
		return nil, fmt.Errorf("failed to find kyc documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.KYCDocument
	for cursor.Next(ctx) {
		var doc models.KYCDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode kyc document: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}

func (r *kycRepository) ListByStatus(ctx context.Context, status models.KYCStatus, params *utils.PaginationParams) ([]*models.KYCDocument, int64, error) {
	filter := bson.M{"status": status}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count kyc documents: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find kyc documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.KYCDocument
	for cursor.Next(ctx) {
		var doc models.KYCDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode kyc document: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, total, nil
}

func (r *kycRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.KYCStatus, reviewedBy, note string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":      status,
			"reviewed_by": reviewedBy,
			"review_note": note,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update kyc status: %w", err)
	}

	return nil
}
