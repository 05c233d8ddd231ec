package interfaces

import (
	"context"

	"swapcash/internal/models"
	"swapcash/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type KYCRepository interface {
	Create(ctx context.Context, doc *models.KYCDocument) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.KYCDocument, error)
	GetByTelegramID(ctx context.Context, telegramID int64) ([]*models.KYCDocument, error)
	ListByStatus(ctx context.Context, status models.KYCStatus, params *utils.PaginationParams) ([]*models.KYCDocument, int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.KYCStatus, reviewedBy, note string) error
}
