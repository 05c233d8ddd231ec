package interfaces

import (
	"context"

	"swapcash/internal/models"
)

type RateRepository interface {
	GetByCurrency(ctx context.Context, currency string) (*models.RateSetting, error)
	List(ctx context.Context) ([]*models.RateSetting, error)
	Upsert(ctx context.Context, setting *models.RateSetting) error
}
