package services

import (
	"context"
	"fmt"
	"time"

	"swapcash/internal/models"
	"swapcash/internal/repositories/interfaces"
	"swapcash/internal/utils"
	"swapcash/pkg/logger"
)

const rateCacheTTL = 5 * time.Minute

type RateService interface {
	GetRate(ctx context.Context, currency string) (*models.RateSetting, error)
	ListRates(ctx context.Context) ([]*models.RateSetting, error)
	UpdateRate(ctx context.Context, setting *models.RateSetting, admin string) error

	// QuoteBuy prices a user buying crypto with fiat: the fiat amount sent
	// converts to the crypto amount received.
	QuoteBuy(ctx context.Context, currency string, fiatAmount float64) (*Quote, error)

	// QuoteSell prices a user selling crypto for fiat.
	QuoteSell(ctx context.Context, currency string, cryptoAmount float64) (*Quote, error)
}

type Quote struct {
	Currency        string  `json:"currency"`
	Rate            float64 `json:"rate"`
	AmountToSend    float64 `json:"amount_to_send"`
	AmountToReceive float64 `json:"amount_to_receive"`
	CurrencyFrom    string  `json:"currency_from"`
	CurrencyTo      string  `json:"currency_to"`
}

type rateService struct {
	rateRepo interfaces.RateRepository
	cache    CacheService
	logger   *logger.Logger
}

func NewRateService(rateRepo interfaces.RateRepository, cache CacheService, log *logger.Logger) RateService {
	return &rateService{
		rateRepo: rateRepo,
		cache:    cache,
		logger:   log,
	}
}

func (s *rateService) GetRate(ctx context.Context, currency string) (*models.RateSetting, error) {
	cacheKey := "rate:" + currency

	if s.cache != nil {
		var setting models.RateSetting
		if err := s.cache.Get(ctx, cacheKey, &setting); err == nil {
			return &setting, nil
		}
	}

	setting, err := s.rateRepo.GetByCurrency(ctx, currency)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, setting, rateCacheTTL)
	}

	return setting, nil
}

func (s *rateService) ListRates(ctx context.Context) ([]*models.RateSetting, error) {
	return s.rateRepo.List(ctx)
}

func (s *rateService) UpdateRate(ctx context.Context, setting *models.RateSetting, admin string) error {
	if setting.BuyRate <= 0 || setting.SellRate <= 0 {
		return fmt.Errorf("rates must be positive")
	}

	setting.UpdatedBy = admin
	if err := s.rateRepo.Upsert(ctx, setting); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Delete(ctx, "rate:"+setting.Currency)
	}

	s.logger.LogAdminAction(admin, "rate_updated", map[string]interface{}{
		"currency":  setting.Currency,
		"buy_rate":  setting.BuyRate,
		"sell_rate": setting.SellRate,
	})

	return nil
}

func (s *rateService) QuoteBuy(ctx context.Context, currency string, fiatAmount float64) (*Quote, error) {
	setting, err := s.GetRate(ctx, currency)
	if err != nil {
		return nil, err
	}

	if setting.MinBuy > 0 && fiatAmount < setting.MinBuy {
		return nil, fmt.Errorf("amount below minimum of %.0f %s", setting.MinBuy, utils.DefaultFiatCurrency)
	}
	if setting.MaxBuy > 0 && fiatAmount > setting.MaxBuy {
		return nil, fmt.Errorf("amount above maximum of %.0f %s", setting.MaxBuy, utils.DefaultFiatCurrency)
	}

	return &Quote{
		Currency:        currency,
		Rate:            setting.BuyRate,
		AmountToSend:    fiatAmount,
		AmountToReceive: fiatAmount / setting.BuyRate,
		CurrencyFrom:    utils.DefaultFiatCurrency,
		CurrencyTo:      currency,
	}, nil
}

func (s *rateService) QuoteSell(ctx context.Context, currency string, cryptoAmount float64) (*Quote, error) {
	setting, err := s.GetRate(ctx, currency)
	if err != nil {
		return nil, err
	}

	fiatAmount := cryptoAmount * setting.SellRate

	if setting.MinSell > 0 && fiatAmount < setting.MinSell {
		return nil, fmt.Errorf("amount below minimum of %.0f %s", setting.MinSell, utils.DefaultFiatCurrency)
	}
	if setting.MaxSell > 0 && fiatAmount > setting.MaxSell {
		return nil, fmt.Errorf("amount above maximum of %.0f %s", setting.MaxSell, utils.DefaultFiatCurrency)
	}

	return &Quote{
		Currency:        currency,
		Rate:            setting.SellRate,
		AmountToSend:    cryptoAmount,
		AmountToReceive: fiatAmount,
		CurrencyFrom:    currency,
		CurrencyTo:      utils.DefaultFiatCurrency,
	}, nil
}
