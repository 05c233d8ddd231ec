package services

import (
	"context"
	"fmt"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/config"
	"swapcash/internal/models"
	"swapcash/internal/repositories/interfaces"
	"swapcash/internal/utils"
	"swapcash/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionService interface {
	// Create quotes and records a pending buy or sell. Sells are gated by
	// the configurable monthly volume limit.
	Create(ctx context.Context, request *CreateTransactionRequest) (*models.Transaction, error)

	// Resolve applies an admin decision: pending->completed triggers
	// activation evaluation for the owner; pending->cancelled does not.
	// Re-resolving a terminal transaction returns
	// apperrors.ErrAlreadyProcessed and changes nothing.
	Resolve(ctx context.Context, id primitive.ObjectID, approve bool, admin string) (*models.Transaction, error)

	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	GetForUser(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	ListByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error)

	// MonthlyVolume reports the user's completed sell volume for the
	// calendar month containing asOf, plus the remaining allowance.
	MonthlyVolume(ctx context.Context, telegramID int64, asOf time.Time) (*VolumeReport, error)
}

type CreateTransactionRequest struct {
	TelegramID    int64                  `json:"telegram_id" validate:"required"`
	Type          models.TransactionType `json:"type" validate:"required,oneof=buy sell"`
	Currency      string                 `json:"currency" validate:"required"`
	Amount        float64                `json:"amount" validate:"required,gt=0"`
	WalletAddress string                 `json:"wallet_address"`
	MomoNumber    string                 `json:"momo_number"`
}

type VolumeReport struct {
	Month     string  `json:"month"`
	Volume    float64 `json:"volume"`
	Limit     float64 `json:"limit"`
	Remaining float64 `json:"remaining"`
}

type transactionService struct {
	txRepo    interfaces.TransactionRepository
	referrals ReferralService
	rates     RateService
	notifier  Notifier
	cfg       *config.ReferralConfig
	logger    *logger.Logger
}

func NewTransactionService(
	txRepo interfaces.TransactionRepository,
	referrals ReferralService,
	rates RateService,
	notifier Notifier,
	cfg *config.ReferralConfig,
	log *logger.Logger,
) TransactionService {
	return &transactionService{
		txRepo:    txRepo,
		referrals: referrals,
		rates:     rates,
		notifier:  notifier,
		cfg:       cfg,
		logger:    log,
	}
}

func (s *transactionService) Create(ctx context.Context, request *CreateTransactionRequest) (*models.Transaction, error) {
	if !utils.IsSupportedCurrency(request.Currency) {
		return nil, fmt.Errorf("unsupported currency %q", request.Currency)
	}

	var quote *Quote
	var err error

	switch request.Type {
	case models.TransactionTypeBuy:
		quote, err = s.rates.QuoteBuy(ctx, request.Currency, request.Amount)
	case models.TransactionTypeSell:
		quote, err = s.rates.QuoteSell(ctx, request.Currency, request.Amount)
	default:
		return nil, fmt.Errorf("unknown transaction type %q", request.Type)
	}
	if err != nil {
		return nil, err
	}

	if request.Type == models.TransactionTypeSell {
		report, err := s.MonthlyVolume(ctx, request.TelegramID, time.Now())
		if err != nil {
			return nil, err
		}
		if report.Volume+quote.AmountToReceive > report.Limit {
			return nil, apperrors.ErrSellLimitExceeded
		}
	}

	tx := &models.Transaction{
		TelegramID:      request.TelegramID,
		Type:            request.Type,
		AmountToSend:    quote.AmountToSend,
		AmountToReceive: quote.AmountToReceive,
		CurrencyFrom:    quote.CurrencyFrom,
		CurrencyTo:      quote.CurrencyTo,
		WalletAddress:   request.WalletAddress,
		MomoNumber:      request.MomoNumber,
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	go s.notifier.NotifyAdmins(fmt.Sprintf(
		"New %s order: %.4f %s -> %.4f %s (user %d)",
		tx.Type, tx.AmountToSend, tx.CurrencyFrom, tx.AmountToReceive, tx.CurrencyTo, tx.TelegramID,
	))

	return tx, nil
}

func (s *transactionService) Resolve(ctx context.Context, id primitive.ObjectID, approve bool, admin string) (*models.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.IsTerminal() {
		return tx, apperrors.ErrAlreadyProcessed
	}

	status := models.TransactionStatusCancelled
	if approve {
		status = models.TransactionStatusCompleted
	}

	flipped, err := s.txRepo.Resolve(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return tx, apperrors.ErrAlreadyProcessed
	}
	tx.Status = status

	s.logger.LogAdminAction(admin, "transaction_"+string(status), map[string]interface{}{
		"transaction_id": id.Hex(),
		"telegram_id":    tx.TelegramID,
		"type":           tx.Type,
	})

	if status == models.TransactionStatusCompleted {
		// A completed transaction is a qualifying event. Evaluation
		// failures are logged, never propagated: a later qualifying
		// event re-attempts the whole flow from scratch.
		if _, err := s.referrals.EvaluateActivation(ctx, tx.TelegramID); err != nil {
			s.logger.WithError(err).WithTelegramID(tx.TelegramID).
				Error("Activation evaluation failed after transaction completion")
		}
	}

	go s.notifyResolved(tx)

	return tx, nil
}

func (s *transactionService) notifyResolved(tx *models.Transaction) {
	var msg string
	if tx.Status == models.TransactionStatusCompleted {
		msg = fmt.Sprintf("Your %s order of %.4f %s has been completed.", tx.Type, tx.AmountToSend, tx.CurrencyFrom)
	} else {
		msg = fmt.Sprintf("Your %s order of %.4f %s was cancelled.", tx.Type, tx.AmountToSend, tx.CurrencyFrom)
	}
	s.notifier.NotifyUser(tx.TelegramID, msg)
}

func (s *transactionService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	return s.txRepo.GetByID(ctx, id)
}

func (s *transactionService) GetForUser(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return s.txRepo.GetByTelegramID(ctx, telegramID, params)
}

func (s *transactionService) ListByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return s.txRepo.ListByStatus(ctx, status, params)
}

func (s *transactionService) MonthlyVolume(ctx context.Context, telegramID int64, asOf time.Time) (*VolumeReport, error) {
	volume, err := s.txRepo.MonthlyVolume(ctx, telegramID, asOf)
	if err != nil {
		return nil, err
	}

	remaining := s.cfg.MonthlySellLimit - volume
	if remaining < 0 {
		remaining = 0
	}

	return &VolumeReport{
		Month:     asOf.Format("2006-01"),
		Volume:    volume,
		Limit:     s.cfg.MonthlySellLimit,
		Remaining: remaining,
	}, nil
}
