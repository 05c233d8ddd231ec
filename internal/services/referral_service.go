package services

import (
	"context"
	"errors"
	"fmt"

	"swapcash/internal/apperrors"
	"swapcash/internal/config"
	"swapcash/internal/models"
	"swapcash/internal/repositories/interfaces"
	"swapcash/internal/utils"
	"swapcash/pkg/logger"
)

type ReferralService interface {
	// RegisterUser creates the user if they do not exist yet, attaching
	// the referrer link and bumping the referrer's count exactly once.
	// For an existing user it returns the stored record untouched.
	RegisterUser(ctx context.Context, request *RegisterUserRequest) (*models.User, error)

	// EvaluateActivation decides whether the user flips to active and, if
	// so, credits their referrer's earnings exactly once. Safe to call
	// repeatedly and concurrently for the same user.
	EvaluateActivation(ctx context.Context, telegramID int64) (*ActivationResult, error)

	// Reward ledger entry points.
	CreditEarnings(ctx context.Context, telegramID int64, amount float64) error
	DebitEarnings(ctx context.Context, telegramID int64, amount float64) error

	GetStats(ctx context.Context, telegramID int64) (*ReferralStats, error)

	// ListReferred pages through the users this user brought in.
	ListReferred(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.User, int64, error)

	InviteLink(referralCode string) string
}

type RegisterUserRequest struct {
	TelegramID   int64  `json:"telegram_id" validate:"required"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	ReferralCode string `json:"referral_code"` // the inviter's code, if any
}

type ActivationResult struct {
	Activated          bool    `json:"activated"`
	RewardCredited     bool    `json:"reward_credited"`
	ReferrerTelegramID int64   `json:"referrer_telegram_id,omitempty"`
	RewardAmount       float64 `json:"reward_amount,omitempty"`
}

type ReferralStats struct {
	ReferralCode     string  `json:"referral_code"`
	ReferralCount    int64   `json:"referral_count"`
	ReferralEarnings float64 `json:"referral_earnings"`
	IsActive         bool    `json:"is_active"`
	InviteLink       string  `json:"invite_link"`
}

type referralService struct {
	userRepo interfaces.UserRepository
	cfg      *config.ReferralConfig
	botUser  string
	logger   *logger.Logger
}

func NewReferralService(userRepo interfaces.UserRepository, cfg *config.ReferralConfig, botUsername string, log *logger.Logger) ReferralService {
	return &referralService{
		userRepo: userRepo,
		cfg:      cfg,
		botUser:  botUsername,
		logger:   log,
	}
}

func (s *referralService) RegisterUser(ctx context.Context, request *RegisterUserRequest) (*models.User, error) {
	existing, err := s.userRepo.GetByTelegramID(ctx, request.TelegramID)
	if err == nil {
		// referred_by is set once at creation and never rewritten.
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	user := &models.User{
		TelegramID:    request.TelegramID,
		Username:      request.Username,
		FirstName:     request.FirstName,
		Status:        models.UserStatusActive,
		KYCStatus:     models.KYCStatusNone,
		IsActive:      false,
		ReferralCount: 0,
	}

	code, err := s.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}
	user.ReferralCode = code

	var referrer *models.User
	if request.ReferralCode != "" {
		referrer, err = s.userRepo.GetByReferralCode(ctx, request.ReferralCode)
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			s.logger.WithTelegramID(request.TelegramID).
				WithField("referral_code", request.ReferralCode).
				Warn("Registration cited an unknown referral code")
			referrer = nil
		case err != nil:
			return nil, err
		case referrer.TelegramID == request.TelegramID:
			// Self-referral is ignored.
			referrer = nil
		default:
			user.ReferredBy = referrer.ReferralCode
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// The count tracks creations citing the code, independent of whether
	// the new user ever activates.
	if referrer != nil {
		if err := s.userRepo.IncrementReferralCount(ctx, referrer.ID, 1); err != nil {
			s.logger.WithError(err).WithTelegramID(referrer.TelegramID).
				Error("Failed to increment referral count")
		} else {
			s.logger.WithTelegramID(request.TelegramID).
				WithField("referrer_telegram_id", referrer.TelegramID).
				Info("User registered with referral")
		}
	}

	return user, nil
}

func (s *referralService) EvaluateActivation(ctx context.Context, telegramID int64) (*ActivationResult, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithTelegramID(telegramID)

	if user.IsActive {
		log.Debug("Activation skipped: user already active")
		return &ActivationResult{}, nil
	}

	if !user.HasReferrer() {
		log.Debug("Activation skipped: user has no referrer")
		return &ActivationResult{}, nil
	}

	// The compare-and-set on is_active is the sole fence against a double
	// credit when two qualifying events race.
	won, err := s.userRepo.MarkActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		log.Debug("Activation skipped: lost compare-and-set race")
		return &ActivationResult{}, nil
	}

	referrer, err := s.userRepo.GetByReferralCode(ctx, user.ReferredBy)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Orphaned code: the user stays active, no reward is issued.
			log.WithField("referred_by", user.ReferredBy).
				Warn("Referrer not found for activation; no reward issued")
			return &ActivationResult{Activated: true}, nil
		}
		return nil, err
	}

	if err := s.userRepo.CreditEarnings(ctx, referrer.TelegramID, s.cfg.RewardAmount); err != nil {
		return nil, fmt.Errorf("failed to credit referrer reward: %w", err)
	}

	s.logger.LogLedgerEvent(referrer.TelegramID, "referral_reward", s.cfg.RewardAmount, utils.DefaultFiatCurrency)

	return &ActivationResult{
		Activated:          true,
		RewardCredited:     true,
		ReferrerTelegramID: referrer.TelegramID,
		RewardAmount:       s.cfg.RewardAmount,
	}, nil
}

func (s *referralService) CreditEarnings(ctx context.Context, telegramID int64, amount float64) error {
	if err := s.userRepo.CreditEarnings(ctx, telegramID, amount); err != nil {
		return err
	}

	s.logger.LogLedgerEvent(telegramID, "credit", amount, utils.DefaultFiatCurrency)
	return nil
}

func (s *referralService) DebitEarnings(ctx context.Context, telegramID int64, amount float64) error {
	if err := s.userRepo.DebitEarnings(ctx, telegramID, amount); err != nil {
		return err
	}

	s.logger.LogLedgerEvent(telegramID, "debit", -amount, utils.DefaultFiatCurrency)
	return nil
}

func (s *referralService) GetStats(ctx context.Context, telegramID int64) (*ReferralStats, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	return &ReferralStats{
		ReferralCode:     user.ReferralCode,
		ReferralCount:    user.ReferralCount,
		ReferralEarnings: user.ReferralEarnings,
		IsActive:         user.IsActive,
		InviteLink:       s.InviteLink(user.ReferralCode),
	}, nil
}

func (s *referralService) ListReferred(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.User, int64, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, 0, err
	}

	return s.userRepo.ListReferredBy(ctx, user.ReferralCode, params)
}

func (s *referralService) InviteLink(referralCode string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", s.botUser, referralCode)
}

// uniqueReferralCode generates a code and retries on the unlikely collision.
func (s *referralService) uniqueReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		code := utils.GenerateReferralCode(s.cfg.CodeLength)

		_, err := s.userRepo.GetByReferralCode(ctx, code)
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("failed to generate a unique referral code")
}
