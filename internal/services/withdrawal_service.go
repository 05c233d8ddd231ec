package services

import (
	"context"
	"fmt"

	"swapcash/internal/apperrors"
	"swapcash/internal/config"
	"swapcash/internal/models"
	"swapcash/internal/repositories/interfaces"
	"swapcash/internal/utils"
	"swapcash/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WithdrawalOutcome string

const (
	WithdrawalOutcomeApprove WithdrawalOutcome = "approve"
	WithdrawalOutcomeReject  WithdrawalOutcome = "reject"
)

type WithdrawalService interface {
	// Request reserves the amount by debiting the requester's earnings,
	// then records a pending withdrawal.
	Request(ctx context.Context, request *WithdrawalRequest) (*models.Withdrawal, error)

	// Resolve applies an admin decision. Approvals only flip the status;
	// rejections also restore the reserved amount. Re-resolving a
	// terminal withdrawal returns apperrors.ErrAlreadyProcessed and
	// changes nothing.
	Resolve(ctx context.Context, id primitive.ObjectID, outcome WithdrawalOutcome, admin string) (*models.Withdrawal, error)

	GetForUser(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error)
	ListByStatus(ctx context.Context, status models.WithdrawalStatus, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error)

	// ReconcileInterruptedRejections re-applies refunds for rejections
	// that were interrupted between the status flip and the credit.
	// Operator-triggered, never automatic.
	ReconcileInterruptedRejections(ctx context.Context) (int, error)
}

type WithdrawalRequest struct {
	TelegramID int64   `json:"telegram_id" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	MomoNumber string  `json:"momo_number" validate:"required"`
}

type withdrawalService struct {
	withdrawalRepo interfaces.WithdrawalRepository
	referrals      ReferralService
	notifier       Notifier
	cfg            *config.ReferralConfig
	logger         *logger.Logger
}

func NewWithdrawalService(
	withdrawalRepo interfaces.WithdrawalRepository,
	referrals ReferralService,
	notifier Notifier,
	cfg *config.ReferralConfig,
	log *logger.Logger,
) WithdrawalService {
	return &withdrawalService{
		withdrawalRepo: withdrawalRepo,
		referrals:      referrals,
		notifier:       notifier,
		cfg:            cfg,
		logger:         log,
	}
}

func (s *withdrawalService) Request(ctx context.Context, request *WithdrawalRequest) (*models.Withdrawal, error) {
	if request.Amount < s.cfg.MinWithdrawal {
		return nil, fmt.Errorf("withdrawal amount below minimum of %.2f", s.cfg.MinWithdrawal)
	}

	// Reservation: the debit is the guard. It fails with
	// ErrInsufficientEarnings before anything is written.
	if err := s.referrals.DebitEarnings(ctx, request.TelegramID, request.Amount); err != nil {
		return nil, err
	}

	withdrawal := &models.Withdrawal{
		TelegramID: request.TelegramID,
		Amount:     request.Amount,
		MomoNumber: request.MomoNumber,
	}

	if err := s.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		// The reservation exists but the request record failed; give the
		// funds back so the user is not locked out of them.
		if creditErr := s.referrals.CreditEarnings(ctx, request.TelegramID, request.Amount); creditErr != nil {
			s.logger.WithError(creditErr).WithTelegramID(request.TelegramID).
				Error("Failed to release reservation after withdrawal create failure")
		}
		return nil, err
	}

	go s.notifier.NotifyAdmins(fmt.Sprintf(
		"New withdrawal request: %.2f %s from user %d",
		withdrawal.Amount, utils.DefaultFiatCurrency, withdrawal.TelegramID,
	))

	return withdrawal, nil
}

func (s *withdrawalService) Resolve(ctx context.Context, id primitive.ObjectID, outcome WithdrawalOutcome, admin string) (*models.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if withdrawal.IsTerminal() {
		return withdrawal, apperrors.ErrAlreadyProcessed
	}

	switch outcome {
	case WithdrawalOutcomeApprove:
		return s.approve(ctx, withdrawal, admin)
	case WithdrawalOutcomeReject:
		return s.reject(ctx, withdrawal, admin)
	default:
		return nil, fmt.Errorf("unknown withdrawal outcome %q", outcome)
	}
}

// approve flips pending->completed. The funds were already debited at
// request time, so there is no ledger effect.
func (s *withdrawalService) approve(ctx context.Context, withdrawal *models.Withdrawal, admin string) (*models.Withdrawal, error) {
	flipped, err := s.withdrawalRepo.Resolve(ctx, withdrawal.ID, models.WithdrawalStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return withdrawal, apperrors.ErrAlreadyProcessed
	}

	s.logger.LogAdminAction(admin, "withdrawal_approved", map[string]interface{}{
		"withdrawal_id": withdrawal.ID.Hex(),
		"telegram_id":   withdrawal.TelegramID,
		"amount":        withdrawal.Amount,
	})

	go s.notifier.NotifyUser(withdrawal.TelegramID, fmt.Sprintf(
		"Your withdrawal of %.2f %s has been paid out.",
		withdrawal.Amount, utils.DefaultFiatCurrency,
	))

	withdrawal.Status = models.WithdrawalStatusCompleted
	return withdrawal, nil
}

// reject flips pending->cancelled first; the compare-and-set is the fence
// that makes duplicate clicks no-ops. The refund is then fenced a second
// time on the refund_credited marker flip: only the caller that wins that
// flip applies the compensating credit, so an interrupted rejection and
// the reconciliation sweep can never both refund the same withdrawal. A
// crash before the marker flip leaves a cancelled withdrawal with
// refund_credited=false, which ReconcileInterruptedRejections repairs.
func (s *withdrawalService) reject(ctx context.Context, withdrawal *models.Withdrawal, admin string) (*models.Withdrawal, error) {
	flipped, err := s.withdrawalRepo.Resolve(ctx, withdrawal.ID, models.WithdrawalStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return withdrawal, apperrors.ErrAlreadyProcessed
	}

	if err := s.refund(ctx, withdrawal); err != nil {
		// The flip committed but the refund did not: surface the failure.
		// A failed marker write is repaired by the reconciliation sweep; a
		// failed credit after the marker is logged for manual resolution.
		return nil, fmt.Errorf("withdrawal cancelled but refund failed, reconciliation required: %w", err)
	}

	s.logger.LogAdminAction(admin, "withdrawal_rejected", map[string]interface{}{
		"withdrawal_id": withdrawal.ID.Hex(),
		"telegram_id":   withdrawal.TelegramID,
		"amount":        withdrawal.Amount,
	})

	go s.notifier.NotifyUser(withdrawal.TelegramID, fmt.Sprintf(
		"Your withdrawal of %.2f %s was rejected. The amount has been returned to your balance.",
		withdrawal.Amount, utils.DefaultFiatCurrency,
	))

	withdrawal.Status = models.WithdrawalStatusCancelled
	withdrawal.RefundCredited = true
	return withdrawal, nil
}

// refund applies the compensating credit for a cancelled withdrawal,
// fenced on the refund_credited marker flip. Losing the flip means
// another caller already owns the credit; that is a no-op, not an error.
func (s *withdrawalService) refund(ctx context.Context, withdrawal *models.Withdrawal) error {
	won, err := s.withdrawalRepo.MarkRefundCredited(ctx, withdrawal.ID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	if err := s.referrals.CreditEarnings(ctx, withdrawal.TelegramID, withdrawal.Amount); err != nil {
		// The marker committed but the credit did not; the sweep will no
		// longer pick this withdrawal up, so the operator must resolve it
		// from this log line.
		s.logger.WithError(err).WithDocumentID(withdrawal.ID).WithTelegramID(withdrawal.TelegramID).
			Error("Refund marker committed but credit failed, manual credit required")
		return err
	}

	return nil
}

func (s *withdrawalService) GetForUser(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error) {
	return s.withdrawalRepo.GetByTelegramID(ctx, telegramID, params)
}

func (s *withdrawalService) ListByStatus(ctx context.Context, status models.WithdrawalStatus, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error) {
	return s.withdrawalRepo.ListByStatus(ctx, status, params)
}

func (s *withdrawalService) ReconcileInterruptedRejections(ctx context.Context) (int, error) {
	interrupted, err := s.withdrawalRepo.FindInterruptedRejections(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, withdrawal := range interrupted {
		// Same marker fence as reject: a withdrawal refunded between the
		// listing and this write is skipped, never credited twice.
		won, err := s.withdrawalRepo.MarkRefundCredited(ctx, withdrawal.ID)
		if err != nil {
			s.logger.WithError(err).WithDocumentID(withdrawal.ID).
				Error("Reconciliation marker write failed")
			continue
		}
		if !won {
			continue
		}
		if err := s.referrals.CreditEarnings(ctx, withdrawal.TelegramID, withdrawal.Amount); err != nil {
			s.logger.WithError(err).WithDocumentID(withdrawal.ID).WithTelegramID(withdrawal.TelegramID).
				Error("Reconciliation marker committed but credit failed, manual credit required")
			continue
		}
		repaired++
	}

	return repaired, nil
}
