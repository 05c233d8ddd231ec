package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/models"
	"swapcash/internal/utils"
	"swapcash/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stdout"})
	if err != nil {
		t.Fatalf("create logger: %v", err)
	}
	log.SetOutput(io.Discard)
	return log
}

// fakeUserRepo mirrors the atomic semantics of the Mongo implementation:
// MarkActive is a compare-and-set, credits and debits mutate under lock and
// the debit is guarded by the current balance.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.TelegramID] = user
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[telegramID]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ReferralCode == code {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeUserRepo) MarkActive(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			if user.IsActive {
				return false, nil
			}
			user.IsActive = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) IncrementReferralCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			user.ReferralCount += delta
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) CreditEarnings(ctx context.Context, telegramID int64, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[telegramID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.ReferralEarnings += amount
	return nil
}

func (r *fakeUserRepo) DebitEarnings(ctx context.Context, telegramID int64, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[telegramID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if user.ReferralEarnings < amount {
		return apperrors.ErrInsufficientEarnings
	}
	user.ReferralEarnings -= amount
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []*models.User
	for _, user := range r.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) ListReferredBy(ctx context.Context, code string, params *utils.PaginationParams) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []*models.User
	for _, user := range r.users {
		if user.ReferredBy == code {
			clone := *user
			users = append(users, &clone)
		}
	}
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) earnings(telegramID int64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[telegramID]; ok {
		return user.ReferralEarnings
	}
	return 0
}

// fakeTransactionRepo keeps transactions in memory with the same
// compare-and-set Resolve semantics as the Mongo implementation.
type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions map[primitive.ObjectID]*models.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[primitive.ObjectID]*models.Transaction)}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = primitive.NewObjectID()
	tx.Status = models.TransactionStatusPending
	tx.CreatedAt = time.Now()
	r.transactions[tx.ID] = tx
	return nil
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx, ok := r.transactions[id]; ok {
		clone := *tx
		return &clone, nil
	}
	return nil, apperrors.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) GetByTelegramID(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, tx := range r.transactions {
		if tx.TelegramID == telegramID {
			clone := *tx
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) ListByStatus(ctx context.Context, status models.TransactionStatus, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, tx := range r.transactions {
		if tx.Status == status {
			clone := *tx
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) Resolve(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok {
		return false, apperrors.ErrTransactionNotFound
	}
	if tx.Status != models.TransactionStatusPending {
		return false, nil
	}
	now := time.Now()
	tx.Status = status
	tx.ResolvedAt = &now
	return true, nil
}

func (r *fakeTransactionRepo) MonthlyVolume(ctx context.Context, telegramID int64, asOf time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, end := utils.MonthRange(asOf)
	var sum float64
	for _, tx := range r.transactions {
		if tx.TelegramID != telegramID ||
			tx.Type != models.TransactionTypeSell ||
			tx.Status != models.TransactionStatusCompleted {
			continue
		}
		if tx.CreatedAt.Before(start) || tx.CreatedAt.After(end) {
			continue
		}
		sum += tx.AmountToReceive
	}
	return sum, nil
}

// fakeWithdrawalRepo mirrors the CAS Resolve fence and the guarded refund
// marker flip. markerErr, when set, fails the next MarkRefundCredited call
// once to simulate a marker write interrupted mid-rejection.
type fakeWithdrawalRepo struct {
	mu          sync.Mutex
	withdrawals map[primitive.ObjectID]*models.Withdrawal
	markerErr   error
}

func newFakeWithdrawalRepo() *fakeWithdrawalRepo {
	return &fakeWithdrawalRepo{withdrawals: make(map[primitive.ObjectID]*models.Withdrawal)}
}

func (r *fakeWithdrawalRepo) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	withdrawal.ID = primitive.NewObjectID()
	withdrawal.Status = models.WithdrawalStatusPending
	withdrawal.CreatedAt = time.Now()
	r.withdrawals[withdrawal.ID] = withdrawal
	return nil
}

func (r *fakeWithdrawalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wd, ok := r.withdrawals[id]; ok {
		clone := *wd
		return &clone, nil
	}
	return nil, apperrors.ErrWithdrawalNotFound
}

func (r *fakeWithdrawalRepo) GetByTelegramID(ctx context.Context, telegramID int64, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Withdrawal
	for _, wd := range r.withdrawals {
		if wd.TelegramID == telegramID {
			clone := *wd
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeWithdrawalRepo) ListByStatus(ctx context.Context, status models.WithdrawalStatus, params *utils.PaginationParams) ([]*models.Withdrawal, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Withdrawal
	for _, wd := range r.withdrawals {
		if wd.Status == status {
			clone := *wd
			out = append(out, &clone)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeWithdrawalRepo) Resolve(ctx context.Context, id primitive.ObjectID, status models.WithdrawalStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wd, ok := r.withdrawals[id]
	if !ok {
		return false, apperrors.ErrWithdrawalNotFound
	}
	if wd.Status != models.WithdrawalStatusPending {
		return false, nil
	}
	now := time.Now()
	wd.Status = status
	wd.ResolvedAt = &now
	return true, nil
}

func (r *fakeWithdrawalRepo) MarkRefundCredited(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markerErr != nil {
		err := r.markerErr
		r.markerErr = nil
		return false, err
	}
	wd, ok := r.withdrawals[id]
	if !ok {
		return false, apperrors.ErrWithdrawalNotFound
	}
	if wd.Status != models.WithdrawalStatusCancelled || wd.RefundCredited {
		return false, nil
	}
	wd.RefundCredited = true
	return true, nil
}

func (r *fakeWithdrawalRepo) FindInterruptedRejections(ctx context.Context) ([]*models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Withdrawal
	for _, wd := range r.withdrawals {
		if wd.Status == models.WithdrawalStatusCancelled && !wd.RefundCredited {
			clone := *wd
			out = append(out, &clone)
		}
	}
	return out, nil
}

// fakeRateRepo serves fixed rate settings.
type fakeRateRepo struct {
	mu    sync.Mutex
	rates map[string]*models.RateSetting
}

func newFakeRateRepo() *fakeRateRepo {
	return &fakeRateRepo{rates: make(map[string]*models.RateSetting)}
}

func (r *fakeRateRepo) GetByCurrency(ctx context.Context, currency string) (*models.RateSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rate, ok := r.rates[currency]; ok {
		clone := *rate
		return &clone, nil
	}
	return nil, apperrors.ErrRateNotFound
}

func (r *fakeRateRepo) List(ctx context.Context) ([]*models.RateSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RateSetting
	for _, rate := range r.rates {
		clone := *rate
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeRateRepo) Upsert(ctx context.Context, setting *models.RateSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[setting.Currency] = setting
	return nil
}

// countingNotifier records notifications for assertions.
type countingNotifier struct {
	mu       sync.Mutex
	toUsers  int
	toAdmins int
}

func (n *countingNotifier) NotifyUser(telegramID int64, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toUsers++
}

func (n *countingNotifier) NotifyAdmins(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toAdmins++
}
