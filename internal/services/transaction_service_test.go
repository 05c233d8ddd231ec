package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/models"
)

func newTransactionFixture(t *testing.T) (*fakeUserRepo, *fakeTransactionRepo, TransactionService) {
	t.Helper()

	userRepo := newFakeUserRepo()
	txRepo := newFakeTransactionRepo()
	rateRepo := newFakeRateRepo()
	cfg := testReferralConfig()
	log := newTestLogger(t)

	rateRepo.Upsert(context.Background(), &models.RateSetting{
		Currency: "USDT",
		BuyRate:  620,
		SellRate: 600,
		MinBuy:   1000,
		MaxBuy:   10000000,
		MinSell:  1,
		MaxSell:  100000,
	})

	referrals := NewReferralService(userRepo, cfg, "swapcash_bot", log)
	rates := NewRateService(rateRepo, nil, log)
	service := NewTransactionService(txRepo, referrals, rates, &countingNotifier{}, cfg, log)

	return userRepo, txRepo, service
}

func TestCreateTransaction_SellQuote(t *testing.T) {
	_, _, service := newTransactionFixture(t)

	tx, err := service.Create(context.Background(), &CreateTransactionRequest{
		TelegramID: 100,
		Type:       models.TransactionTypeSell,
		Currency:   "USDT",
		Amount:     50,
		MomoNumber: "237650000001",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if tx.Status != models.TransactionStatusPending {
		t.Errorf("status = %s, want pending", tx.Status)
	}
	if tx.AmountToSend != 50 {
		t.Errorf("amount_to_send = %v, want 50", tx.AmountToSend)
	}
	if tx.AmountToReceive != 30000 {
		t.Errorf("amount_to_receive = %v, want 30000", tx.AmountToReceive)
	}
	if tx.CurrencyFrom != "USDT" || tx.CurrencyTo != "XAF" {
		t.Errorf("legs = %s -> %s, want USDT -> XAF", tx.CurrencyFrom, tx.CurrencyTo)
	}
}

func TestCreateTransaction_SellLimitGate(t *testing.T) {
	_, txRepo, service := newTransactionFixture(t)

	// Burn most of the monthly allowance with an already completed sell.
	prior := &models.Transaction{
		TelegramID:      100,
		Type:            models.TransactionTypeSell,
		AmountToSend:    800,
		AmountToReceive: 480000,
		CurrencyFrom:    "USDT",
		CurrencyTo:      "XAF",
	}
	if err := txRepo.Create(context.Background(), prior); err != nil {
		t.Fatalf("Create prior: %v", err)
	}
	if _, err := txRepo.Resolve(context.Background(), prior.ID, models.TransactionStatusCompleted); err != nil {
		t.Fatalf("Resolve prior: %v", err)
	}

	// 50 USDT * 600 = 30000 XAF, which would push past the 500000 limit.
	_, err := service.Create(context.Background(), &CreateTransactionRequest{
		TelegramID: 100,
		Type:       models.TransactionTypeSell,
		Currency:   "USDT",
		Amount:     50,
		MomoNumber: "237650000001",
	})
	if !errors.Is(err, apperrors.ErrSellLimitExceeded) {
		t.Fatalf("err = %v, want ErrSellLimitExceeded", err)
	}

	// A smaller sell that fits the remaining allowance goes through.
	if _, err := service.Create(context.Background(), &CreateTransactionRequest{
		TelegramID: 100,
		Type:       models.TransactionTypeSell,
		Currency:   "USDT",
		Amount:     30,
		MomoNumber: "237650000001",
	}); err != nil {
		t.Fatalf("Create within limit: %v", err)
	}
}

func TestCreateTransaction_BuysIgnoreSellLimit(t *testing.T) {
	_, txRepo, service := newTransactionFixture(t)

	prior := &models.Transaction{
		TelegramID:      100,
		Type:            models.TransactionTypeSell,
		AmountToReceive: 499999,
		CurrencyFrom:    "USDT",
		CurrencyTo:      "XAF",
	}
	txRepo.Create(context.Background(), prior)
	txRepo.Resolve(context.Background(), prior.ID, models.TransactionStatusCompleted)

	if _, err := service.Create(context.Background(), &CreateTransactionRequest{
		TelegramID:    100,
		Type:          models.TransactionTypeBuy,
		Currency:      "USDT",
		Amount:        620000,
		WalletAddress: "TXyzABCDEF1234567890abcdef",
	}); err != nil {
		t.Fatalf("buy blocked by sell limit: %v", err)
	}
}

func TestResolveTransaction_CompletionActivates(t *testing.T) {
	userRepo, _, service := newTransactionFixture(t)
	cfg := testReferralConfig()

	userRepo.add(&models.User{TelegramID: 100, ReferralCode: "INVITE01"})
	userRepo.add(&models.User{TelegramID: 200, ReferralCode: "CHILD001", ReferredBy: "INVITE01"})

	tx, err := service.Create(context.Background(), &CreateTransactionRequest{
		TelegramID: 200,
		Type:       models.TransactionTypeSell,
		Currency:   "USDT",
		Amount:     10,
		MomoNumber: "237650000001",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resolved, err := service.Resolve(context.Background(), tx.ID, true, "ops@swapcash")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != models.TransactionStatusCompleted {
		t.Errorf("status = %s, want completed", resolved.Status)
	}

	owner, _ := userRepo.GetByTelegramID(context.Background(), 200)
	if !owner.IsActive {
		t.Error("owner must be active after first completed transaction")
	}
	if got := userRepo.earnings(100); got != cfg.RewardAmount {
		t.Errorf("referrer earnings = %v, want %v", got, cfg.RewardAmount)
	}
}

func TestResolveTransaction_CancellationDoesNotActivate(t *testing.T) {
	userRepo, _, service := newTransactionFixture(t)

	userRepo.add(&models.User{TelegramID: 100, ReferralCode: "INVITE01"})
	userRepo.add(&models.User{TelegramID: 200, ReferralCode: "CHILD001", ReferredBy: "INVITE01"})

	tx, _ := service.Create(context.Background(), &CreateTransactionRequest{
		TelegramID: 200,
		Type:       models.TransactionTypeSell,
		Currency:   "USDT",
		Amount:     10,
		MomoNumber: "237650000001",
	})

	if _, err := service.Resolve(context.Background(), tx.ID, false, "ops@swapcash"); err != nil {
		t.Fatalf("Resolve cancel: %v", err)
	}

	owner, _ := userRepo.GetByTelegramID(context.Background(), 200)
	if owner.IsActive {
		t.Error("cancellation must not activate the owner")
	}
	if got := userRepo.earnings(100); got != 0 {
		t.Errorf("referrer earnings = %v, want 0", got)
	}
}

func TestResolveTransaction_Idempotent(t *testing.T) {
	userRepo, _, service := newTransactionFixture(t)
	cfg := testReferralConfig()

	userRepo.add(&models.User{TelegramID: 100, ReferralCode: "INVITE01"})
	userRepo.add(&models.User{TelegramID: 200, ReferralCode: "CHILD001", ReferredBy: "INVITE01"})

	tx, _ := service.Create(context.Background(), &CreateTransactionRequest{
		TelegramID: 200,
		Type:       models.TransactionTypeSell,
		Currency:   "USDT",
		Amount:     10,
		MomoNumber: "237650000001",
	})

	if _, err := service.Resolve(context.Background(), tx.ID, true, "ops@swapcash"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	_, err := service.Resolve(context.Background(), tx.ID, true, "ops@swapcash")
	if !apperrors.IsNoOp(err) {
		t.Fatalf("duplicate resolve err = %v, want ErrAlreadyProcessed", err)
	}

	if got := userRepo.earnings(100); got != cfg.RewardAmount {
		t.Errorf("referrer earnings = %v, want exactly one reward %v", got, cfg.RewardAmount)
	}
}

func TestMonthlyVolume_CalendarMonthCompletedSellsOnly(t *testing.T) {
	_, txRepo, service := newTransactionFixture(t)

	asOf := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	add := func(amount float64, created time.Time, txType models.TransactionType, status models.TransactionStatus) {
		tx := &models.Transaction{
			TelegramID:      100,
			Type:            txType,
			AmountToReceive: amount,
			CurrencyFrom:    "USDT",
			CurrencyTo:      "XAF",
		}
		if err := txRepo.Create(context.Background(), tx); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if status != models.TransactionStatusPending {
			if _, err := txRepo.Resolve(context.Background(), tx.ID, status); err != nil {
				t.Fatalf("Resolve: %v", err)
			}
		}
		txRepo.mu.Lock()
		txRepo.transactions[tx.ID].CreatedAt = created
		txRepo.mu.Unlock()
	}

	march := func(day int) time.Time {
		return time.Date(2024, time.March, day, 10, 0, 0, 0, time.UTC)
	}

	add(1000, march(2), models.TransactionTypeSell, models.TransactionStatusCompleted)
	add(2500, march(10), models.TransactionTypeSell, models.TransactionStatusCompleted)
	add(300, march(14), models.TransactionTypeSell, models.TransactionStatusCompleted)
	add(9999, march(12), models.TransactionTypeSell, models.TransactionStatusPending)
	add(700, march(13), models.TransactionTypeSell, models.TransactionStatusCancelled)
	add(5000, march(5), models.TransactionTypeBuy, models.TransactionStatusCompleted)
	add(4000, time.Date(2024, time.February, 28, 10, 0, 0, 0, time.UTC), models.TransactionTypeSell, models.TransactionStatusCompleted)
	add(4000, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), models.TransactionTypeSell, models.TransactionStatusCompleted)

	report, err := service.MonthlyVolume(context.Background(), 100, asOf)
	if err != nil {
		t.Fatalf("MonthlyVolume: %v", err)
	}
	if report.Volume != 3800 {
		t.Errorf("volume = %v, want 3800", report.Volume)
	}
	if report.Remaining != 500000-3800 {
		t.Errorf("remaining = %v, want %v", report.Remaining, 500000-3800)
	}
	if report.Month != "2024-03" {
		t.Errorf("month = %q, want 2024-03", report.Month)
	}
}
