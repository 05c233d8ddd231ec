package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	t.Cleanup(func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	})

	db := client.Database(fmt.Sprintf("swapcash_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		dropCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(dropCtx)
	})

	return db
}

func TestUserRepository_MarkActiveCompareAndSet(t *testing.T) {
	db := testDatabase(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	user := &models.User{TelegramID: 100, ReferralCode: "INVITE01"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	won, err := repo.MarkActive(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkActive: %v", err)
	}
	if !won {
		t.Fatal("first MarkActive must win")
	}

	won, err = repo.MarkActive(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkActive repeat: %v", err)
	}
	if won {
		t.Fatal("second MarkActive must lose")
	}
}

func TestUserRepository_MarkActiveConcurrent(t *testing.T) {
	db := testDatabase(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	user := &models.User{TelegramID: 100, ReferralCode: "INVITE01"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const racers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := repo.MarkActive(ctx, user.ID)
			if err != nil {
				t.Errorf("MarkActive: %v", err)
				return
			}
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
}

func TestUserRepository_DebitEarningsGuard(t *testing.T) {
	db := testDatabase(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	user := &models.User{TelegramID: 100, ReferralCode: "INVITE01"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.CreditEarnings(ctx, 100, 0.5); err != nil {
		t.Fatalf("CreditEarnings: %v", err)
	}

	if err := repo.DebitEarnings(ctx, 100, 0.8); !errors.Is(err, apperrors.ErrInsufficientEarnings) {
		t.Fatalf("over-debit err = %v, want ErrInsufficientEarnings", err)
	}

	stored, err := repo.GetByTelegramID(ctx, 100)
	if err != nil {
		t.Fatalf("GetByTelegramID: %v", err)
	}
	if stored.ReferralEarnings != 0.5 {
		t.Errorf("earnings = %v, want untouched 0.5", stored.ReferralEarnings)
	}

	if err := repo.DebitEarnings(ctx, 100, 0.5); err != nil {
		t.Fatalf("exact debit: %v", err)
	}
	if err := repo.DebitEarnings(ctx, 999, 1); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("unknown user err = %v, want ErrUserNotFound", err)
	}
}

func TestTransactionRepository_MonthlyVolume(t *testing.T) {
	db := testDatabase(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	asOf := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	insert := func(amount float64, created time.Time, txType models.TransactionType, status models.TransactionStatus) {
		t.Helper()
		tx := &models.Transaction{
			TelegramID:      100,
			Type:            txType,
			AmountToReceive: amount,
			CurrencyFrom:    "USDT",
			CurrencyTo:      "XAF",
		}
		if err := repo.Create(ctx, tx); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if status != models.TransactionStatusPending {
			if _, err := repo.Resolve(ctx, tx.ID, status); err != nil {
				t.Fatalf("Resolve: %v", err)
			}
		}
		// Backdate created_at to place the document in the right month.
		if _, err := db.Collection("transactions").UpdateByID(ctx, tx.ID,
			bson.M{"$set": bson.M{"created_at": created}}); err != nil {
			t.Fatalf("backdate: %v", err)
		}
	}

	march := func(day int) time.Time {
		return time.Date(2024, time.March, day, 10, 0, 0, 0, time.UTC)
	}

	insert(1000, march(2), models.TransactionTypeSell, models.TransactionStatusCompleted)
	insert(2500, march(10), models.TransactionTypeSell, models.TransactionStatusCompleted)
	insert(300, march(14), models.TransactionTypeSell, models.TransactionStatusCompleted)
	insert(9999, march(12), models.TransactionTypeSell, models.TransactionStatusPending)
	insert(5000, march(5), models.TransactionTypeBuy, models.TransactionStatusCompleted)
	insert(4000, time.Date(2024, time.February, 28, 10, 0, 0, 0, time.UTC), models.TransactionTypeSell, models.TransactionStatusCompleted)

	volume, err := repo.MonthlyVolume(ctx, 100, asOf)
	if err != nil {
		t.Fatalf("MonthlyVolume: %v", err)
	}
	if volume != 3800 {
		t.Errorf("volume = %v, want 3800", volume)
	}
}

func TestWithdrawalRepository_ResolveFence(t *testing.T) {
	db := testDatabase(t)
	repo := NewWithdrawalRepository(db)
	ctx := context.Background()

	wd := &models.Withdrawal{TelegramID: 100, Amount: 5, MomoNumber: "237650000001"}
	if err := repo.Create(ctx, wd); err != nil {
		t.Fatalf("Create: %v", err)
	}

	flipped, err := repo.Resolve(ctx, wd.ID, models.WithdrawalStatusCancelled)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !flipped {
		t.Fatal("first resolve must flip")
	}

	flipped, err = repo.Resolve(ctx, wd.ID, models.WithdrawalStatusCompleted)
	if err != nil {
		t.Fatalf("Resolve repeat: %v", err)
	}
	if flipped {
		t.Fatal("terminal withdrawal must not flip again")
	}

	interrupted, err := repo.FindInterruptedRejections(ctx)
	if err != nil {
		t.Fatalf("FindInterruptedRejections: %v", err)
	}
	if len(interrupted) != 1 {
		t.Fatalf("interrupted = %d, want 1", len(interrupted))
	}

	won, err := repo.MarkRefundCredited(ctx, wd.ID)
	if err != nil {
		t.Fatalf("MarkRefundCredited: %v", err)
	}
	if !won {
		t.Fatal("first marker flip must win")
	}
	won, err = repo.MarkRefundCredited(ctx, wd.ID)
	if err != nil {
		t.Fatalf("MarkRefundCredited repeat: %v", err)
	}
	if won {
		t.Fatal("second marker flip must lose")
	}
	interrupted, err = repo.FindInterruptedRejections(ctx)
	if err != nil {
		t.Fatalf("FindInterruptedRejections repeat: %v", err)
	}
	if len(interrupted) != 0 {
		t.Errorf("interrupted after marker = %d, want 0", len(interrupted))
	}
}
