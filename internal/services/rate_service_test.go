package services

import (
	"context"
	"errors"
	"testing"

	"swapcash/internal/apperrors"
	"swapcash/internal/models"
)

func newRateFixture(t *testing.T) (*fakeRateRepo, RateService) {
	t.Helper()

	repo := newFakeRateRepo()
	repo.Upsert(context.Background(), &models.RateSetting{
		Currency: "BTC",
		BuyRate:  40000000,
		SellRate: 38000000,
		MinBuy:   5000,
		MaxBuy:   5000000,
		MinSell:  5000,
		MaxSell:  5000000,
	})

	return repo, NewRateService(repo, nil, newTestLogger(t))
}

func TestQuoteBuy_Math(t *testing.T) {
	_, service := newRateFixture(t)

	quote, err := service.QuoteBuy(context.Background(), "BTC", 2000000)
	if err != nil {
		t.Fatalf("QuoteBuy: %v", err)
	}

	if quote.AmountToSend != 2000000 {
		t.Errorf("amount_to_send = %v, want 2000000", quote.AmountToSend)
	}
	if quote.AmountToReceive != 0.05 {
		t.Errorf("amount_to_receive = %v, want 0.05", quote.AmountToReceive)
	}
	if quote.CurrencyFrom != "XAF" || quote.CurrencyTo != "BTC" {
		t.Errorf("legs = %s -> %s, want XAF -> BTC", quote.CurrencyFrom, quote.CurrencyTo)
	}
}

func TestQuoteSell_Math(t *testing.T) {
	_, service := newRateFixture(t)

	quote, err := service.QuoteSell(context.Background(), "BTC", 0.1)
	if err != nil {
		t.Fatalf("QuoteSell: %v", err)
	}

	if quote.AmountToSend != 0.1 {
		t.Errorf("amount_to_send = %v, want 0.1", quote.AmountToSend)
	}
	if quote.AmountToReceive != 3800000 {
		t.Errorf("amount_to_receive = %v, want 3800000", quote.AmountToReceive)
	}
	if quote.CurrencyFrom != "BTC" || quote.CurrencyTo != "XAF" {
		t.Errorf("legs = %s -> %s, want BTC -> XAF", quote.CurrencyFrom, quote.CurrencyTo)
	}
}

func TestQuote_Bounds(t *testing.T) {
	_, service := newRateFixture(t)

	if _, err := service.QuoteBuy(context.Background(), "BTC", 1000); err == nil {
		t.Error("buy below minimum must fail")
	}
	if _, err := service.QuoteBuy(context.Background(), "BTC", 6000000); err == nil {
		t.Error("buy above maximum must fail")
	}
	if _, err := service.QuoteSell(context.Background(), "BTC", 0.00001); err == nil {
		t.Error("sell below minimum must fail")
	}
	if _, err := service.QuoteSell(context.Background(), "BTC", 1); err == nil {
		t.Error("sell above maximum must fail")
	}
}

func TestGetRate_UnknownCurrency(t *testing.T) {
	_, service := newRateFixture(t)

	_, err := service.GetRate(context.Background(), "DOGE")
	if !errors.Is(err, apperrors.ErrRateNotFound) {
		t.Fatalf("err = %v, want ErrRateNotFound", err)
	}
}

func TestUpdateRate_RejectsNonPositive(t *testing.T) {
	_, service := newRateFixture(t)

	err := service.UpdateRate(context.Background(), &models.RateSetting{
		Currency: "BTC",
		BuyRate:  0,
		SellRate: 100,
	}, "ops@swapcash")
	if err == nil {
		t.Fatal("zero buy rate must be rejected")
	}
}
