package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/config"

	"golang.org/x/crypto/bcrypt"
)

const testBotToken = "12345:TEST_TOKEN"

func testSecurityConfig(t *testing.T) *config.SecurityConfig {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	return &config.SecurityConfig{
		JWTSecret:         "test-secret",
		JWTAccessTokenTTL: time.Hour,
		AdminEmail:        "ops@swapcash.test",
		AdminPasswordHash: string(hash),
	}
}

// signInitData builds init data the way Telegram does: sorted key=value
// lines joined by newlines, HMAC-SHA256 under HMAC("WebAppData", botToken).
func signInitData(t *testing.T, values url.Values) string {
	t.Helper()

	var lines []string
	for k, v := range values {
		lines = append(lines, k+"="+strings.Join(v, ""))
	}
	sort.Strings(lines)

	keyMAC := hmac.New(sha256.New, []byte("WebAppData"))
	keyMAC.Write([]byte(testBotToken))
	h := hmac.New(sha256.New, keyMAC.Sum(nil))
	h.Write([]byte(strings.Join(lines, "\n")))

	values.Set("hash", hex.EncodeToString(h.Sum(nil)))
	return values.Encode()
}

func newAuthFixture(t *testing.T) (*fakeUserRepo, AuthService) {
	t.Helper()

	userRepo := newFakeUserRepo()
	log := newTestLogger(t)
	referrals := NewReferralService(userRepo, testReferralConfig(), "swapcash_bot", log)

	return userRepo, NewAuthService(referrals, testSecurityConfig(t), testBotToken, log)
}

func TestAuthenticateTelegram_RegistersAndIssuesToken(t *testing.T) {
	_, service := newAuthFixture(t)

	values := url.Values{}
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Unix()))
	values.Set("user", `{"id":777,"first_name":"Bob","username":"bob"}`)
	initData := signInitData(t, values)

	result, err := service.AuthenticateTelegram(context.Background(), initData)
	if err != nil {
		t.Fatalf("AuthenticateTelegram: %v", err)
	}

	if result.User == nil || result.User.TelegramID != 777 {
		t.Fatalf("user = %+v, want telegram id 777", result.User)
	}

	claims, err := service.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TelegramID != 777 || claims.Role != "user" {
		t.Errorf("claims = %+v, want telegram id 777 with user role", claims)
	}
}

func TestAuthenticateTelegram_RejectsBadSignature(t *testing.T) {
	_, service := newAuthFixture(t)

	values := url.Values{}
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Unix()))
	values.Set("user", `{"id":777}`)
	initData := signInitData(t, values)

	// Flip the payload after signing.
	tampered := strings.Replace(initData, "777", "778", 1)

	if _, err := service.AuthenticateTelegram(context.Background(), tampered); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateTelegram_RejectsStalePayload(t *testing.T) {
	_, service := newAuthFixture(t)

	values := url.Values{}
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Add(-2*time.Hour).Unix()))
	values.Set("user", `{"id":777}`)
	initData := signInitData(t, values)

	if _, err := service.AuthenticateTelegram(context.Background(), initData); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials for stale auth_date", err)
	}
}

func TestAdminLogin(t *testing.T) {
	_, service := newAuthFixture(t)

	result, err := service.AdminLogin(context.Background(), "ops@swapcash.test", "correct horse battery")
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}

	claims, err := service.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Role != "admin" || claims.Email != "ops@swapcash.test" {
		t.Errorf("claims = %+v, want admin role", claims)
	}

	if _, err := service.AdminLogin(context.Background(), "ops@swapcash.test", "wrong"); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := service.AdminLogin(context.Background(), "other@swapcash.test", "correct horse battery"); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("wrong email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	_, service := newAuthFixture(t)

	if _, err := service.ValidateToken("not-a-token"); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}
