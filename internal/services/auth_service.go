package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/config"
	"swapcash/internal/models"
	"swapcash/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const initDataMaxAge = time.Hour

type AuthService interface {
	// AuthenticateTelegram verifies WebApp init data, registers the user
	// on first contact and returns a signed token.
	AuthenticateTelegram(ctx context.Context, initData string) (*AuthResult, error)

	// AdminLogin checks the operator credentials from configuration.
	AdminLogin(ctx context.Context, email, password string) (*AuthResult, error)

	ValidateToken(tokenString string) (*TokenClaims, error)
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user,omitempty"`
}

type TokenClaims struct {
	TelegramID int64  `json:"telegram_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	referrals ReferralService
	security  *config.SecurityConfig
	botToken  string
	logger    *logger.Logger
}

func NewAuthService(referrals ReferralService, security *config.SecurityConfig, botToken string, log *logger.Logger) AuthService {
	return &authService{
		referrals: referrals,
		security:  security,
		botToken:  botToken,
		logger:    log,
	}
}

// telegramWebAppUser is the `user` payload embedded in init data.
type telegramWebAppUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

func (s *authService) AuthenticateTelegram(ctx context.Context, initData string) (*AuthResult, error) {
	values, ok := verifyInitData(initData, s.botToken)
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	var webAppUser telegramWebAppUser
	if err := json.Unmarshal([]byte(values.Get("user")), &webAppUser); err != nil || webAppUser.ID == 0 {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.referrals.RegisterUser(ctx, &RegisterUserRequest{
		TelegramID: webAppUser.ID,
		Username:   webAppUser.Username,
		FirstName:  webAppUser.FirstName,
		// start_param carries the inviter's referral code on deep links.
		ReferralCode: values.Get("start_param"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	token, expiresAt, err := s.issueToken(&TokenClaims{
		TelegramID: user.TelegramID,
		Role:       "user",
	})
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	if s.security.AdminEmail == "" || s.security.AdminPasswordHash == "" {
		s.logger.Warn("Admin login attempted but no admin credentials are configured")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !strings.EqualFold(email, s.security.AdminEmail) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.security.AdminPasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueToken(&TokenClaims{
		Email: s.security.AdminEmail,
		Role:  "admin",
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogAdminAction(s.security.AdminEmail, "login", nil)

	return &AuthResult{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) issueToken(claims *TokenClaims) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.security.JWTAccessTokenTTL)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.security.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.security.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidCredentials
	}

	return claims, nil
}

// verifyInitData checks the WebApp init data signature and freshness. The
// signing key is HMAC-SHA256 of the bot token under the constant "WebAppData".
func verifyInitData(initData, botToken string) (url.Values, bool) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, false
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, false
	}
	values.Del("hash")

	var dataCheck []string
	for k, v := range values {
		dataCheck = append(dataCheck, k+"="+strings.Join(v, ""))
	}
	sort.Strings(dataCheck)
	dataString := strings.Join(dataCheck, "\n")

	keyMAC := hmac.New(sha256.New, []byte("WebAppData"))
	keyMAC.Write([]byte(botToken))
	secret := keyMAC.Sum(nil)

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(dataString))
	calculated := h.Sum(nil)

	provided, err := hex.DecodeString(hash)
	if err != nil {
		return nil, false
	}
	if !hmac.Equal(calculated, provided) {
		return nil, false
	}

	authDateStr := values.Get("auth_date")
	if authDateStr == "" {
		return nil, false
	}
	authDate, err := strconv.ParseInt(authDateStr, 10, 64)
	if err != nil {
		return nil, false
	}

	now := time.Now().Unix()
	// allow small clock skew but reject stale payloads
	if now-authDate > int64(initDataMaxAge.Seconds()) || authDate-now > 300 {
		return nil, false
	}

	return values, true
}
