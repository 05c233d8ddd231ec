package handlers

import (
	"errors"
	"net/http"

	"swapcash/internal/apperrors"
	"swapcash/internal/services"
	"swapcash/internal/utils"
	"swapcash/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// TelegramAuth exchanges Telegram WebApp init data for a session token,
// creating the user on first contact.
func (h *AuthHandler) TelegramAuth(c *gin.Context) {
	var request validators.TelegramAuthRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	result, err := h.authService.AuthenticateTelegram(c.Request.Context(), request.InitData)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			utils.ErrorResponse(c, http.StatusUnauthorized, "INVALID_INIT_DATA", "Telegram authentication failed")
			return
		}
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Authenticated successfully", result)
}

// AdminLogin authenticates an operator with email and password.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var request validators.AdminLoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	result, err := h.authService.AdminLogin(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			utils.ErrorResponse(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Logged in successfully", result)
}
