package handlers

import (
	"errors"
	"time"

	"swapcash/internal/apperrors"
	"swapcash/internal/middleware"
	"swapcash/internal/repositories/interfaces"
	"swapcash/internal/services"
	"swapcash/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userRepo           interfaces.UserRepository
	referralService    services.ReferralService
	transactionService services.TransactionService
}

func NewUserHandler(
	userRepo interfaces.UserRepository,
	referralService services.ReferralService,
	transactionService services.TransactionService,
) *UserHandler {
	return &UserHandler{
		userRepo:           userRepo,
		referralService:    referralService,
		transactionService: transactionService,
	}
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	telegramID, ok := middleware.TelegramID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	user, err := h.userRepo.GetByTelegramID(c.Request.Context(), telegramID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", user)
}

// MyVolume reports this month's completed sell volume and remaining allowance.
func (h *UserHandler) MyVolume(c *gin.Context) {
	telegramID, ok := middleware.TelegramID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	report, err := h.transactionService.MonthlyVolume(c.Request.Context(), telegramID, time.Now())
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Monthly volume retrieved successfully", report)
}

// MyReferrals returns the user's referral stats and the users they invited.
func (h *UserHandler) MyReferrals(c *gin.Context) {
	telegramID, ok := middleware.TelegramID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	stats, err := h.referralService.GetStats(c.Request.Context(), telegramID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			utils.NotFoundResponse(c, "User")
			return
		}
		utils.InternalServerErrorResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	referred, total, err := h.referralService.ListReferred(c.Request.Context(), telegramID, params)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponseWithMeta(c, "Referrals retrieved successfully", gin.H{
		"stats":    stats,
		"referred": referred,
	}, &utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)})
}

// ListUsers is the operator view over all users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userRepo.List(c.Request.Context(), params)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponseWithMeta(c, "Users retrieved successfully", users,
		&utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)})
}
