package handlers

import (
	"errors"
	"net/http"

	"swapcash/internal/apperrors"
	"swapcash/internal/middleware"
	"swapcash/internal/models"
	"swapcash/internal/services"
	"swapcash/internal/utils"
	"swapcash/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WithdrawalHandler struct {
	withdrawalService services.WithdrawalService
}

func NewWithdrawalHandler(withdrawalService services.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
	}
}

// Request reserves earnings and queues a payout for admin review.
func (h *WithdrawalHandler) Request(c *gin.Context) {
	telegramID, ok := middleware.TelegramID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateRequestWithdrawal(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	withdrawal, err := h.withdrawalService.Request(c.Request.Context(), &services.WithdrawalRequest{
		TelegramID: telegramID,
		Amount:     request.Amount,
		MomoNumber: request.MomoNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInsufficientEarnings):
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, "INSUFFICIENT_EARNINGS", "Referral earnings do not cover this amount")
		case errors.Is(err, apperrors.ErrUserNotFound):
			utils.NotFoundResponse(c, "User")
		default:
			utils.BadRequestResponse(c, err.Error())
		}
		return
	}

	utils.CreatedResponse(c, "Withdrawal requested successfully", withdrawal)
}

// MyWithdrawals lists the authenticated user's payout requests.
func (h *WithdrawalHandler) MyWithdrawals(c *gin.Context) {
	telegramID, ok := middleware.TelegramID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	withdrawals, total, err := h.withdrawalService.GetForUser(c.Request.Context(), telegramID, params)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponseWithMeta(c, "Withdrawals retrieved successfully", withdrawals,
		&utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)})
}

// ListPending is the operator queue of payouts awaiting a decision.
func (h *WithdrawalHandler) ListPending(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	withdrawals, total, err := h.withdrawalService.ListByStatus(c.Request.Context(), models.WithdrawalStatusPending, params)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponseWithMeta(c, "Pending withdrawals retrieved successfully", withdrawals,
		&utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)})
}

// Resolve applies an admin approve or reject decision.
func (h *WithdrawalHandler) Resolve(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid withdrawal ID")
		return
	}

	var request validators.ResolveWithdrawalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateResolveWithdrawal(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	withdrawal, err := h.withdrawalService.Resolve(c.Request.Context(), id,
		services.WithdrawalOutcome(request.Action), middleware.AdminEmail(c))
	if err != nil {
		switch {
		case apperrors.IsNoOp(err):
			utils.SuccessResponse(c, "Withdrawal already resolved", withdrawal)
		case errors.Is(err, apperrors.ErrWithdrawalNotFound):
			utils.NotFoundResponse(c, "Withdrawal")
		default:
			utils.InternalServerErrorResponse(c)
		}
		return
	}

	utils.SuccessResponse(c, "Withdrawal resolved successfully", withdrawal)
}

// Reconcile sweeps rejections that were interrupted before their refund.
func (h *WithdrawalHandler) Reconcile(c *gin.Context) {
	repaired, err := h.withdrawalService.ReconcileInterruptedRejections(c.Request.Context())
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Reconciliation completed", gin.H{"repaired": repaired})
}
