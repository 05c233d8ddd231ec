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

type TransactionHandler struct {
	transactionService services.TransactionService
	rateService        services.RateService
}

func NewTransactionHandler(transactionService services.TransactionService, rateService services.RateService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		rateService:        rateService,
	}
}

// Quote prices an order without recording anything.
func (h *TransactionHandler) Quote(c *gin.Context) {
	var request validators.QuoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	var quote *services.Quote
	var err error
	if request.Type == "buy" {
		quote, err = h.rateService.QuoteBuy(c.Request.Context(), request.Currency, request.Amount)
	} else {
		quote, err = h.rateService.QuoteSell(c.Request.Context(), request.Currency, request.Amount)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrRateNotFound) {
			utils.NotFoundResponse(c, "Rate")
			return
		}
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "Quote calculated successfully", quote)
}

// Create records a pending buy or sell order for the authenticated user.
func (h *TransactionHandler) Create(c *gin.Context) {
	telegramID, ok := middleware.TelegramID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request validators.CreateTransactionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateCreateTransaction(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	tx, err := h.transactionService.Create(c.Request.Context(), &services.CreateTransactionRequest{
		TelegramID:    telegramID,
		Type:          models.TransactionType(request.Type),
		Currency:      request.Currency,
		Amount:        request.Amount,
		WalletAddress: request.WalletAddress,
		MomoNumber:    request.MomoNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSellLimitExceeded):
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, "SELL_LIMIT_EXCEEDED", "Monthly sell limit exceeded")
		case errors.Is(err, apperrors.ErrRateNotFound):
			utils.NotFoundResponse(c, "Rate")
		default:
			utils.BadRequestResponse(c, err.Error())
		}
		return
	}

	utils.CreatedResponse(c, "Transaction created successfully", tx)
}

// MyTransactions lists the authenticated user's orders.
func (h *TransactionHandler) MyTransactions(c *gin.Context) {
	telegramID, ok := middleware.TelegramID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.transactionService.GetForUser(c.Request.Context(), telegramID, params)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponseWithMeta(c, "Transactions retrieved successfully", transactions,
		&utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)})
}

// ListPending is the operator queue of orders awaiting settlement.
func (h *TransactionHandler) ListPending(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	transactions, total, err := h.transactionService.ListByStatus(c.Request.Context(), models.TransactionStatusPending, params)
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponseWithMeta(c, "Pending transactions retrieved successfully", transactions,
		&utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)})
}

// Complete marks a pending order settled. Completing twice is a no-op.
func (h *TransactionHandler) Complete(c *gin.Context) {
	h.resolve(c, true)
}

// Cancel voids a pending order.
func (h *TransactionHandler) Cancel(c *gin.Context) {
	h.resolve(c, false)
}

func (h *TransactionHandler) resolve(c *gin.Context, approve bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid transaction ID")
		return
	}

	tx, err := h.transactionService.Resolve(c.Request.Context(), id, approve, middleware.AdminEmail(c))
	if err != nil {
		switch {
		case apperrors.IsNoOp(err):
			// Terminal already; report the stored state unchanged.
			utils.SuccessResponse(c, "Transaction already resolved", tx)
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			utils.NotFoundResponse(c, "Transaction")
		default:
			utils.InternalServerErrorResponse(c)
		}
		return
	}

	utils.SuccessResponse(c, "Transaction resolved successfully", tx)
}
