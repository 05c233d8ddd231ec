package handlers

import (
	"errors"

	"swapcash/internal/apperrors"
	"swapcash/internal/middleware"
	"swapcash/internal/models"
	"swapcash/internal/services"
	"swapcash/internal/utils"
	"swapcash/internal/validators"

	"github.com/gin-gonic/gin"
)

type RateHandler struct {
	rateService services.RateService
}

func NewRateHandler(rateService services.RateService) *RateHandler {
	return &RateHandler{
		rateService: rateService,
	}
}

// ListRates returns the published rates for all supported currencies.
func (h *RateHandler) ListRates(c *gin.Context) {
	rates, err := h.rateService.ListRates(c.Request.Context())
	if err != nil {
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Rates retrieved successfully", rates)
}

// GetRate returns the published rate for one currency.
func (h *RateHandler) GetRate(c *gin.Context) {
	rate, err := h.rateService.GetRate(c.Request.Context(), c.Param("currency"))
	if err != nil {
		if errors.Is(err, apperrors.ErrRateNotFound) {
			utils.NotFoundResponse(c, "Rate")
			return
		}
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Rate retrieved successfully", rate)
}

// UpdateRate upserts the rate settings for a currency.
func (h *RateHandler) UpdateRate(c *gin.Context) {
	var request validators.UpdateRateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateUpdateRate(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	setting := &models.RateSetting{
		Currency: request.Currency,
		BuyRate:  request.BuyRate,
		SellRate: request.SellRate,
		MinBuy:   request.MinBuy,
		MaxBuy:   request.MaxBuy,
		MinSell:  request.MinSell,
		MaxSell:  request.MaxSell,
	}

	if err := h.rateService.UpdateRate(c.Request.Context(), setting, middleware.AdminEmail(c)); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "Rate updated successfully", setting)
}
