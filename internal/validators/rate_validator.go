package validators

type UpdateRateRequest struct {
	Currency string  `json:"currency" validate:"required,crypto_currency"`
	BuyRate  float64 `json:"buy_rate" validate:"required,gt=0"`
	SellRate float64 `json:"sell_rate" validate:"required,gt=0"`
	MinBuy   float64 `json:"min_buy" validate:"omitempty,gt=0"`
	MaxBuy   float64 `json:"max_buy" validate:"omitempty,gt=0"`
	MinSell  float64 `json:"min_sell" validate:"omitempty,gt=0"`
	MaxSell  float64 `json:"max_sell" validate:"omitempty,gt=0"`
}

func ValidateUpdateRate(req *UpdateRateRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if req.MaxBuy > 0 && req.MinBuy > req.MaxBuy {
		errors = append(errors, ValidationError{
			Field:   "min_buy",
			Message: "Minimum buy must not exceed maximum buy",
		})
	}
	if req.MaxSell > 0 && req.MinSell > req.MaxSell {
		errors = append(errors, ValidationError{
			Field:   "min_sell",
			Message: "Minimum sell must not exceed maximum sell",
		})
	}

	return errors
}
