package validators

type CreateTransactionRequest struct {
	Type          string  `json:"type" validate:"required,oneof=buy sell"`
	Currency      string  `json:"currency" validate:"required,crypto_currency"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	WalletAddress string  `json:"wallet_address" validate:"omitempty,wallet_address"`
	MomoNumber    string  `json:"momo_number" validate:"omitempty,momo_number"`
}

func ValidateCreateTransaction(req *CreateTransactionRequest) ValidationErrors {
	errors := ValidateStruct(req)

	// Buys pay out to a wallet, sells pay out to mobile money.
	if req.Type == "buy" && req.WalletAddress == "" {
		errors = append(errors, ValidationError{
			Field:   "wallet_address",
			Message: "Wallet address is required for buy orders",
		})
	}
	if req.Type == "sell" && req.MomoNumber == "" {
		errors = append(errors, ValidationError{
			Field:   "momo_number",
			Message: "Mobile money number is required for sell orders",
		})
	}

	return errors
}

type QuoteRequest struct {
	Type     string  `json:"type" validate:"required,oneof=buy sell"`
	Currency string  `json:"currency" validate:"required,crypto_currency"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}
