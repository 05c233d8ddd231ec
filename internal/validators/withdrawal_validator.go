package validators

type RequestWithdrawalRequest struct {
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	MomoNumber string  `json:"momo_number" validate:"required,momo_number"`
}

func ValidateRequestWithdrawal(req *RequestWithdrawalRequest) ValidationErrors {
	return ValidateStruct(req)
}

type ResolveWithdrawalRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Note   string `json:"note" validate:"omitempty,max=255"`
}

func ValidateResolveWithdrawal(req *ResolveWithdrawalRequest) ValidationErrors {
	return ValidateStruct(req)
}
