package validators

type TelegramAuthRequest struct {
	InitData string `json:"init_data" validate:"required"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}
