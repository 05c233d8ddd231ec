package validators

import (
	"fmt"
	"regexp"
	"strings"

	"swapcash/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("momo_number", validateMomoNumber)
	validate.RegisterValidation("crypto_currency", validateCryptoCurrency)
	validate.RegisterValidation("wallet_address", validateWalletAddress)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Fields flattens the errors into the map shape the response envelope uses.
func (v ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "momo_number":
		return "Invalid mobile money number"
	case "crypto_currency":
		return "Unsupported currency"
	case "wallet_address":
		return "Invalid wallet address"
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

// Cameroonian MSISDN, with or without the 237 country prefix.
var momoNumberRegex = regexp.MustCompile(`^(\+?237)?6[5-9]\d{7}$`)

func validateMomoNumber(fl validator.FieldLevel) bool {
	return momoNumberRegex.MatchString(fl.Field().String())
}

func validateCryptoCurrency(fl validator.FieldLevel) bool {
	return utils.IsSupportedCurrency(fl.Field().String())
}

var walletAddressRegex = regexp.MustCompile(`^[a-zA-Z0-9]{20,90}$`)

func validateWalletAddress(fl validator.FieldLevel) bool {
	return walletAddressRegex.MatchString(fl.Field().String())
}
