package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// SolveRequest defines the DTO for the solve endpoint. Difficulty defaults
// to the server's configured difficulty.
type SolveRequest struct {
	Message    string `json:"message" validate:"max=4096"`
	Sender     string `json:"sender" validate:"required,max=64"`
	Difficulty *uint8 `json:"difficulty,omitempty"`
}
