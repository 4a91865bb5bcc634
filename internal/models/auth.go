package models

import "github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"

// AuthRequest is the login payload.
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate checks login credentials before they are sent.
func (r *AuthRequest) Validate() error {
	return validateStruct(r)
}

// RegisterRequest creates an account and logs into it.
type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// Validate checks the payload and that both passwords match.
func (r *RegisterRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Password != r.ConfirmPassword {
		return errors.NewValidationError("confirmPassword", "passwords do not match")
	}
	return nil
}

// AuthResponse is returned by the membership login endpoint.
type AuthResponse struct {
	Token     string `json:"token" validate:"required"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Validate checks a decoded login response.
func (r *AuthResponse) Validate() error {
	return validateStruct(r)
}
