package dto

import (
	"banking-api/internal/domain/customer"
	"banking-api/internal/pkg/apperrors"
	"strings"
	"time"
)

type SignupRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

func (r *SignupRequest) ToRegistration() customer.Registration {
	return customer.Registration{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Phone:     r.Phone,
		Address:   r.Address,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if !customer.ValidEmail(customer.NormalizeEmail(r.Email)) {
		return apperrors.NewValidationError("email", "valid email is required")
	}
	if strings.TrimSpace(r.Password) == "" {
		return apperrors.NewValidationError("password", "password is required")
	}
	return nil
}

type CustomerSummary struct {
	CustomerID int64  `json:"customerID"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	UserRole   string `json:"userRole"`
}

func NewCustomerSummary(c *customer.Customer) CustomerSummary {
	return CustomerSummary{
		CustomerID: c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		UserRole:   c.Role,
	}
}

type AuthResponse struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	Token         string          `json:"token"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	Customer      CustomerSummary `json:"customer"`
	AccountNumber string          `json:"accountNumber,omitempty"`
}
