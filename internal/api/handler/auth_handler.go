package handler

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/domain/customer"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// TokenIssuer signs bearer tokens for authenticated customers.
type TokenIssuer interface {
	Issue(customerID int64, email string) (string, time.Time, error)
}

type AuthHandler struct {
	service customer.CustomerService
	issuer  TokenIssuer
	logger  *slog.Logger
}

func NewAuthHandler(s customer.CustomerService, issuer TokenIssuer, l *slog.Logger) *AuthHandler {
	if s == nil || issuer == nil {
		panic("customer service and token issuer cannot be nil")
	}
	return &AuthHandler{
		service: s,
		issuer:  issuer,
		logger:  l.With("component", "AuthHandler"),
	}
}

// SignUp registers a customer and opens their default savings account.
//
// @Summary Register a new customer
// @Description Creates the customer, opens a Savings account with a zero balance and returns a bearer token.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup payload"
// @Success 201 {object} dto.AuthResponse "Customer registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid signup payload"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode signup request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	cust, acc, err := h.service.SignUp(r.Context(), req.ToRegistration())
	if err != nil {
		respondError(w, err)
		return
	}

	resp, err := h.authResponse(cust, "Account created successfully")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to issue token after signup", slog.Any("error", err))
		respondError(w, err)
		return
	}
	resp.AccountNumber = acc.Number

	h.logger.InfoContext(r.Context(), "Customer signed up", slog.Int64("customerID", cust.ID))
	respondJSON(w, http.StatusCreated, resp)
}

// Login verifies credentials and returns a bearer token.
//
// @Summary Log in
// @Description Verifies the email and password. Inactive customers are refused.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login payload"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid login payload"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Customer is inactive"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	cust, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Login rejected", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp, err := h.authResponse(cust, "Login successful")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to issue token after login", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) authResponse(cust *customer.Customer, message string) (dto.AuthResponse, error) {
	signed, expiresAt, err := h.issuer.Issue(cust.ID, cust.Email)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("could not issue token: %w", err)
	}
	return dto.AuthResponse{
		Success:   true,
		Message:   message,
		Token:     signed,
		ExpiresAt: expiresAt,
		Customer:  dto.NewCustomerSummary(cust),
	}, nil
}
