package handler

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/api/middleware"
	"banking-api/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: request body is required", apperrors.ErrInvalidArgument)
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", apperrors.ErrInvalidArgument, err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// statusFor maps an error to its HTTP status. Anything unrecognised is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidArgument),
		errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrSameAccountTransfer),
		errors.Is(err, apperrors.ErrRepaymentExceedsBalance),
		errors.Is(err, apperrors.ErrLoanFullyPaid):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvalidCredentials), errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	detail := dto.ErrorDetail{Message: "An unexpected error occurred."}

	var validationError *apperrors.ValidationError
	switch {
	case status == http.StatusInternalServerError:
		slog.Default().Error("Unhandled internal error", "error", err)
	case errors.As(err, &validationError):
		detail.Message, detail.Field = validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		detail.Message = "Invalid credentials"
	case errors.Is(err, apperrors.ErrForbidden):
		detail.Message = "Account is inactive"
	default:
		detail.Message = err.Error()
	}

	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}

// authenticatedCustomer reads the customer placed in the context by the auth
// middleware and answers 401 itself when there is none.
func authenticatedCustomer(w http.ResponseWriter, r *http.Request) (int64, bool) {
	customerID, ok := middleware.CustomerIDFromContext(r.Context())
	if !ok {
		respondError(w, fmt.Errorf("%w: no authenticated customer", apperrors.ErrUnauthorized))
		return 0, false
	}
	return customerID, true
}

func getInt64URLParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(name, fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return id, nil
}
