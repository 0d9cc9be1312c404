package handler

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/domain/account"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AccountHandler struct {
	service account.AccountService
	logger  *slog.Logger
}

func NewAccountHandler(s account.AccountService, l *slog.Logger) *AccountHandler {
	if s == nil {
		panic("account service cannot be nil")
	}
	return &AccountHandler{service: s, logger: l.With("component", "AccountHandler")}
}

// ListAccounts handles GET /accounts
// @Summary List accounts
// @Description Lists the authenticated customer's active accounts, oldest first.
// @Tags Accounts
// @Produce json
// @Success 200 {object} dto.AccountsResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /accounts [get]
// @Security BearerAuth
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	accounts, err := h.service.ListAccounts(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.AccountsResponse{Success: true, Accounts: dto.NewAccountResponses(accounts)})
}

// OpenAccount handles POST /accounts
// @Summary Open an account
// @Description Opens a Savings or Current account with an optional initial deposit.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body dto.OpenAccountRequest true "Account type and initial deposit"
// @Success 201 {object} dto.OpenAccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid account type or deposit"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /accounts [post]
// @Security BearerAuth
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	var req dto.OpenAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	acc, err := h.service.OpenAccount(r.Context(), customerID, req.AccountType, req.InitialDeposit.InexactFloat64())
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Account opened", slog.Int64("customerID", customerID), slog.String("accountNumber", acc.Number))
	respondJSON(w, http.StatusCreated, dto.OpenAccountResponse{
		Success:       true,
		Message:       "Account created successfully",
		AccountNumber: acc.Number,
		AccountType:   string(acc.Type),
		Balance:       dto.NewMoney(acc.Balance),
	})
}

// GetBalance handles GET /accounts/{accountNumber}/balance
// @Summary Account balance
// @Tags Accounts
// @Produce json
// @Param accountNumber path string true "Account number"
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Account not found or not owned by the customer"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /accounts/{accountNumber}/balance [get]
// @Security BearerAuth
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	acc, err := h.service.GetBalance(r.Context(), customerID, chi.URLParam(r, "accountNumber"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.BalanceResponse{
		Success:       true,
		AccountNumber: acc.Number,
		Balance:       dto.NewMoney(acc.Balance),
		AccountType:   string(acc.Type),
	})
}
