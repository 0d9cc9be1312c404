package handler

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/domain/transaction"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type TransactionHandler struct {
	service transaction.TransactionService
	logger  *slog.Logger
}

func NewTransactionHandler(s transaction.TransactionService, l *slog.Logger) *TransactionHandler {
	if s == nil {
		panic("transaction service cannot be nil")
	}
	return &TransactionHandler{service: s, logger: l.With("component", "TransactionHandler")}
}

type movementFunc func(ctx context.Context, customerID int64, accountNumber string, amount float64) (*transaction.Receipt, error)

// Deposit handles POST /transactions/deposit
// @Summary Deposit money
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body dto.MovementRequest true "Account number and amount"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid amount"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /transactions/deposit [post]
// @Security BearerAuth
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.service.Deposit, "Deposit successful")
}

// Withdraw handles POST /transactions/withdraw
// @Summary Withdraw money
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body dto.MovementRequest true "Account number and amount"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or insufficient funds"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /transactions/withdraw [post]
// @Security BearerAuth
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.service.Withdraw, "Withdrawal successful")
}

func (h *TransactionHandler) movement(w http.ResponseWriter, r *http.Request, move movementFunc, message string) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	var req dto.MovementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	receipt, err := move(r.Context(), customerID, req.AccountNumber, req.Amount.InexactFloat64())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newReceiptResponse(receipt, message))
}

// Transfer handles POST /transactions/transfer
// @Summary Transfer money
// @Description Moves money from one of the customer's accounts to any active account.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body dto.TransferRequest true "Source, destination and amount"
// @Success 200 {object} dto.ReceiptResponse "Source account balance after the transfer"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount, same account or insufficient funds"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /transactions/transfer [post]
// @Security BearerAuth
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	receipt, err := h.service.Transfer(r.Context(), customerID, req.FromAccountNumber, req.ToAccountNumber, req.Amount.InexactFloat64())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newReceiptResponse(receipt, "Transfer successful"))
}

// History handles GET /transactions/history/{accountNumber}
// @Summary Account history
// @Description Lists every transaction touching the account, newest first.
// @Tags Transactions
// @Produce json
// @Param accountNumber path string true "Account number"
// @Success 200 {object} dto.TransactionsResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /transactions/history/{accountNumber} [get]
// @Security BearerAuth
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	lines, err := h.service.History(r.Context(), customerID, chi.URLParam(r, "accountNumber"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.TransactionsResponse{Success: true, Transactions: dto.NewTransactionResponses(lines)})
}

// Recent handles GET /transactions/recent
// @Summary Recent transactions
// @Description The latest transactions across all of the customer's accounts.
// @Tags Transactions
// @Produce json
// @Success 200 {object} dto.TransactionsResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /transactions/recent [get]
// @Security BearerAuth
func (h *TransactionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	lines, err := h.service.Recent(r.Context(), customerID, transaction.RecentLimit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.TransactionsResponse{Success: true, Transactions: dto.NewTransactionResponses(lines)})
}

func newReceiptResponse(receipt *transaction.Receipt, message string) dto.ReceiptResponse {
	return dto.ReceiptResponse{
		Success:       true,
		Message:       message,
		TransactionID: receipt.Transaction.ID,
		AccountNumber: receipt.AccountNumber,
		NewBalance:    dto.NewMoney(receipt.NewBalance),
	}
}
