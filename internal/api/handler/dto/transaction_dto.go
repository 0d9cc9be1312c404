package dto

import (
	"banking-api/internal/domain/ledger"
	"banking-api/internal/pkg/apperrors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementRequest is the body of a deposit or a withdrawal.
type MovementRequest struct {
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"number"`
}

func (r *MovementRequest) Validate() error {
	if strings.TrimSpace(r.AccountNumber) == "" {
		return apperrors.NewValidationError("accountNumber", "accountNumber is required")
	}
	return validateAmount("amount", r.Amount)
}

type TransferRequest struct {
	FromAccountNumber string          `json:"fromAccountNumber"`
	ToAccountNumber   string          `json:"toAccountNumber"`
	Amount            decimal.Decimal `json:"amount" swaggertype:"number"`
}

func (r *TransferRequest) Validate() error {
	if strings.TrimSpace(r.FromAccountNumber) == "" {
		return apperrors.NewValidationError("fromAccountNumber", "fromAccountNumber is required")
	}
	if strings.TrimSpace(r.ToAccountNumber) == "" {
		return apperrors.NewValidationError("toAccountNumber", "toAccountNumber is required")
	}
	return validateAmount("amount", r.Amount)
}

type TransactionResponse struct {
	TransactionID   int64     `json:"transactionID"`
	FromAccount     *string   `json:"fromAccount"`
	ToAccount       *string   `json:"toAccount"`
	TransactionType string    `json:"transactionType"`
	Amount          Money     `json:"amount" swaggertype:"number"`
	TransactionDate time.Time `json:"transactionDate"`
}

func NewTransactionResponse(t *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.ID,
		FromAccount:     t.FromAccount,
		ToAccount:       t.ToAccount,
		TransactionType: string(t.Type),
		Amount:          NewMoney(t.Amount),
		TransactionDate: t.CreatedAt,
	}
}

func NewTransactionResponses(lines []*ledger.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, len(lines))
	for i, t := range lines {
		resp[i] = NewTransactionResponse(t)
	}
	return resp
}

type TransactionsResponse struct {
	Success      bool                  `json:"success"`
	Transactions []TransactionResponse `json:"transactions"`
}

type ReceiptResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID int64  `json:"transactionID"`
	AccountNumber string `json:"accountNumber"`
	NewBalance    Money  `json:"newBalance" swaggertype:"number"`
}
