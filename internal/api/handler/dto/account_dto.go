package dto

import (
	"banking-api/internal/domain/account"
	"banking-api/internal/pkg/apperrors"
	"time"

	"github.com/shopspring/decimal"
)

type OpenAccountRequest struct {
	AccountType    string          `json:"accountType"`
	InitialDeposit decimal.Decimal `json:"initialDeposit" swaggertype:"number"`
}

func (r *OpenAccountRequest) Validate() error {
	if _, err := account.ParseType(r.AccountType); err != nil {
		return err
	}
	if r.InitialDeposit.IsNegative() {
		return apperrors.NewValidationError("initialDeposit", "initialDeposit cannot be negative")
	}
	if !r.InitialDeposit.Equal(r.InitialDeposit.Round(2)) {
		return apperrors.NewValidationError("initialDeposit", "initialDeposit must not have more than two decimal places")
	}
	return nil
}

type AccountResponse struct {
	AccountID     int64     `json:"accountID"`
	AccountNumber string    `json:"accountNumber"`
	AccountType   string    `json:"accountType"`
	Balance       Money     `json:"balance" swaggertype:"number"`
	DateOpened    time.Time `json:"dateOpened"`
	IsActive      bool      `json:"isActive"`
}

func NewAccountResponse(a *account.Account) AccountResponse {
	return AccountResponse{
		AccountID:     a.ID,
		AccountNumber: a.Number,
		AccountType:   string(a.Type),
		Balance:       NewMoney(a.Balance),
		DateOpened:    a.OpenedAt,
		IsActive:      a.Active,
	}
}

func NewAccountResponses(accounts []*account.Account) []AccountResponse {
	resp := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = NewAccountResponse(a)
	}
	return resp
}

type AccountsResponse struct {
	Success  bool              `json:"success"`
	Accounts []AccountResponse `json:"accounts"`
}

type BalanceResponse struct {
	Success       bool   `json:"success"`
	AccountNumber string `json:"accountNumber"`
	Balance       Money  `json:"balance" swaggertype:"number"`
	AccountType   string `json:"accountType"`
}

type OpenAccountResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	AccountNumber string `json:"accountNumber"`
	AccountType   string `json:"accountType"`
	Balance       Money  `json:"balance" swaggertype:"number"`
}
