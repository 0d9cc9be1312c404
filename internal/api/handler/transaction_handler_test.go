package handler

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/domain/ledger"
	"banking-api/internal/domain/transaction"
	"banking-api/internal/pkg/apperrors"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransactionHandlerDeposit(t *testing.T) {
	t.Run("credits the account", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(mockService, logger)

		receipt := &transaction.Receipt{
			Transaction:   ledger.NewCredit(ledger.TypeDeposit, 1, "ACC1", 100.25),
			AccountNumber: "ACC1",
			NewBalance:    600.25,
		}
		receipt.Transaction.ID = 41
		mockService.On("Deposit", mock.Anything, int64(7), "ACC1", 100.25).Return(receipt, nil).Once()

		req := newJSONRequest(t, http.MethodPost, "/api/transactions/deposit", map[string]any{"accountNumber": "ACC1", "amount": 100.25})
		rec := httptest.NewRecorder()
		handler.Deposit(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Deposit successful","transactionID":41,"accountNumber":"ACC1","newBalance":600.25}`, rec.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("zero amount is rejected before reaching the service", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(mockService, logger)

		req := newJSONRequest(t, http.MethodPost, "/api/transactions/deposit", map[string]any{"accountNumber": "ACC1", "amount": 0})
		rec := httptest.NewRecorder()
		handler.Deposit(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "amount", resp.Error.Field)
		mockService.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTransactionHandlerWithdraw(t *testing.T) {
	mockService := new(MockTransactionService)
	handler := NewTransactionHandler(mockService, logger)

	mockService.On("Withdraw", mock.Anything, int64(7), "ACC1", 5000.0).
		Return(nil, fmt.Errorf("%w: balance 120.00", apperrors.ErrInsufficientFunds)).Once()

	req := newJSONRequest(t, http.MethodPost, "/api/transactions/withdraw", map[string]any{"accountNumber": "ACC1", "amount": 5000})
	rec := httptest.NewRecorder()
	handler.Withdraw(rec, asCustomer(req, 7))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Error.Message, "insufficient funds")
	mockService.AssertExpectations(t)
}

func TestTransactionHandlerTransfer(t *testing.T) {
	t.Run("reports the source balance", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(mockService, logger)

		receipt := &transaction.Receipt{
			Transaction:   ledger.NewTransfer(1, "ACC1", 2, "ACC2", 40),
			AccountNumber: "ACC1",
			NewBalance:    60,
		}
		mockService.On("Transfer", mock.Anything, int64(7), "ACC1", "ACC2", 40.0).Return(receipt, nil).Once()

		req := newJSONRequest(t, http.MethodPost, "/api/transactions/transfer",
			map[string]any{"fromAccountNumber": "ACC1", "toAccountNumber": "ACC2", "amount": 40})
		rec := httptest.NewRecorder()
		handler.Transfer(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ReceiptResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Transfer successful", resp.Message)
		assert.Equal(t, "ACC1", resp.AccountNumber)
		assert.Equal(t, 60.0, resp.NewBalance.Float64())
	})

	t.Run("same account is rejected", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(mockService, logger)

		mockService.On("Transfer", mock.Anything, int64(7), "ACC1", "ACC1", 40.0).Return(nil, apperrors.ErrSameAccountTransfer).Once()

		req := newJSONRequest(t, http.MethodPost, "/api/transactions/transfer",
			map[string]any{"fromAccountNumber": "ACC1", "toAccountNumber": "ACC1", "amount": 40})
		rec := httptest.NewRecorder()
		handler.Transfer(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing destination fails validation", func(t *testing.T) {
		handler := NewTransactionHandler(new(MockTransactionService), logger)

		req := newJSONRequest(t, http.MethodPost, "/api/transactions/transfer", map[string]any{"fromAccountNumber": "ACC1", "amount": 40})
		rec := httptest.NewRecorder()
		handler.Transfer(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "toAccountNumber", resp.Error.Field)
	})
}

func TestTransactionHandlerHistory(t *testing.T) {
	mockService := new(MockTransactionService)
	handler := NewTransactionHandler(mockService, logger)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	credit := ledger.NewCredit(ledger.TypeDeposit, 1, "ACC1", 10)
	credit.ID, credit.CreatedAt = 2, at
	debit := ledger.NewDebit(ledger.TypeWithdrawal, 1, "ACC1", 5)
	debit.ID, debit.CreatedAt = 1, at.Add(-time.Hour)
	mockService.On("History", mock.Anything, int64(7), "ACC1").Return([]*ledger.Transaction{credit, debit}, nil).Once()

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/transactions/history/ACC1", nil), "accountNumber", "ACC1")
	rec := httptest.NewRecorder()
	handler.History(rec, asCustomer(req, 7))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"transactions":[
		{"transactionID":2,"fromAccount":null,"toAccount":"ACC1","transactionType":"Deposit","amount":10.00,"transactionDate":"2024-05-01T12:00:00Z"},
		{"transactionID":1,"fromAccount":"ACC1","toAccount":null,"transactionType":"Withdrawal","amount":5.00,"transactionDate":"2024-05-01T11:00:00Z"}
	]}`, rec.Body.String())
}

func TestTransactionHandlerRecent(t *testing.T) {
	t.Run("uses the fixed limit", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(mockService, logger)

		mockService.On("Recent", mock.Anything, int64(7), transaction.RecentLimit).Return([]*ledger.Transaction{}, nil).Once()

		rec := httptest.NewRecorder()
		handler.Recent(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/api/transactions/recent", nil), 7))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"transactions":[]}`, rec.Body.String())
		mockService.AssertExpectations(t)
	})
}
