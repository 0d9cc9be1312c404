package handler

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/domain/account"
	"banking-api/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountHandlerListAccounts(t *testing.T) {
	opened := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("lists the customer's accounts", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(mockService, logger)

		accounts := []*account.Account{
			{ID: 1, CustomerID: 7, Number: "ACC1", Type: account.TypeSavings, Balance: 1500.5, OpenedAt: opened, Active: true},
			{ID: 2, CustomerID: 7, Number: "ACC2", Type: account.TypeCurrent, Balance: 0, OpenedAt: opened, Active: true},
		}
		mockService.On("ListAccounts", mock.Anything, int64(7)).Return(accounts, nil).Once()

		rec := httptest.NewRecorder()
		handler.ListAccounts(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/api/accounts", nil), 7))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"success": true,
			"accounts": [
				{"accountID":1,"accountNumber":"ACC1","accountType":"Savings","balance":1500.50,"dateOpened":"2024-03-01T09:00:00Z","isActive":true},
				{"accountID":2,"accountNumber":"ACC2","accountType":"Current","balance":0.00,"dateOpened":"2024-03-01T09:00:00Z","isActive":true}
			]
		}`, rec.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("requires an authenticated customer", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(mockService, logger)

		rec := httptest.NewRecorder()
		handler.ListAccounts(rec, httptest.NewRequest(http.MethodGet, "/api/accounts", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		mockService.AssertNotCalled(t, "ListAccounts", mock.Anything, mock.Anything)
	})

	t.Run("database failure is an internal error", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(mockService, logger)

		mockService.On("ListAccounts", mock.Anything, int64(7)).
			Return(nil, apperrors.WrapDatabaseError(errors.New("timeout"), "could not list accounts")).Once()

		rec := httptest.NewRecorder()
		handler.ListAccounts(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/api/accounts", nil), 7))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAccountHandlerOpenAccount(t *testing.T) {
	t.Run("opens a current account with an initial deposit", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(mockService, logger)

		opened := &account.Account{ID: 3, CustomerID: 7, Number: "ACC3", Type: account.TypeCurrent, Balance: 250.75, Active: true}
		mockService.On("OpenAccount", mock.Anything, int64(7), "Current", 250.75).Return(opened, nil).Once()

		req := newJSONRequest(t, http.MethodPost, "/api/accounts", map[string]any{"accountType": "Current", "initialDeposit": 250.75})
		rec := httptest.NewRecorder()
		handler.OpenAccount(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.OpenAccountResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "ACC3", resp.AccountNumber)
		assert.Equal(t, "Current", resp.AccountType)
		assert.Equal(t, 250.75, resp.Balance.Float64())
		mockService.AssertExpectations(t)
	})

	t.Run("rejects an unknown account type", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(mockService, logger)

		req := newJSONRequest(t, http.MethodPost, "/api/accounts", map[string]any{"accountType": "Crypto"})
		rec := httptest.NewRecorder()
		handler.OpenAccount(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "accountType", resp.Error.Field)
		mockService.AssertNotCalled(t, "OpenAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a deposit with three decimals", func(t *testing.T) {
		handler := NewAccountHandler(new(MockAccountService), logger)

		req := newJSONRequest(t, http.MethodPost, "/api/accounts", map[string]any{"accountType": "Savings", "initialDeposit": 10.005})
		rec := httptest.NewRecorder()
		handler.OpenAccount(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAccountHandlerGetBalance(t *testing.T) {
	t.Run("returns balance and type", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(mockService, logger)

		mockService.On("GetBalance", mock.Anything, int64(7), "ACC1").
			Return(&account.Account{Number: "ACC1", Type: account.TypeSavings, Balance: 99.9}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/accounts/ACC1/balance", nil), "accountNumber", "ACC1")
		rec := httptest.NewRecorder()
		handler.GetBalance(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"accountNumber":"ACC1","balance":99.90,"accountType":"Savings"}`, rec.Body.String())
	})

	t.Run("someone else's account is not found", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(mockService, logger)

		mockService.On("GetBalance", mock.Anything, int64(7), "ACC9").
			Return(nil, fmt.Errorf("%w: account ACC9", apperrors.ErrNotFound)).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/accounts/ACC9/balance", nil), "accountNumber", "ACC9")
		rec := httptest.NewRecorder()
		handler.GetBalance(rec, asCustomer(req, 7))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
