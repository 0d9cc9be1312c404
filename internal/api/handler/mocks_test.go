package handler

import (
	"banking-api/internal/api/middleware"
	"banking-api/internal/domain/account"
	"banking-api/internal/domain/customer"
	"banking-api/internal/domain/dashboard"
	"banking-api/internal/domain/ledger"
	"banking-api/internal/domain/loan"
	"banking-api/internal/domain/transaction"
	"banking-api/internal/pkg/token"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) SignUp(ctx context.Context, reg customer.Registration) (*customer.Customer, *account.Account, error) {
	args := m.Called(ctx, reg)
	c, _ := args.Get(0).(*customer.Customer)
	a, _ := args.Get(1).(*account.Account)
	return c, a, args.Error(2)
}

func (m *MockCustomerService) Authenticate(ctx context.Context, email, password string) (*customer.Customer, error) {
	args := m.Called(ctx, email, password)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetProfile(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) UpdateProfile(ctx context.Context, customerID int64, profile customer.Profile) (*customer.Customer, error) {
	args := m.Called(ctx, customerID, profile)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Get(ctx context.Context, customerID int64) (*dashboard.Dashboard, error) {
	args := m.Called(ctx, customerID)
	if d, ok := args.Get(0).(*dashboard.Dashboard); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListAccounts(ctx context.Context, customerID int64) ([]*account.Account, error) {
	args := m.Called(ctx, customerID)
	if a, ok := args.Get(0).([]*account.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountService) GetBalance(ctx context.Context, customerID int64, number string) (*account.Account, error) {
	args := m.Called(ctx, customerID, number)
	if a, ok := args.Get(0).(*account.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountService) OpenAccount(ctx context.Context, customerID int64, accountType string, initialDeposit float64) (*account.Account, error) {
	args := m.Called(ctx, customerID, accountType, initialDeposit)
	if a, ok := args.Get(0).(*account.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) receipt(args mock.Arguments) (*transaction.Receipt, error) {
	if r, ok := args.Get(0).(*transaction.Receipt); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionService) Deposit(ctx context.Context, customerID int64, accountNumber string, amount float64) (*transaction.Receipt, error) {
	return m.receipt(m.Called(ctx, customerID, accountNumber, amount))
}

func (m *MockTransactionService) Withdraw(ctx context.Context, customerID int64, accountNumber string, amount float64) (*transaction.Receipt, error) {
	return m.receipt(m.Called(ctx, customerID, accountNumber, amount))
}

func (m *MockTransactionService) Transfer(ctx context.Context, customerID int64, fromNumber, toNumber string, amount float64) (*transaction.Receipt, error) {
	return m.receipt(m.Called(ctx, customerID, fromNumber, toNumber, amount))
}

func (m *MockTransactionService) History(ctx context.Context, customerID int64, accountNumber string) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, customerID, accountNumber)
	if lines, ok := args.Get(0).([]*ledger.Transaction); ok {
		return lines, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionService) Recent(ctx context.Context, customerID int64, limit int) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, customerID, limit)
	if lines, ok := args.Get(0).([]*ledger.Transaction); ok {
		return lines, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) Apply(ctx context.Context, customerID int64, principal, annualRatePercent float64, durationMonths int) (*loan.Disbursement, error) {
	args := m.Called(ctx, customerID, principal, annualRatePercent, durationMonths)
	if d, ok := args.Get(0).(*loan.Disbursement); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, customerID int64) ([]*loan.Details, error) {
	args := m.Called(ctx, customerID)
	if d, ok := args.Get(0).([]*loan.Details); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, customerID, loanID int64, includeSchedule bool) (*loan.Details, error) {
	args := m.Called(ctx, customerID, loanID, includeSchedule)
	if d, ok := args.Get(0).(*loan.Details); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) Repay(ctx context.Context, customerID, loanID int64, amount float64) (*loan.RepaymentResult, error) {
	args := m.Called(ctx, customerID, loanID, amount)
	if r, ok := args.Get(0).(*loan.RepaymentResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) Simulate(ctx context.Context, principal, annualRatePercent float64, durationMonths int) (*loan.Simulation, error) {
	args := m.Called(ctx, principal, annualRatePercent, durationMonths)
	if s, ok := args.Get(0).(*loan.Simulation); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(customerID int64, email string) (string, time.Time, error) {
	args := m.Called(customerID, email)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func newJSONRequest(t testing.TB, method, target string, body any) *http.Request {
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	return httptest.NewRequest(method, target, bytes.NewReader(payload))
}

func asCustomer(req *http.Request, customerID int64) *http.Request {
	return req.WithContext(middleware.WithClaims(req.Context(), &token.Claims{CustomerID: customerID, Email: "jane@example.com"}))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
