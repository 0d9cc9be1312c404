package loan

import (
	"banking-api/internal/domain/account"
	"banking-api/internal/domain/ledger"
	"banking-api/internal/event"
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

type TxMock struct {
	pgx.Tx
}

var tx pgx.Tx = &TxMock{}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).(pgx.Tx)
	return t, args.Error(1)
}

func (m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRepository) CreateInTx(ctx context.Context, tx pgx.Tx, l *Loan) error {
	return m.Called(ctx, tx, l).Error(0)
}

func (m *MockRepository) FindByCustomerID(ctx context.Context, customerID int64) ([]*Loan, error) {
	args := m.Called(ctx, customerID)
	loans, _ := args.Get(0).([]*Loan)
	return loans, args.Error(1)
}

func (m *MockRepository) FindOwnedByID(ctx context.Context, customerID, loanID int64) (*Loan, error) {
	args := m.Called(ctx, customerID, loanID)
	l, _ := args.Get(0).(*Loan)
	return l, args.Error(1)
}

func (m *MockRepository) FindRepayments(ctx context.Context, loanID int64) ([]Repayment, error) {
	args := m.Called(ctx, loanID)
	r, _ := args.Get(0).([]Repayment)
	return r, args.Error(1)
}

func (m *MockRepository) LockOwnedInTx(ctx context.Context, tx pgx.Tx, customerID, loanID int64) (*Loan, error) {
	args := m.Called(ctx, tx, customerID, loanID)
	l, _ := args.Get(0).(*Loan)
	return l, args.Error(1)
}

func (m *MockRepository) AddRepaymentInTx(ctx context.Context, tx pgx.Tx, r *Repayment) error {
	return m.Called(ctx, tx, r).Error(0)
}

func (m *MockRepository) FindAllWithTotals(ctx context.Context, fn func(*Loan) error) error {
	args := m.Called(ctx, fn)
	if loans, ok := args.Get(0).([]*Loan); ok {
		for _, l := range loans {
			if err := fn(l); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).(pgx.Tx)
	return t, args.Error(1)
}

func (m *MockAccountRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockAccountRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockAccountRepository) CreateInTx(ctx context.Context, tx pgx.Tx, acc *account.Account) error {
	return m.Called(ctx, tx, acc).Error(0)
}

func (m *MockAccountRepository) FindActiveByCustomerID(ctx context.Context, customerID int64) ([]*account.Account, error) {
	args := m.Called(ctx, customerID)
	accounts, _ := args.Get(0).([]*account.Account)
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) FindOwnedByNumber(ctx context.Context, customerID int64, number string) (*account.Account, error) {
	args := m.Called(ctx, customerID, number)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountRepository) LockOwnedByNumberInTx(ctx context.Context, tx pgx.Tx, customerID int64, number string) (*account.Account, error) {
	args := m.Called(ctx, tx, customerID, number)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountRepository) LockByNumbersInTx(ctx context.Context, tx pgx.Tx, numbers ...string) ([]*account.Account, error) {
	args := m.Called(ctx, tx, numbers)
	accounts, _ := args.Get(0).([]*account.Account)
	return accounts, args.Error(1)
}

func (m *MockAccountRepository) LockPrimaryInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*account.Account, error) {
	args := m.Called(ctx, tx, customerID)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountRepository) AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountID int64, delta float64) (float64, error) {
	args := m.Called(ctx, tx, accountID, delta)
	return args.Get(0).(float64), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) RecordInTx(ctx context.Context, tx pgx.Tx, t *ledger.Transaction) error {
	return m.Called(ctx, tx, t).Error(0)
}

func (m *MockLedgerRepository) FindByAccountID(ctx context.Context, accountID int64) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, accountID)
	txs, _ := args.Get(0).([]*ledger.Transaction)
	return txs, args.Error(1)
}

func (m *MockLedgerRepository) FindRecentByCustomerID(ctx context.Context, customerID int64, limit int) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, customerID, limit)
	txs, _ := args.Get(0).([]*ledger.Transaction)
	return txs, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, e event.CustomerCreatedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventPublisher) PublishTransactionCompleted(ctx context.Context, e event.TransactionCompletedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventPublisher) PublishLoanDisbursed(ctx context.Context, e event.LoanDisbursedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventPublisher) PublishLoanRepaid(ctx context.Context, e event.LoanRepaidEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEventPublisher) PublishLoanOverdue(ctx context.Context, e event.LoanOverdueEvent) error {
	return m.Called(ctx, e).Error(0)
}

type memoryCache struct {
	items map[string]*Simulation
	gets  int
}

func (c *memoryCache) Get(_ context.Context, key string) (*Simulation, bool) {
	c.gets++
	sim, ok := c.items[key]
	return sim, ok
}

func (c *memoryCache) Set(_ context.Context, key string, sim *Simulation) {
	c.items[key] = sim
}
