package account

import (
	"banking-api/internal/domain/ledger"
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type fakeTx struct{ pgx.Tx }

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRepository) CreateInTx(ctx context.Context, tx pgx.Tx, acc *Account) error {
	return m.Called(ctx, tx, acc).Error(0)
}

func (m *MockRepository) FindActiveByCustomerID(ctx context.Context, customerID int64) ([]*Account, error) {
	args := m.Called(ctx, customerID)
	accounts, _ := args.Get(0).([]*Account)
	return accounts, args.Error(1)
}

func (m *MockRepository) FindOwnedByNumber(ctx context.Context, customerID int64, number string) (*Account, error) {
	args := m.Called(ctx, customerID, number)
	acc, _ := args.Get(0).(*Account)
	return acc, args.Error(1)
}

func (m *MockRepository) LockOwnedByNumberInTx(ctx context.Context, tx pgx.Tx, customerID int64, number string) (*Account, error) {
	args := m.Called(ctx, tx, customerID, number)
	acc, _ := args.Get(0).(*Account)
	return acc, args.Error(1)
}

func (m *MockRepository) LockByNumbersInTx(ctx context.Context, tx pgx.Tx, numbers ...string) ([]*Account, error) {
	args := m.Called(ctx, tx, numbers)
	accounts, _ := args.Get(0).([]*Account)
	return accounts, args.Error(1)
}

func (m *MockRepository) LockPrimaryInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*Account, error) {
	args := m.Called(ctx, tx, customerID)
	acc, _ := args.Get(0).(*Account)
	return acc, args.Error(1)
}

func (m *MockRepository) AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountID int64, delta float64) (float64, error) {
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
