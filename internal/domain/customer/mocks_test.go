package customer

import (
	"banking-api/internal/domain/account"
	"banking-api/internal/event"
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type TxMock struct{ pgx.Tx }

var tx pgx.Tx = &TxMock{}

type MockCustomerRepository struct {
	mock.Mock
}

var _ CustomerRepository = (*MockCustomerRepository)(nil)

func (m *MockCustomerRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).(pgx.Tx)
	return t, args.Error(1)
}

func (m *MockCustomerRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockCustomerRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockCustomerRepository) CreateInTx(ctx context.Context, tx pgx.Tx, c *Customer) error {
	return m.Called(ctx, tx, c).Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(*Customer)
	return c, args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	args := m.Called(ctx, email)
	c, _ := args.Get(0).(*Customer)
	return c, args.Error(1)
}

func (m *MockCustomerRepository) UpdateProfile(ctx context.Context, c *Customer) error {
	return m.Called(ctx, c).Error(0)
}

// MockAccountRepository only backs the calls signup makes.
type MockAccountRepository struct {
	account.Repository
	mock.Mock
}

func (m *MockAccountRepository) CreateInTx(ctx context.Context, tx pgx.Tx, acc *account.Account) error {
	return m.Called(ctx, tx, acc).Error(0)
}

type MockEventPublisher struct {
	event.EventPublisher
	mock.Mock
}

func (m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, e event.CustomerCreatedEvent) error {
	return m.Called(ctx, e).Error(0)
}
