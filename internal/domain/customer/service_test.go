package customer

import (
	"banking-api/internal/domain/account"
	"banking-api/internal/event"
	"banking-api/internal/pkg/apperrors"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestService() (*customerService, *MockCustomerRepository, *MockAccountRepository, *MockEventPublisher) {
	repo, accounts, pub := new(MockCustomerRepository), new(MockAccountRepository), new(MockEventPublisher)
	svc := NewCustomerService(repo, accounts, pub, logger).(*customerService)
	svc.hashCost = bcrypt.MinCost
	svc.numberFn = func() string { return "ACC17000000000000001" }
	return svc, repo, accounts, pub
}

func validRegistration() Registration {
	return Registration{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret1"}
}

func TestNewCustomerService_Panics(t *testing.T) {
	assert.Panics(t, func() { NewCustomerService(nil, new(MockAccountRepository), nil, logger) })
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer with default savings account", func(t *testing.T) {
		svc, repo, accounts, pub := newTestService()
		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("CreateInTx", ctx, tx, mock.MatchedBy(func(c *Customer) bool {
			return c.Email == "ada@example.com" && c.Role == RoleCustomer && c.Active &&
				bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte("secret1")) == nil
		})).Run(func(args mock.Arguments) {
			args.Get(2).(*Customer).ID = 12
		}).Return(nil)
		accounts.On("CreateInTx", ctx, tx, mock.MatchedBy(func(a *account.Account) bool {
			return a.CustomerID == 12 && a.Type == account.TypeSavings && a.Balance == 0
		})).Return(nil)
		repo.On("CommitTx", ctx, tx).Return(nil)
		pub.On("PublishCustomerCreated", ctx, mock.MatchedBy(func(e event.CustomerCreatedEvent) bool {
			return e.CustomerID == 12 && e.AccountNumber == "ACC17000000000000001"
		})).Return(nil)

		cust, acc, err := svc.SignUp(ctx, validRegistration())
		require.NoError(t, err)
		assert.Equal(t, int64(12), cust.ID)
		assert.Equal(t, "ACC17000000000000001", acc.Number)
		repo.AssertExpectations(t)
		accounts.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, repo, _, pub := newTestService()
		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("CreateInTx", ctx, tx, mock.Anything).Return(apperrors.ErrAlreadyExists)
		repo.On("RollbackTx", ctx, tx).Return(nil)

		_, _, err := svc.SignUp(ctx, validRegistration())
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		repo.AssertExpectations(t)
		pub.AssertNotCalled(t, "PublishCustomerCreated", mock.Anything, mock.Anything)
	})

	t.Run("account failure rolls back the customer", func(t *testing.T) {
		svc, repo, accounts, _ := newTestService()
		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("CreateInTx", ctx, tx, mock.Anything).Return(nil)
		accounts.On("CreateInTx", ctx, tx, mock.Anything).Return(errors.New("insert failed"))
		repo.On("RollbackTx", ctx, tx).Return(nil)

		_, _, err := svc.SignUp(ctx, validRegistration())
		assert.Error(t, err)
		repo.AssertNotCalled(t, "CommitTx", mock.Anything, mock.Anything)
	})

	t.Run("invalid input never reaches the repository", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		reg := validRegistration()
		reg.Password = "123"

		_, _, err := svc.SignUp(ctx, reg)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		repo.AssertNotCalled(t, "BeginTx", mock.Anything)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("FindByEmail", ctx, "ada@example.com").Return(&Customer{ID: 3, PasswordHash: string(hash), Active: true}, nil)

		cust, err := svc.Authenticate(ctx, " ADA@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), cust.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("FindByEmail", ctx, "ada@example.com").Return(&Customer{ID: 3, PasswordHash: string(hash), Active: true}, nil)

		_, err := svc.Authenticate(ctx, "ada@example.com", "nope")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("FindByEmail", ctx, "who@example.com").Return(nil, apperrors.ErrNotFound)

		_, err := svc.Authenticate(ctx, "who@example.com", "secret1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("inactive customer is forbidden", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("FindByEmail", ctx, "ada@example.com").Return(&Customer{ID: 3, PasswordHash: string(hash), Active: false}, nil)

		_, err := svc.Authenticate(ctx, "ada@example.com", "secret1")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("repository failure", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("FindByEmail", ctx, "ada@example.com").Return(nil, apperrors.ErrDatabase)

		_, err := svc.Authenticate(ctx, "ada@example.com", "secret1")
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("get missing customer", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("FindByID", ctx, int64(8)).Return(nil, apperrors.ErrNotFound)

		_, err := svc.GetProfile(ctx, 8)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("update replaces editable fields", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("FindByID", ctx, int64(8)).Return(&Customer{ID: 8, FirstName: "Old", LastName: "Name", Email: "x@y.io"}, nil)
		repo.On("UpdateProfile", ctx, mock.MatchedBy(func(c *Customer) bool {
			return c.FirstName == "New" && c.Email == "x@y.io" && *c.Phone == "123"
		})).Return(nil)

		cust, err := svc.UpdateProfile(ctx, 8, Profile{FirstName: "New", LastName: "Name", Phone: strPtr("123")})
		require.NoError(t, err)
		assert.Equal(t, "New", cust.FirstName)
		repo.AssertExpectations(t)
	})

	t.Run("update validates first", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		_, err := svc.UpdateProfile(ctx, 8, Profile{})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}
