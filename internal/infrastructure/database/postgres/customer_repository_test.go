package postgres

import (
	"banking-api/internal/domain/customer"
	"banking-api/internal/pkg/apperrors"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerCols = []string{"id", "first_name", "last_name", "email", "password_hash", "phone", "address", "role", "active", "created_at"}

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	return context.Background(), NewCustomerRepository(mockPool, logger), mockPool
}

func TestCustomerRepository_CreateInTx(t *testing.T) {
	phone := "555-0100"
	newCustomer := func() *customer.Customer {
		return &customer.Customer{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			PasswordHash: "hash", Phone: &phone, Role: customer.RoleCustomer, Active: true,
		}
	}

	t.Run("success", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()
		created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		cust := newCustomer()

		mockPool.ExpectBegin()
		mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
			WithArgs("Ada", "Lovelace", "ada@example.com", "hash", &phone, (*string)(nil), customer.RoleCustomer, true).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.CreateInTx(ctx, tx, cust))
		assert.Equal(t, int64(7), cust.ID)
		assert.Equal(t, created, cust.CreatedAt)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("duplicate email", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectBegin()
		mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"})

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		err = repo.CreateInTx(ctx, tx, newCustomer())
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	})

	t.Run("nil customer", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()
		mockPool.ExpectBegin()
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.CreateInTx(ctx, tx, nil), apperrors.ErrInvalidArgument)
	})
}

func TestCustomerRepository_Find(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	row := func() *pgxmock.Rows {
		return pgxmock.NewRows(customerCols).
			AddRow(int64(3), "Ada", "Lovelace", "ada@example.com", "hash", (*string)(nil), (*string)(nil), "Customer", true, created)
	}

	t.Run("by id", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE id = $1")).WithArgs(int64(3)).WillReturnRows(row())

		cust, err := repo.FindByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Ada", cust.FirstName)
		assert.Nil(t, cust.Phone)
		assert.True(t, cust.Active)
	})

	t.Run("by email", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE email = $1")).WithArgs("ada@example.com").WillReturnRows(row())

		cust, err := repo.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(3), cust.ID)
	})

	t.Run("not found", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE id = $1")).WithArgs(int64(9)).
			WillReturnRows(pgxmock.NewRows(customerCols))

		_, err := repo.FindByID(ctx, 9)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("query failure", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE id = $1")).WithArgs(int64(9)).
			WillReturnError(errors.New("conn reset"))

		_, err := repo.FindByID(ctx, 9)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestCustomerRepository_UpdateProfile(t *testing.T) {
	address := "1 Analytical St"
	cust := &customer.Customer{ID: 3, FirstName: "Ada", LastName: "King", Address: &address}

	t.Run("success", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()
		mockPool.ExpectExec(regexp.QuoteMeta("UPDATE customers")).
			WithArgs("Ada", "King", (*string)(nil), &address, int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateProfile(ctx, cust))
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("missing row", func(t *testing.T) {
		ctx, repo, mockPool := setupCustomerRepo(t)
		defer mockPool.Close()
		mockPool.ExpectExec(regexp.QuoteMeta("UPDATE customers")).
			WithArgs("Ada", "King", (*string)(nil), &address, int64(3)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.UpdateProfile(ctx, cust), apperrors.ErrNotFound)
	})
}
