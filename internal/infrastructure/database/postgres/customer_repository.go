package postgres

import (
	"banking-api/internal/domain/customer"
	"banking-api/internal/infrastructure/monitoring"
	"banking-api/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, first_name, last_name, email, password_hash, phone, address, role, active, created_at`

type CustomerRepository struct {
	txManager
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	return &CustomerRepository{txManager{db: db, logger: logger.With("component", "CustomerRepository")}}
}

func (r *CustomerRepository) CreateInTx(ctx context.Context, tx pgx.Tx, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	query := `
        INSERT INTO customers (first_name, last_name, email, password_hash, phone, address, role, active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`

	start := time.Now()
	err := tx.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.Email,
		cust.PasswordHash,
		cust.Phone,
		cust.Address,
		cust.Role,
		cust.Active,
	).Scan(&cust.ID, &cust.CreatedAt)
	monitoring.RecordDBQuery("CreateCustomer", err, start)

	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrAlreadyExists) {
			return translated
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}
	r.logger.DebugContext(ctx, "Customer inserted", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.findOne(ctx, "FindCustomerByID", query, customerID)
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return r.findOne(ctx, "FindCustomerByEmail", query, email)
}

func (r *CustomerRepository) findOne(ctx context.Context, name, query string, arg any) (*customer.Customer, error) {
	var cust customer.Customer
	start := time.Now()
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&cust.ID,
		&cust.FirstName,
		&cust.LastName,
		&cust.Email,
		&cust.PasswordHash,
		&cust.Phone,
		&cust.Address,
		&cust.Role,
		&cust.Active,
		&cust.CreatedAt,
	)
	monitoring.RecordDBQuery(name, err, start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer", slog.String("operation", name), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer: %w", apperrors.ErrDatabase, err)
	}
	return &cust, nil
}

func (r *CustomerRepository) UpdateProfile(ctx context.Context, cust *customer.Customer) error {
	query := `
        UPDATE customers
        SET first_name = $1,
            last_name = $2,
            phone = $3,
            address = $4
        WHERE id = $5`

	start := time.Now()
	cmdTag, err := r.db.Exec(ctx, query, cust.FirstName, cust.LastName, cust.Phone, cust.Address, cust.ID)
	monitoring.RecordDBQuery("UpdateCustomerProfile", err, start)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, customer likely not found", slog.Int64("customerID", cust.ID))
		return apperrors.ErrNotFound
	}
	return nil
}
