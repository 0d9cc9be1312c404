package postgres

import (
	"banking-api/internal/domain/account"
	"banking-api/internal/infrastructure/monitoring"
	"banking-api/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, customer_id, account_number, account_type, balance, opened_at, active`

type AccountRepository struct {
	txManager
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(db DBPool, logger *slog.Logger) *AccountRepository {
	if db == nil {
		panic("DBPool cannot be nil for AccountRepository")
	}
	return &AccountRepository{txManager{db: db, logger: logger.With("component", "AccountRepository")}}
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var a account.Account
	var accountType string
	if err := row.Scan(&a.ID, &a.CustomerID, &a.Number, &accountType, &a.Balance, &a.OpenedAt, &a.Active); err != nil {
		return nil, err
	}
	a.Type = account.Type(accountType)
	return &a, nil
}

func (r *AccountRepository) CreateInTx(ctx context.Context, tx pgx.Tx, acc *account.Account) error {
	query := `
        INSERT INTO accounts (customer_id, account_number, account_type, balance, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, opened_at`

	start := time.Now()
	err := tx.QueryRow(ctx, query, acc.CustomerID, acc.Number, string(acc.Type), acc.Balance, acc.Active).
		Scan(&acc.ID, &acc.OpenedAt)
	monitoring.RecordDBQuery("CreateAccount", err, start)
	if err != nil {
		return translateDBError(err, r.logger)
	}
	return nil
}

func (r *AccountRepository) FindActiveByCustomerID(ctx context.Context, customerID int64) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + `
        FROM accounts
        WHERE customer_id = $1 AND active = TRUE
        ORDER BY opened_at, id`

	start := time.Now()
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		monitoring.RecordDBQuery("FindActiveAccounts", err, start)
		r.logger.ErrorContext(ctx, "Failed to query accounts", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query accounts: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	accounts := make([]*account.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			monitoring.RecordDBQuery("FindActiveAccounts", err, start)
			return nil, fmt.Errorf("%w: failed to scan account row: %w", apperrors.ErrDatabase, err)
		}
		accounts = append(accounts, a)
	}
	err = rows.Err()
	monitoring.RecordDBQuery("FindActiveAccounts", err, start)
	if err != nil {
		return nil, fmt.Errorf("%w: error iterating account rows: %w", apperrors.ErrDatabase, err)
	}
	return accounts, nil
}

func (r *AccountRepository) FindOwnedByNumber(ctx context.Context, customerID int64, number string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + `
        FROM accounts
        WHERE account_number = $1 AND customer_id = $2 AND active = TRUE`

	start := time.Now()
	a, err := scanAccount(r.db.QueryRow(ctx, query, number, customerID))
	monitoring.RecordDBQuery("FindOwnedAccount", err, start)
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return a, nil
}

func (r *AccountRepository) LockOwnedByNumberInTx(ctx context.Context, tx pgx.Tx, customerID int64, number string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + `
        FROM accounts
        WHERE account_number = $1 AND customer_id = $2 AND active = TRUE
        FOR UPDATE`

	start := time.Now()
	a, err := scanAccount(tx.QueryRow(ctx, query, number, customerID))
	monitoring.RecordDBQuery("LockOwnedAccount", err, start)
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return a, nil
}

func (r *AccountRepository) LockByNumbersInTx(ctx context.Context, tx pgx.Tx, numbers ...string) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + `
        FROM accounts
        WHERE account_number = ANY($1) AND active = TRUE
        ORDER BY id
        FOR UPDATE`

	start := time.Now()
	rows, err := tx.Query(ctx, query, numbers)
	if err != nil {
		monitoring.RecordDBQuery("LockAccounts", err, start)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	locked := make([]*account.Account, 0, len(numbers))
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			monitoring.RecordDBQuery("LockAccounts", err, start)
			return nil, fmt.Errorf("%w: failed to scan account row: %w", apperrors.ErrDatabase, err)
		}
		locked = append(locked, a)
	}
	err = rows.Err()
	monitoring.RecordDBQuery("LockAccounts", err, start)
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return locked, nil
}

func (r *AccountRepository) LockPrimaryInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*account.Account, error) {
	query := `SELECT ` + accountColumns + `
        FROM accounts
        WHERE customer_id = $1 AND active = TRUE
        ORDER BY opened_at, id
        LIMIT 1
        FOR UPDATE`

	start := time.Now()
	a, err := scanAccount(tx.QueryRow(ctx, query, customerID))
	monitoring.RecordDBQuery("LockPrimaryAccount", err, start)
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return a, nil
}

func (r *AccountRepository) AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountID int64, delta float64) (float64, error) {
	query := `UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING balance`

	var balance float64
	start := time.Now()
	err := tx.QueryRow(ctx, query, delta, accountID).Scan(&balance)
	monitoring.RecordDBQuery("AdjustBalance", err, start)
	if err != nil {
		translated := translateDBError(err, r.logger)
		if !errors.Is(translated, apperrors.ErrInsufficientFunds) {
			r.logger.ErrorContext(ctx, "Failed to adjust balance", slog.Int64("accountID", accountID), slog.Any("error", err))
		}
		return 0, translated
	}
	return balance, nil
}
