package postgres

import (
	"banking-api/internal/domain/ledger"
	"banking-api/internal/infrastructure/monitoring"
	"banking-api/internal/pkg/apperrors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const ledgerSelect = `
        SELECT t.id, t.from_account_id, t.to_account_id, fa.account_number, ta.account_number,
               t.transaction_type, t.amount, t.created_at
        FROM transactions t
        LEFT JOIN accounts fa ON fa.id = t.from_account_id
        LEFT JOIN accounts ta ON ta.id = t.to_account_id`

type LedgerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ ledger.Repository = (*LedgerRepository)(nil)

func NewLedgerRepository(db DBPool, logger *slog.Logger) *LedgerRepository {
	if db == nil {
		panic("DBPool cannot be nil for LedgerRepository")
	}
	return &LedgerRepository{db: db, logger: logger.With("component", "LedgerRepository")}
}

func (r *LedgerRepository) RecordInTx(ctx context.Context, tx pgx.Tx, t *ledger.Transaction) error {
	query := `
        INSERT INTO transactions (from_account_id, to_account_id, transaction_type, amount)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	start := time.Now()
	err := tx.QueryRow(ctx, query, t.FromAccountID, t.ToAccountID, string(t.Type), t.Amount).Scan(&t.ID, &t.CreatedAt)
	monitoring.RecordDBQuery("RecordTransaction", err, start)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to record transaction", slog.String("type", string(t.Type)), slog.Any("error", err))
		return translateDBError(err, r.logger)
	}
	return nil
}

func (r *LedgerRepository) FindByAccountID(ctx context.Context, accountID int64) ([]*ledger.Transaction, error) {
	query := ledgerSelect + `
        WHERE t.from_account_id = $1 OR t.to_account_id = $1
        ORDER BY t.created_at DESC, t.id DESC`
	return r.list(ctx, "FindTransactionsByAccount", query, accountID)
}

func (r *LedgerRepository) FindRecentByCustomerID(ctx context.Context, customerID int64, limit int) ([]*ledger.Transaction, error) {
	query := ledgerSelect + `
        WHERE fa.customer_id = $1 OR ta.customer_id = $1
        ORDER BY t.created_at DESC, t.id DESC
        LIMIT $2`
	return r.list(ctx, "FindRecentTransactions", query, customerID, limit)
}

func (r *LedgerRepository) list(ctx context.Context, name, query string, args ...any) (lines []*ledger.Transaction, err error) {
	start := time.Now()
	defer func() { monitoring.RecordDBQuery(name, err, start) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query transactions", slog.String("operation", name), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query transactions: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	lines = make([]*ledger.Transaction, 0)
	for rows.Next() {
		var t ledger.Transaction
		var txType string
		if err = rows.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &t.FromAccount, &t.ToAccount, &txType, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan transaction row: %w", apperrors.ErrDatabase, err)
		}
		t.Type = ledger.Type(txType)
		lines = append(lines, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating transaction rows: %w", apperrors.ErrDatabase, err)
	}
	return lines, nil
}
