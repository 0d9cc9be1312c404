package postgres

import (
	"banking-api/internal/domain/loan"
	"banking-api/internal/infrastructure/monitoring"
	"banking-api/internal/pkg/apperrors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const loanSelect = `
        SELECT l.id, l.customer_id, l.principal, l.interest_rate, l.duration_months, l.start_date, l.created_at,
               COALESCE((SELECT SUM(r.amount) FROM loan_repayments r WHERE r.loan_id = l.id), 0)
        FROM loans l`

type LoanRepository struct {
	txManager
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("DBPool cannot be nil for LoanRepository")
	}
	return &LoanRepository{txManager{db: db, logger: logger.With("component", "LoanRepository")}}
}

func scanLoanWithTotal(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	if err := row.Scan(&l.ID, &l.CustomerID, &l.Principal, &l.InterestRate, &l.DurationMonths, &l.StartDate, &l.CreatedAt, &l.TotalPaid); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) CreateInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	query := `
        INSERT INTO loans (customer_id, principal, interest_rate, duration_months, start_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	start := time.Now()
	err := tx.QueryRow(ctx, query, l.CustomerID, l.Principal, l.InterestRate, l.DurationMonths, l.StartDate).
		Scan(&l.ID, &l.CreatedAt)
	monitoring.RecordDBQuery("CreateLoan", err, start)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", slog.Any("error", err))
		return translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Loan inserted", slog.Int64("loanID", l.ID))
	return nil
}

func (r *LoanRepository) FindByCustomerID(ctx context.Context, customerID int64) (loans []*loan.Loan, err error) {
	query := loanSelect + `
        WHERE l.customer_id = $1
        ORDER BY l.created_at DESC, l.id DESC`

	start := time.Now()
	defer func() { monitoring.RecordDBQuery("FindLoansByCustomer", err, start) }()

	loans = make([]*loan.Loan, 0)
	err = r.scanLoans(ctx, query, []any{customerID}, func(l *loan.Loan) error {
		loans = append(loans, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *LoanRepository) FindOwnedByID(ctx context.Context, customerID, loanID int64) (*loan.Loan, error) {
	query := loanSelect + `
        WHERE l.id = $1 AND l.customer_id = $2`

	start := time.Now()
	l, err := scanLoanWithTotal(r.db.QueryRow(ctx, query, loanID, customerID))
	monitoring.RecordDBQuery("FindOwnedLoan", err, start)
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return l, nil
}

func (r *LoanRepository) FindRepayments(ctx context.Context, loanID int64) (repayments []loan.Repayment, err error) {
	query := `
        SELECT id, loan_id, amount, payment_date
        FROM loan_repayments
        WHERE loan_id = $1
        ORDER BY payment_date DESC, id DESC`

	start := time.Now()
	defer func() { monitoring.RecordDBQuery("FindRepayments", err, start) }()

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query repayments: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	repayments = make([]loan.Repayment, 0)
	for rows.Next() {
		var rp loan.Repayment
		if err = rows.Scan(&rp.ID, &rp.LoanID, &rp.Amount, &rp.PaymentDate); err != nil {
			return nil, fmt.Errorf("%w: failed to scan repayment row: %w", apperrors.ErrDatabase, err)
		}
		repayments = append(repayments, rp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating repayment rows: %w", apperrors.ErrDatabase, err)
	}
	return repayments, nil
}

func (r *LoanRepository) LockOwnedInTx(ctx context.Context, tx pgx.Tx, customerID, loanID int64) (*loan.Loan, error) {
	lockQuery := `
        SELECT id, customer_id, principal, interest_rate, duration_months, start_date, created_at
        FROM loans
        WHERE id = $1 AND customer_id = $2
        FOR UPDATE`
	sumQuery := `SELECT COALESCE(SUM(amount), 0) FROM loan_repayments WHERE loan_id = $1`

	var l loan.Loan
	start := time.Now()
	err := tx.QueryRow(ctx, lockQuery, loanID, customerID).
		Scan(&l.ID, &l.CustomerID, &l.Principal, &l.InterestRate, &l.DurationMonths, &l.StartDate, &l.CreatedAt)
	monitoring.RecordDBQuery("LockLoan", err, start)
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}

	start = time.Now()
	err = tx.QueryRow(ctx, sumQuery, loanID).Scan(&l.TotalPaid)
	monitoring.RecordDBQuery("SumRepayments", err, start)
	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return &l, nil
}

func (r *LoanRepository) AddRepaymentInTx(ctx context.Context, tx pgx.Tx, rp *loan.Repayment) error {
	query := `
        INSERT INTO loan_repayments (loan_id, amount, payment_date)
        VALUES ($1, $2, $3)
        RETURNING id`

	start := time.Now()
	err := tx.QueryRow(ctx, query, rp.LoanID, rp.Amount, rp.PaymentDate).Scan(&rp.ID)
	monitoring.RecordDBQuery("AddRepayment", err, start)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert repayment", slog.Int64("loanID", rp.LoanID), slog.Any("error", err))
		return translateDBError(err, r.logger)
	}
	return nil
}

func (r *LoanRepository) FindAllWithTotals(ctx context.Context, fn func(*loan.Loan) error) (err error) {
	query := loanSelect + `
        ORDER BY l.id`

	start := time.Now()
	defer func() { monitoring.RecordDBQuery("FindAllLoans", err, start) }()
	return r.scanLoans(ctx, query, nil, fn)
}

func (r *LoanRepository) scanLoans(ctx context.Context, query string, args []any, fn func(*loan.Loan) error) error {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", slog.Any("error", err))
		return fmt.Errorf("%w: failed to query loans: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanLoanWithTotal(rows)
		if err != nil {
			return fmt.Errorf("%w: failed to scan loan row: %w", apperrors.ErrDatabase, err)
		}
		if err := fn(l); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: error iterating loan rows: %w", apperrors.ErrDatabase, err)
	}
	return nil
}
