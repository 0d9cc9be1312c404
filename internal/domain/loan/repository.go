package loan

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error

	CreateInTx(ctx context.Context, tx pgx.Tx, loan *Loan) error

	// FindByCustomerID returns the customer's loans, newest first, with
	// TotalPaid populated.
	FindByCustomerID(ctx context.Context, customerID int64) ([]*Loan, error)

	FindOwnedByID(ctx context.Context, customerID, loanID int64) (*Loan, error)

	FindRepayments(ctx context.Context, loanID int64) ([]Repayment, error)

	// LockOwnedInTx locks the loan row so concurrent repayments of the same
	// loan serialize, then loads its TotalPaid.
	LockOwnedInTx(ctx context.Context, tx pgx.Tx, customerID, loanID int64) (*Loan, error)

	AddRepaymentInTx(ctx context.Context, tx pgx.Tx, repayment *Repayment) error

	// FindAllWithTotals streams every loan with TotalPaid populated.
	FindAllWithTotals(ctx context.Context, fn func(*Loan) error) error
}

// SimulationCache stores simulation results keyed by loan terms.
type SimulationCache interface {
	Get(ctx context.Context, key string) (*Simulation, bool)
	Set(ctx context.Context, key string, sim *Simulation)
}
