package account

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error

	CreateInTx(ctx context.Context, tx pgx.Tx, account *Account) error

	FindActiveByCustomerID(ctx context.Context, customerID int64) ([]*Account, error)

	FindOwnedByNumber(ctx context.Context, customerID int64, number string) (*Account, error)

	LockOwnedByNumberInTx(ctx context.Context, tx pgx.Tx, customerID int64, number string) (*Account, error)

	// LockByNumbersInTx locks the active accounts with the given numbers in
	// ascending id order.
	LockByNumbersInTx(ctx context.Context, tx pgx.Tx, numbers ...string) ([]*Account, error)

	// LockPrimaryInTx locks the oldest active account of the customer.
	LockPrimaryInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*Account, error)

	// AdjustBalanceInTx adds delta to the balance and returns the new balance.
	AdjustBalanceInTx(ctx context.Context, tx pgx.Tx, accountID int64, delta float64) (float64, error)
}
