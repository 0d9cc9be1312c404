// Package ledger holds the append-only record of money movements between
// accounts.
package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type Type string

const (
	TypeDeposit          Type = "Deposit"
	TypeWithdrawal       Type = "Withdrawal"
	TypeTransfer         Type = "Transfer"
	TypeLoanDisbursement Type = "LoanDisbursement"
	TypeLoanRepayment    Type = "LoanRepayment"
)

// Transaction is one ledger line. A deposit has no source account, a
// withdrawal has no destination account.
type Transaction struct {
	ID            int64
	FromAccountID *int64
	ToAccountID   *int64
	FromAccount   *string
	ToAccount     *string
	Type          Type
	Amount        float64
	CreatedAt     time.Time
}

func NewCredit(t Type, accountID int64, accountNumber string, amount float64) *Transaction {
	return &Transaction{
		ToAccountID: &accountID,
		ToAccount:   &accountNumber,
		Type:        t,
		Amount:      amount,
	}
}

func NewDebit(t Type, accountID int64, accountNumber string, amount float64) *Transaction {
	return &Transaction{
		FromAccountID: &accountID,
		FromAccount:   &accountNumber,
		Type:          t,
		Amount:        amount,
	}
}

func NewTransfer(fromID int64, fromNumber string, toID int64, toNumber string, amount float64) *Transaction {
	return &Transaction{
		FromAccountID: &fromID,
		FromAccount:   &fromNumber,
		ToAccountID:   &toID,
		ToAccount:     &toNumber,
		Type:          TypeTransfer,
		Amount:        amount,
	}
}

type Repository interface {
	RecordInTx(ctx context.Context, tx pgx.Tx, t *Transaction) error

	// FindByAccountID returns every line touching the account, newest first.
	FindByAccountID(ctx context.Context, accountID int64) ([]*Transaction, error)

	// FindRecentByCustomerID returns the newest lines touching any account of
	// the customer.
	FindRecentByCustomerID(ctx context.Context, customerID int64, limit int) ([]*Transaction, error)
}
