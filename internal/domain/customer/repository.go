package customer

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type CustomerRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error

	// CreateInTx inserts the customer and fills ID and CreatedAt. A taken
	// email yields apperrors.ErrAlreadyExists.
	CreateInTx(ctx context.Context, tx pgx.Tx, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindByEmail(ctx context.Context, email string) (*Customer, error)

	UpdateProfile(ctx context.Context, customer *Customer) error
}
