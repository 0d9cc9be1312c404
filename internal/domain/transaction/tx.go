package transaction

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// runInTx commits when fn succeeds and rolls back otherwise, including on
// panic.
func (s *transactionService) runInTx(ctx context.Context, fn func(tx pgx.Tx) (*Receipt, error)) (receipt *Receipt, err error) {
	tx, err := s.accounts.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.accounts.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			_ = s.accounts.RollbackTx(ctx, tx)
		}
	}()

	receipt, err = fn(tx)
	if err != nil {
		return nil, err
	}
	if err = s.accounts.CommitTx(ctx, tx); err != nil {
		return nil, err
	}
	return receipt, nil
}
