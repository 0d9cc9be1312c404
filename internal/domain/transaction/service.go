// Package transaction moves money between customer accounts. Each movement
// locks the affected rows, checks funds, updates balances and writes the
// ledger line inside one database transaction.
package transaction

import (
	"banking-api/internal/domain/account"
	"banking-api/internal/domain/ledger"
	"banking-api/internal/event"
	"banking-api/internal/infrastructure/monitoring"
	"banking-api/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
)

const RecentLimit = 20

type Receipt struct {
	Transaction   *ledger.Transaction
	AccountNumber string
	NewBalance    float64
}

type TransactionService interface {
	Deposit(ctx context.Context, customerID int64, accountNumber string, amount float64) (*Receipt, error)
	Withdraw(ctx context.Context, customerID int64, accountNumber string, amount float64) (*Receipt, error)
	Transfer(ctx context.Context, customerID int64, fromNumber, toNumber string, amount float64) (*Receipt, error)
	History(ctx context.Context, customerID int64, accountNumber string) ([]*ledger.Transaction, error)
	Recent(ctx context.Context, customerID int64, limit int) ([]*ledger.Transaction, error)
}

var _ TransactionService = (*transactionService)(nil)

type transactionService struct {
	accounts account.Repository
	ledger   ledger.Repository
	pub      event.EventPublisher
	logger   *slog.Logger
}

func NewTransactionService(accounts account.Repository, ledgerRepo ledger.Repository, pub event.EventPublisher, logger *slog.Logger) TransactionService {
	if accounts == nil || ledgerRepo == nil {
		panic("account and ledger repositories cannot be nil")
	}
	if pub == nil {
		pub = event.NewNoopPublisher(logger)
	}
	return &transactionService{
		accounts: accounts,
		ledger:   ledgerRepo,
		pub:      pub,
		logger:   logger.With(slog.String("component", "transactionService")),
	}
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return apperrors.NewValidationError("amount", "amount must be greater than 0")
	}
	return nil
}

func (s *transactionService) Deposit(ctx context.Context, customerID int64, accountNumber string, amount float64) (receipt *Receipt, err error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	defer func() { monitoring.RecordTransaction(string(ledger.TypeDeposit), amount, err) }()

	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.String("accountNumber", accountNumber))
	logCtx.InfoContext(ctx, "Processing deposit", slog.Float64("amount", amount))

	receipt, err = s.runInTx(ctx, func(tx pgx.Tx) (*Receipt, error) {
		acc, err := s.accounts.LockOwnedByNumberInTx(ctx, tx, customerID, accountNumber)
		if err != nil {
			return nil, ownedAccountError(err, accountNumber)
		}
		balance, err := s.accounts.AdjustBalanceInTx(ctx, tx, acc.ID, amount)
		if err != nil {
			return nil, err
		}
		line := ledger.NewCredit(ledger.TypeDeposit, acc.ID, acc.Number, amount)
		if err := s.ledger.RecordInTx(ctx, tx, line); err != nil {
			return nil, err
		}
		return &Receipt{Transaction: line, AccountNumber: acc.Number, NewBalance: balance}, nil
	})
	if err != nil {
		logCtx.WarnContext(ctx, "Deposit failed", slog.Any("error", err))
		return nil, err
	}

	s.publish(ctx, customerID, receipt)
	logCtx.InfoContext(ctx, "Deposit committed", slog.Float64("newBalance", receipt.NewBalance))
	return receipt, nil
}

func (s *transactionService) Withdraw(ctx context.Context, customerID int64, accountNumber string, amount float64) (receipt *Receipt, err error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	defer func() { monitoring.RecordTransaction(string(ledger.TypeWithdrawal), amount, err) }()

	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.String("accountNumber", accountNumber))
	logCtx.InfoContext(ctx, "Processing withdrawal", slog.Float64("amount", amount))

	receipt, err = s.runInTx(ctx, func(tx pgx.Tx) (*Receipt, error) {
		acc, err := s.accounts.LockOwnedByNumberInTx(ctx, tx, customerID, accountNumber)
		if err != nil {
			return nil, ownedAccountError(err, accountNumber)
		}
		if acc.Balance < amount {
			return nil, fmt.Errorf("%w: balance is %.2f", apperrors.ErrInsufficientFunds, acc.Balance)
		}
		balance, err := s.accounts.AdjustBalanceInTx(ctx, tx, acc.ID, -amount)
		if err != nil {
			return nil, err
		}
		line := ledger.NewDebit(ledger.TypeWithdrawal, acc.ID, acc.Number, amount)
		if err := s.ledger.RecordInTx(ctx, tx, line); err != nil {
			return nil, err
		}
		return &Receipt{Transaction: line, AccountNumber: acc.Number, NewBalance: balance}, nil
	})
	if err != nil {
		logCtx.WarnContext(ctx, "Withdrawal failed", slog.Any("error", err))
		return nil, err
	}

	s.publish(ctx, customerID, receipt)
	logCtx.InfoContext(ctx, "Withdrawal committed", slog.Float64("newBalance", receipt.NewBalance))
	return receipt, nil
}

func (s *transactionService) Transfer(ctx context.Context, customerID int64, fromNumber, toNumber string, amount float64) (receipt *Receipt, err error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if fromNumber == toNumber {
		return nil, apperrors.ErrSameAccountTransfer
	}
	defer func() { monitoring.RecordTransaction(string(ledger.TypeTransfer), amount, err) }()

	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.String("from", fromNumber), slog.String("to", toNumber))
	logCtx.InfoContext(ctx, "Processing transfer", slog.Float64("amount", amount))

	receipt, err = s.runInTx(ctx, func(tx pgx.Tx) (*Receipt, error) {
		locked, err := s.accounts.LockByNumbersInTx(ctx, tx, fromNumber, toNumber)
		if err != nil {
			return nil, err
		}

		var from, to *account.Account
		for _, a := range locked {
			switch a.Number {
			case fromNumber:
				from = a
			case toNumber:
				to = a
			}
		}
		if from == nil || from.CustomerID != customerID {
			return nil, fmt.Errorf("%w: source account %s not found", apperrors.ErrNotFound, fromNumber)
		}
		if to == nil {
			return nil, fmt.Errorf("%w: destination account %s not found", apperrors.ErrNotFound, toNumber)
		}
		if from.Balance < amount {
			return nil, fmt.Errorf("%w: balance is %.2f", apperrors.ErrInsufficientFunds, from.Balance)
		}

		balance, err := s.accounts.AdjustBalanceInTx(ctx, tx, from.ID, -amount)
		if err != nil {
			return nil, err
		}
		if _, err := s.accounts.AdjustBalanceInTx(ctx, tx, to.ID, amount); err != nil {
			return nil, err
		}
		line := ledger.NewTransfer(from.ID, from.Number, to.ID, to.Number, amount)
		if err := s.ledger.RecordInTx(ctx, tx, line); err != nil {
			return nil, err
		}
		return &Receipt{Transaction: line, AccountNumber: from.Number, NewBalance: balance}, nil
	})
	if err != nil {
		logCtx.WarnContext(ctx, "Transfer failed", slog.Any("error", err))
		return nil, err
	}

	s.publish(ctx, customerID, receipt)
	logCtx.InfoContext(ctx, "Transfer committed", slog.Float64("newBalance", receipt.NewBalance))
	return receipt, nil
}

func (s *transactionService) History(ctx context.Context, customerID int64, accountNumber string) ([]*ledger.Transaction, error) {
	acc, err := s.accounts.FindOwnedByNumber(ctx, customerID, accountNumber)
	if err != nil {
		return nil, ownedAccountError(err, accountNumber)
	}
	lines, err := s.ledger.FindByAccountID(ctx, acc.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error reading history", slog.String("accountNumber", accountNumber), slog.Any("error", err))
		return nil, fmt.Errorf("failed to read history for %s: %w", accountNumber, err)
	}
	return lines, nil
}

func (s *transactionService) Recent(ctx context.Context, customerID int64, limit int) ([]*ledger.Transaction, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	lines, err := s.ledger.FindRecentByCustomerID(ctx, customerID, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error reading recent transactions", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to read recent transactions: %w", err)
	}
	return lines, nil
}

func ownedAccountError(err error, accountNumber string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: account %s not found or access denied", apperrors.ErrNotFound, accountNumber)
	}
	return err
}

func (s *transactionService) publish(ctx context.Context, customerID int64, r *Receipt) {
	evt := event.TransactionCompletedEvent{
		TransactionID: r.Transaction.ID,
		CustomerID:    customerID,
		Type:          string(r.Transaction.Type),
		FromAccount:   r.Transaction.FromAccount,
		ToAccount:     r.Transaction.ToAccount,
		Amount:        r.Transaction.Amount,
		NewBalance:    r.NewBalance,
		Timestamp:     time.Now(),
	}
	if err := s.pub.PublishTransactionCompleted(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Transaction committed, but FAILED to publish event", slog.Any("error", err))
	}
}
