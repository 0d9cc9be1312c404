package account

import (
	"banking-api/internal/domain/ledger"
	"banking-api/internal/infrastructure/monitoring"
	"banking-api/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

const maxNumberAttempts = 3

type AccountService interface {
	ListAccounts(ctx context.Context, customerID int64) ([]*Account, error)
	GetBalance(ctx context.Context, customerID int64, number string) (*Account, error)
	OpenAccount(ctx context.Context, customerID int64, accountType string, initialDeposit float64) (*Account, error)
}

var _ AccountService = (*accountService)(nil)

type accountService struct {
	repo       Repository
	ledgerRepo ledger.Repository
	logger     *slog.Logger
	numberFn   func() string
}

func NewAccountService(repo Repository, ledgerRepo ledger.Repository, logger *slog.Logger) AccountService {
	if repo == nil || ledgerRepo == nil {
		panic("account and ledger repositories cannot be nil")
	}
	return &accountService{
		repo:       repo,
		ledgerRepo: ledgerRepo,
		logger:     logger.With(slog.String("component", "accountService")),
		numberFn:   GenerateNumber,
	}
}

// GenerateNumber returns a fresh account number for the current instant.
func GenerateNumber() string {
	return NewAccountNumber(time.Now(), rand.IntN(10000))
}

func (s *accountService) ListAccounts(ctx context.Context, customerID int64) ([]*Account, error) {
	accounts, err := s.repo.FindActiveByCustomerID(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing accounts", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list accounts for customer %d: %w", customerID, err)
	}
	s.logger.DebugContext(ctx, "Listed accounts", slog.Int64("customerID", customerID), slog.Int("count", len(accounts)))
	return accounts, nil
}

func (s *accountService) GetBalance(ctx context.Context, customerID int64, number string) (*Account, error) {
	acc, err := s.repo.FindOwnedByNumber(ctx, customerID, number)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Account not found for customer", slog.String("accountNumber", number))
			return nil, fmt.Errorf("%w: account %s not found", apperrors.ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to get account %s: %w", number, err)
	}
	return acc, nil
}

func (s *accountService) OpenAccount(ctx context.Context, customerID int64, accountType string, initialDeposit float64) (*Account, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.String("accountType", accountType))
	logCtx.InfoContext(ctx, "Attempting to open account")

	t, err := ParseType(accountType)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(initialDeposit) || math.IsInf(initialDeposit, 0) || initialDeposit < 0 {
		return nil, apperrors.NewValidationError("initialDeposit", "initial deposit cannot be negative")
	}

	var lastErr error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		acc := NewAccount(customerID, s.numberFn(), t)
		lastErr = s.openInTx(ctx, acc, initialDeposit)
		if lastErr == nil {
			logCtx.InfoContext(ctx, "Account opened", slog.String("accountNumber", acc.Number), slog.Float64("balance", acc.Balance))
			if initialDeposit > 0 {
				monitoring.RecordTransaction(string(ledger.TypeDeposit), initialDeposit, nil)
			}
			return acc, nil
		}
		if !errors.Is(lastErr, apperrors.ErrAlreadyExists) {
			break
		}
		logCtx.WarnContext(ctx, "Account number collision, retrying", slog.Int("attempt", attempt))
	}

	logCtx.ErrorContext(ctx, "Failed to open account", slog.Any("error", lastErr))
	return nil, fmt.Errorf("failed to open account: %w", lastErr)
}

func (s *accountService) openInTx(ctx context.Context, acc *Account, initialDeposit float64) (err error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	if err = s.repo.CreateInTx(ctx, tx, acc); err != nil {
		return err
	}

	if initialDeposit > 0 {
		if acc.Balance, err = s.repo.AdjustBalanceInTx(ctx, tx, acc.ID, initialDeposit); err != nil {
			return err
		}
		if err = s.ledgerRepo.RecordInTx(ctx, tx, ledger.NewCredit(ledger.TypeDeposit, acc.ID, acc.Number, initialDeposit)); err != nil {
			return err
		}
	}

	return s.repo.CommitTx(ctx, tx)
}
