// Package dashboard assembles the customer overview from the account, ledger
// and loan stores in parallel.
package dashboard

import (
	"banking-api/internal/domain/account"
	"banking-api/internal/domain/customer"
	"banking-api/internal/domain/ledger"
	"banking-api/internal/domain/loan"
	"banking-api/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

const RecentTransactions = 10

type CustomerReader interface {
	FindByID(ctx context.Context, customerID int64) (*customer.Customer, error)
}

type AccountReader interface {
	FindActiveByCustomerID(ctx context.Context, customerID int64) ([]*account.Account, error)
}

type LedgerReader interface {
	FindRecentByCustomerID(ctx context.Context, customerID int64, limit int) ([]*ledger.Transaction, error)
}

type LoanReader interface {
	FindByCustomerID(ctx context.Context, customerID int64) ([]*loan.Loan, error)
}

type LoansSummary struct {
	Count         int
	Active        int
	Overdue       int
	PaidOff       int
	TotalBorrowed float64
	TotalRepaid   float64
	Outstanding   float64
}

type Dashboard struct {
	Customer           *customer.Customer
	Accounts           []*account.Account
	TotalBalance       float64
	RecentTransactions []*ledger.Transaction
	Loans              LoansSummary
}

type DashboardService interface {
	Get(ctx context.Context, customerID int64) (*Dashboard, error)
}

type dashboardService struct {
	customers CustomerReader
	accounts  AccountReader
	ledger    LedgerReader
	loans     LoanReader
	logger    *slog.Logger
	now       func() time.Time
}

func NewDashboardService(customers CustomerReader, accounts AccountReader, ledgerRepo LedgerReader, loans LoanReader, logger *slog.Logger) DashboardService {
	return &dashboardService{
		customers: customers,
		accounts:  accounts,
		ledger:    ledgerRepo,
		loans:     loans,
		logger:    logger.With(slog.String("component", "dashboardService")),
		now:       time.Now,
	}
}

func (s *dashboardService) Get(ctx context.Context, customerID int64) (*Dashboard, error) {
	d := &Dashboard{}
	var loans []*loan.Loan

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.customers.FindByID(gctx, customerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: customer %d not found", apperrors.ErrNotFound, customerID)
			}
			return fmt.Errorf("customer: %w", err)
		}
		d.Customer = c
		return nil
	})
	g.Go(func() error {
		accounts, err := s.accounts.FindActiveByCustomerID(gctx, customerID)
		if err != nil {
			return fmt.Errorf("accounts: %w", err)
		}
		d.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		recent, err := s.ledger.FindRecentByCustomerID(gctx, customerID, RecentTransactions)
		if err != nil {
			return fmt.Errorf("recent transactions: %w", err)
		}
		d.RecentTransactions = recent
		return nil
	})
	g.Go(func() error {
		var err error
		if loans, err = s.loans.FindByCustomerID(gctx, customerID); err != nil {
			return fmt.Errorf("loans: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to assemble dashboard", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, err
	}

	d.TotalBalance = account.TotalBalance(d.Accounts)
	summary, err := SummarizeLoans(loans, s.now())
	if err != nil {
		return nil, err
	}
	d.Loans = summary
	return d, nil
}

// SummarizeLoans aggregates loans. Outstanding is the sum of amortized
// remaining balances, never negative per loan.
func SummarizeLoans(loans []*loan.Loan, now time.Time) (LoansSummary, error) {
	var s LoansSummary
	for _, l := range loans {
		a, err := l.Assess(now)
		if err != nil {
			return LoansSummary{}, fmt.Errorf("failed to assess loan %d: %w", l.ID, err)
		}
		s.Count++
		s.TotalBorrowed += l.Principal
		s.TotalRepaid += l.TotalPaid
		s.Outstanding += math.Max(a.RemainingBalance, 0)
		switch a.Standing {
		case loan.StandingOverdue:
			s.Overdue++
		case loan.StandingPaidOff:
			s.PaidOff++
		default:
			s.Active++
		}
	}
	return s, nil
}
