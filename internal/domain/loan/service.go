package loan

import (
	"banking-api/internal/domain/account"
	"banking-api/internal/domain/amortization"
	"banking-api/internal/domain/ledger"
	"banking-api/internal/event"
	"banking-api/internal/infrastructure/monitoring"
	"banking-api/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"
)

type Disbursement struct {
	Loan          *Loan
	Summary       amortization.Summary
	AccountNumber string
	NewBalance    float64
}

type Details struct {
	Loan       *Loan
	Assessment *Assessment
	Schedule   []amortization.ScheduleEntry
}

type RepaymentResult struct {
	Repayment        *Repayment
	AccountNumber    string
	RemainingBalance float64
	IsFullyPaid      bool
}

type Simulation struct {
	Summary  amortization.Summary         `json:"summary"`
	Schedule []amortization.ScheduleEntry `json:"schedule"`
}

type LoanService interface {
	Apply(ctx context.Context, customerID int64, principal, annualRatePercent float64, durationMonths int) (*Disbursement, error)

	ListLoans(ctx context.Context, customerID int64) ([]*Details, error)

	GetLoan(ctx context.Context, customerID, loanID int64, includeSchedule bool) (*Details, error)

	Repay(ctx context.Context, customerID, loanID int64, amount float64) (*RepaymentResult, error)

	Simulate(ctx context.Context, principal, annualRatePercent float64, durationMonths int) (*Simulation, error)
}

var _ LoanService = (*loanServiceImpl)(nil)

type loanServiceImpl struct {
	repo     Repository
	accounts account.Repository
	ledger   ledger.Repository
	pub      event.EventPublisher
	cache    SimulationCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewLoanService wires the loan workflows. cache may be nil, in which case
// every simulation is computed.
func NewLoanService(r Repository, accounts account.Repository, ledgerRepo ledger.Repository, pub event.EventPublisher, cache SimulationCache, logger *slog.Logger) LoanService {
	if pub == nil {
		pub = event.NewNoopPublisher(logger)
	}
	return &loanServiceImpl{
		repo:     r,
		accounts: accounts,
		ledger:   ledgerRepo,
		pub:      pub,
		cache:    cache,
		logger:   logger.With(slog.String("component", "loanService")),
		now:      time.Now,
	}
}

func (s *loanServiceImpl) Apply(ctx context.Context, customerID int64, principal, annualRatePercent float64, durationMonths int) (d *Disbursement, err error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Processing loan application",
		slog.Float64("principal", principal), slog.Float64("interestRate", annualRatePercent), slog.Int("durationMonths", durationMonths))

	loan, err := NewLoan(customerID, principal, annualRatePercent, durationMonths, s.now().UTC())
	if err != nil {
		return nil, err
	}
	summary, err := loan.Summary()
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			logCtx.WarnContext(ctx, "Rolling back loan application", slog.Any("error", err))
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	acc, err := s.accounts.LockPrimaryInTx(ctx, tx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active account to receive the loan", apperrors.ErrNotFound)
		}
		return nil, err
	}
	if err = s.repo.CreateInTx(ctx, tx, loan); err != nil {
		return nil, err
	}
	balance, err := s.accounts.AdjustBalanceInTx(ctx, tx, acc.ID, principal)
	if err != nil {
		return nil, err
	}
	if err = s.ledger.RecordInTx(ctx, tx, ledger.NewCredit(ledger.TypeLoanDisbursement, acc.ID, acc.Number, principal)); err != nil {
		return nil, err
	}
	if err = s.repo.CommitTx(ctx, tx); err != nil {
		logCtx.ErrorContext(ctx, "Failed to commit loan disbursement", slog.Any("error", err))
		return nil, fmt.Errorf("could not commit loan disbursement: %w", err)
	}

	monitoring.RecordLoanDisbursed()
	logCtx.InfoContext(ctx, "Loan disbursed", slog.Int64("loanID", loan.ID), slog.String("accountNumber", acc.Number))

	if pubErr := s.pub.PublishLoanDisbursed(ctx, event.LoanDisbursedEvent{
		LoanID:          loan.ID,
		CustomerID:      customerID,
		Principal:       principal,
		InterestRate:    annualRatePercent,
		DurationMonths:  durationMonths,
		MonthlyPayment:  amortization.Round2(summary.MonthlyPayment),
		AccountCredited: acc.Number,
		Timestamp:       s.now(),
	}); pubErr != nil {
		logCtx.ErrorContext(ctx, "Loan disbursed, but FAILED to publish event", slog.Any("error", pubErr))
	}

	return &Disbursement{Loan: loan, Summary: summary, AccountNumber: acc.Number, NewBalance: balance}, nil
}

func (s *loanServiceImpl) ListLoans(ctx context.Context, customerID int64) ([]*Details, error) {
	loans, err := s.repo.FindByCustomerID(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing loans", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	now := s.now().UTC()
	out := make([]*Details, 0, len(loans))
	for _, l := range loans {
		a, err := l.Assess(now)
		if err != nil {
			return nil, fmt.Errorf("failed to assess loan %d: %w", l.ID, err)
		}
		out = append(out, &Details{Loan: l, Assessment: a})
	}
	return out, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, customerID, loanID int64, includeSchedule bool) (*Details, error) {
	l, err := s.repo.FindOwnedByID(ctx, customerID, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan %d not found", apperrors.ErrNotFound, loanID)
		}
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}

	l.Repayments, err = s.repo.FindRepayments(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get repayments for loan %d: %w", loanID, err)
	}

	a, err := l.Assess(s.now().UTC())
	if err != nil {
		return nil, err
	}
	d := &Details{Loan: l, Assessment: a}
	if includeSchedule {
		if d.Schedule, err = l.Schedule(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (s *loanServiceImpl) Repay(ctx context.Context, customerID, loanID int64, amount float64) (res *RepaymentResult, err error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, apperrors.NewValidationError("amount", "amount must be greater than 0")
	}
	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.Int64("loanID", loanID))
	logCtx.InfoContext(ctx, "Processing loan repayment", slog.Float64("amount", amount))

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		monitoring.RecordRepayment(err)
		if p := recover(); p != nil {
			logCtx.ErrorContext(ctx, "Panic occurred during repayment", slog.Any("panic", p))
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			logCtx.WarnContext(ctx, "Rolling back repayment", slog.Any("error", err))
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	// Loan row first, then the account row.
	l, err := s.repo.LockOwnedInTx(ctx, tx, customerID, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan %d not found", apperrors.ErrNotFound, loanID)
		}
		return nil, err
	}
	remaining, err := l.RemainingBalance()
	if err != nil {
		return nil, err
	}
	if err = amortization.ValidateRepayment(remaining, amount); err != nil {
		return nil, err
	}

	acc, err := s.accounts.LockPrimaryInTx(ctx, tx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active account to repay from", apperrors.ErrNotFound)
		}
		return nil, err
	}
	if acc.Balance < amount {
		return nil, fmt.Errorf("%w: balance is %.2f", apperrors.ErrInsufficientFunds, acc.Balance)
	}
	if _, err = s.accounts.AdjustBalanceInTx(ctx, tx, acc.ID, -amount); err != nil {
		return nil, err
	}

	repayment := &Repayment{LoanID: l.ID, Amount: amount, PaymentDate: s.now().UTC()}
	if err = s.repo.AddRepaymentInTx(ctx, tx, repayment); err != nil {
		return nil, err
	}
	if err = s.ledger.RecordInTx(ctx, tx, ledger.NewDebit(ledger.TypeLoanRepayment, acc.ID, acc.Number, amount)); err != nil {
		return nil, err
	}
	if err = s.repo.CommitTx(ctx, tx); err != nil {
		logCtx.ErrorContext(ctx, "Failed to commit repayment", slog.Any("error", err))
		return nil, fmt.Errorf("could not commit repayment: %w", err)
	}

	left := remaining - amount
	res = &RepaymentResult{
		Repayment:        repayment,
		AccountNumber:    acc.Number,
		RemainingBalance: amortization.Round2(math.Max(left, 0)),
		IsFullyPaid:      amortization.IsFullyPaid(left),
	}
	logCtx.InfoContext(ctx, "Repayment committed",
		slog.Float64("remainingBalance", res.RemainingBalance), slog.Bool("isFullyPaid", res.IsFullyPaid))

	if pubErr := s.pub.PublishLoanRepaid(ctx, event.LoanRepaidEvent{
		LoanID:           l.ID,
		CustomerID:       customerID,
		Amount:           amount,
		RemainingBalance: res.RemainingBalance,
		IsFullyPaid:      res.IsFullyPaid,
		AccountDebited:   acc.Number,
		Timestamp:        s.now(),
	}); pubErr != nil {
		logCtx.ErrorContext(ctx, "Repayment committed, but FAILED to publish event", slog.Any("error", pubErr))
	}
	return res, nil
}

func (s *loanServiceImpl) Simulate(ctx context.Context, principal, annualRatePercent float64, durationMonths int) (*Simulation, error) {
	key := SimulationKey(principal, annualRatePercent, durationMonths)
	if s.cache != nil {
		if sim, ok := s.cache.Get(ctx, key); ok {
			monitoring.RecordSimulationCache(true)
			return sim, nil
		}
		monitoring.RecordSimulationCache(false)
	}

	summary, err := amortization.Summarize(principal, annualRatePercent, durationMonths)
	if err != nil {
		return nil, err
	}
	schedule, err := amortization.BuildSchedule(principal, annualRatePercent, durationMonths)
	if err != nil {
		return nil, err
	}
	sim := &Simulation{
		Summary: amortization.Summary{
			MonthlyPayment: amortization.Round2(summary.MonthlyPayment),
			TotalInterest:  amortization.Round2(summary.TotalInterest),
			TotalRepayment: amortization.Round2(summary.TotalRepayment),
		},
		Schedule: schedule,
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, sim)
	}
	return sim, nil
}

// SimulationKey identifies a simulation by its exact terms. Distinct inputs
// never share a key.
func SimulationKey(principal, annualRatePercent float64, durationMonths int) string {
	return "loan:sim:" + strconv.FormatFloat(principal, 'f', -1, 64) + ":" +
		strconv.FormatFloat(annualRatePercent, 'f', -1, 64) + ":" + strconv.Itoa(durationMonths)
}
