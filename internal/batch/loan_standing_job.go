package batch

import (
	"banking-api/internal/domain/amortization"
	"banking-api/internal/domain/loan"
	"banking-api/internal/event"
	"banking-api/internal/infrastructure/monitoring"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
)

const defaultWorkers = 8

// LoanSource streams every loan with its repayment total.
type LoanSource interface {
	FindAllWithTotals(ctx context.Context, fn func(*loan.Loan) error) error
}

// LoanStandingJob assesses every loan against the installments due so far,
// publishes an overdue event for each loan behind schedule and refreshes the
// overdue gauge. Loans themselves are never written.
type LoanStandingJob struct {
	loans     LoanSource
	publisher event.EventPublisher
	workers   int
	logger    *slog.Logger
	now       func() time.Time
}

type standingCounts struct {
	assessed atomic.Int32
	active   atomic.Int32
	overdue  atomic.Int32
	paidOff  atomic.Int32
	errors   atomic.Int32
}

func NewLoanStandingJob(loans LoanSource, publisher event.EventPublisher, workers int, logger *slog.Logger) *LoanStandingJob {
	if loans == nil || publisher == nil || logger == nil {
		panic("LoanStandingJob dependencies cannot be nil")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &LoanStandingJob{
		loans:     loans,
		publisher: publisher,
		workers:   workers,
		logger:    logger.With("job", "LoanStanding"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (j *LoanStandingJob) Run(ctx context.Context) error {
	startTime := time.Now()
	now := j.now()
	j.logger.InfoContext(ctx, "Starting loan standing job.", slog.Int("workers", j.workers))

	pool, err := ants.NewPool(j.workers)
	if err != nil {
		return fmt.Errorf("cannot run job, failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var counts standingCounts

	streamErr := j.loans.FindAllWithTotals(ctx, func(l *loan.Loan) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			j.assess(ctx, l, now, &counts)
		}); err != nil {
			wg.Done()
			return fmt.Errorf("failed to submit loan %d: %w", l.ID, err)
		}
		return nil
	})
	wg.Wait()

	overdue := int(counts.overdue.Load())
	errorCount := int(counts.errors.Load())
	if streamErr == nil {
		monitoring.SetOverdueLoans(overdue)
	}

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("loans_assessed", int(counts.assessed.Load())),
		slog.Int("loans_active", int(counts.active.Load())),
		slog.Int("loans_overdue", overdue),
		slog.Int("loans_paid_off", int(counts.paidOff.Load())),
		slog.Int("errors_encountered", errorCount),
	)

	if streamErr != nil {
		summaryLog.ErrorContext(ctx, "Loan standing job aborted.", slog.Any("error", streamErr))
		return fmt.Errorf("loan standing job aborted: %w", streamErr)
	}
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Loan standing job finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount)
	}
	summaryLog.InfoContext(ctx, "Loan standing job finished successfully.")
	return nil
}

func (j *LoanStandingJob) assess(ctx context.Context, l *loan.Loan, now time.Time, counts *standingCounts) {
	logCtx := j.logger.With(slog.Int64("loanID", l.ID), slog.Int64("customerID", l.CustomerID))

	a, err := l.Assess(now)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to assess loan", slog.Any("error", err))
		counts.errors.Add(1)
		return
	}
	counts.assessed.Add(1)

	switch a.Standing {
	case loan.StandingPaidOff:
		counts.paidOff.Add(1)
		return
	case loan.StandingActive:
		counts.active.Add(1)
		return
	}

	counts.overdue.Add(1)
	logCtx.InfoContext(ctx, "Loan is overdue.", slog.Float64("amountOverdue", amortization.Round2(a.AmountOverdue)))

	evt := event.LoanOverdueEvent{
		LoanID:         l.ID,
		CustomerID:     l.CustomerID,
		ExpectedPaid:   amortization.Round2(a.ExpectedPaid),
		TotalPaid:      amortization.Round2(a.TotalPaid),
		AmountOverdue:  amortization.Round2(a.AmountOverdue),
		MonthsElapsed:  a.MonthsElapsed,
		DurationMonths: l.DurationMonths,
		Timestamp:      now,
	}
	if err := j.publisher.PublishLoanOverdue(ctx, evt); err != nil {
		logCtx.WarnContext(ctx, "Failed to publish loan overdue event", slog.Any("error", err))
	}
}
