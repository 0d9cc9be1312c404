package loan

import (
	"banking-api/internal/domain/amortization"
	"time"
)

type Standing string

const (
	StandingActive  Standing = "ACTIVE"
	StandingOverdue Standing = "OVERDUE"
	StandingPaidOff Standing = "PAID_OFF"
)

// Loan is written once at disbursement. Everything about its progress is
// derived from the repayments recorded against it.
type Loan struct {
	ID             int64
	CustomerID     int64
	Principal      float64
	InterestRate   float64
	DurationMonths int
	StartDate      time.Time
	CreatedAt      time.Time
	TotalPaid      float64
	Repayments     []Repayment
}

type Repayment struct {
	ID          int64
	LoanID      int64
	Amount      float64
	PaymentDate time.Time
}

// Assessment is the derived view of a loan at a point in time.
type Assessment struct {
	amortization.Summary
	TotalPaid        float64
	RemainingBalance float64
	IsFullyPaid      bool
	MonthsElapsed    int
	ExpectedPaid     float64
	AmountOverdue    float64
	Standing         Standing
}

// Terms accepted for a loan. The rate scale and ceiling follow the
// interest_rate NUMERIC(9,6) column.
const (
	DefaultMaxDurationMonths = 600
	MaxInterestRate          = 1000
	InterestRateScale        = 6
)

func NewLoan(customerID int64, principal, annualRatePercent float64, durationMonths int, startDate time.Time) (*Loan, error) {
	if _, err := amortization.MonthlyPayment(principal, annualRatePercent, durationMonths); err != nil {
		return nil, err
	}
	if startDate.IsZero() {
		startDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return &Loan{
		CustomerID:     customerID,
		Principal:      principal,
		InterestRate:   annualRatePercent,
		DurationMonths: durationMonths,
		StartDate:      startDate,
	}, nil
}

func (l *Loan) Summary() (amortization.Summary, error) {
	return amortization.Summarize(l.Principal, l.InterestRate, l.DurationMonths)
}

func (l *Loan) RemainingBalance() (float64, error) {
	return amortization.RemainingBalance(l.Principal, l.InterestRate, l.DurationMonths, l.TotalPaid)
}

func (l *Loan) Schedule() ([]amortization.ScheduleEntry, error) {
	return amortization.BuildSchedule(l.Principal, l.InterestRate, l.DurationMonths)
}

// Assess derives the loan's standing at now. A loan is overdue when the
// borrower has paid less than the installments due for the full months
// elapsed since the start date.
func (l *Loan) Assess(now time.Time) (*Assessment, error) {
	summary, err := l.Summary()
	if err != nil {
		return nil, err
	}
	remaining, err := l.RemainingBalance()
	if err != nil {
		return nil, err
	}
	elapsed := MonthsElapsed(l.StartDate, now)
	expected, err := amortization.ExpectedPaidToDate(l.Principal, l.InterestRate, l.DurationMonths, elapsed)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		Summary:          summary,
		TotalPaid:        l.TotalPaid,
		RemainingBalance: remaining,
		IsFullyPaid:      amortization.IsFullyPaid(remaining),
		MonthsElapsed:    elapsed,
		ExpectedPaid:     expected,
		Standing:         StandingActive,
	}
	switch {
	case a.IsFullyPaid:
		a.Standing = StandingPaidOff
	case expected-l.TotalPaid > amortization.FullyPaidTolerance:
		a.Standing = StandingOverdue
		a.AmountOverdue = expected - l.TotalPaid
	}
	return a, nil
}

// MonthsElapsed counts whole calendar months from start to now.
func MonthsElapsed(start, now time.Time) int {
	if !now.After(start) {
		return 0
	}
	months := (now.Year()-start.Year())*12 + int(now.Month()-start.Month())
	if now.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// SumRepayments totals the amounts of the given repayments.
func SumRepayments(repayments []Repayment) float64 {
	total := 0.0
	for _, r := range repayments {
		total += r.Amount
	}
	return total
}
