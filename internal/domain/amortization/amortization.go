// Package amortization computes fixed-rate loan payments, repayment schedules
// and remaining balances. Every function is pure and safe for concurrent use.
package amortization

import (
	"banking-api/internal/pkg/apperrors"
	"fmt"
	"math"
)

// FullyPaidTolerance absorbs floating point noise when deciding whether a loan
// has been repaid in full.
const FullyPaidTolerance = 0.01

// Below this monthly rate the annuity denominator is indistinguishable from the
// interest-free case and the payment is computed linearly.
const linearRateThreshold = 1e-12

// MaxMonths bounds every schedule this package will build.
const MaxMonths = 1200

type ScheduleEntry struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

type Summary struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalInterest  float64 `json:"totalInterest"`
	TotalRepayment float64 `json:"totalRepayment"`
}

// MonthlyRate converts an annual percentage rate into a monthly fraction.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 100 / 12
}

// MonthlyPayment returns the fixed installment at full precision.
func MonthlyPayment(principal, annualRatePercent float64, months int) (float64, error) {
	if err := validate(principal, annualRatePercent, months); err != nil {
		return 0, err
	}
	return monthlyPayment(principal, MonthlyRate(annualRatePercent), months), nil
}

func monthlyPayment(principal, r float64, months int) float64 {
	n := float64(months)
	if r < linearRateThreshold {
		return principal / n
	}
	// 1 - (1+r)^-n computed as -expm1(-n*log1p(r)) keeps precision for tiny r.
	denominator := -math.Expm1(-n * math.Log1p(r))
	return principal * r / denominator
}

// BuildSchedule returns exactly months entries. Entries are rounded to cents,
// the running balance is carried at full precision.
func BuildSchedule(principal, annualRatePercent float64, months int) ([]ScheduleEntry, error) {
	if err := validate(principal, annualRatePercent, months); err != nil {
		return nil, err
	}

	r := MonthlyRate(annualRatePercent)
	payment := monthlyPayment(principal, r, months)
	balance := principal

	schedule := make([]ScheduleEntry, 0, months)
	for month := 1; month <= months; month++ {
		interest := balance * r
		principalPortion := payment - interest
		balance -= principalPortion

		schedule = append(schedule, ScheduleEntry{
			Month:     month,
			Payment:   Round2(payment),
			Principal: Round2(principalPortion),
			Interest:  Round2(interest),
			Balance:   Round2(math.Max(balance, 0)),
		})
	}
	return schedule, nil
}

// TotalRepayment is the contractual amount owed over the life of the loan.
func TotalRepayment(principal, annualRatePercent float64, months int) (float64, error) {
	payment, err := MonthlyPayment(principal, annualRatePercent, months)
	if err != nil {
		return 0, err
	}
	return payment * float64(months), nil
}

// RemainingBalance is the total repayment minus what has been paid so far.
// It may go slightly negative within FullyPaidTolerance.
func RemainingBalance(principal, annualRatePercent float64, months int, totalPaid float64) (float64, error) {
	if math.IsNaN(totalPaid) || math.IsInf(totalPaid, 0) || totalPaid < 0 {
		return 0, fmt.Errorf("%w: total paid must be a non-negative number", apperrors.ErrInvalidArgument)
	}
	total, err := TotalRepayment(principal, annualRatePercent, months)
	if err != nil {
		return 0, err
	}
	return total - totalPaid, nil
}

func Summarize(principal, annualRatePercent float64, months int) (Summary, error) {
	payment, err := MonthlyPayment(principal, annualRatePercent, months)
	if err != nil {
		return Summary{}, err
	}
	total := payment * float64(months)
	return Summary{
		MonthlyPayment: payment,
		TotalInterest:  total - principal,
		TotalRepayment: total,
	}, nil
}

func IsFullyPaid(remaining float64) bool {
	return remaining <= FullyPaidTolerance
}

// ValidateRepayment checks a proposed payment against the outstanding amount
// rounded to cents.
func ValidateRepayment(remaining, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: payment amount must be greater than 0", apperrors.ErrInvalidArgument)
	}
	if IsFullyPaid(remaining) {
		return apperrors.ErrLoanFullyPaid
	}
	if amount > Round2(remaining) {
		return fmt.Errorf("%w: remaining balance is %.2f", apperrors.ErrRepaymentExceedsBalance, Round2(remaining))
	}
	return nil
}

// ExpectedPaidToDate is what a borrower should have paid after monthsElapsed
// full months, capped at the loan term.
func ExpectedPaidToDate(principal, annualRatePercent float64, months, monthsElapsed int) (float64, error) {
	payment, err := MonthlyPayment(principal, annualRatePercent, months)
	if err != nil {
		return 0, err
	}
	if monthsElapsed < 0 {
		monthsElapsed = 0
	}
	if monthsElapsed > months {
		monthsElapsed = months
	}
	return payment * float64(monthsElapsed), nil
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func validate(principal, annualRatePercent float64, months int) error {
	if !isFinite(principal) || principal <= 0 {
		return fmt.Errorf("%w: principal must be greater than 0", apperrors.ErrInvalidArgument)
	}
	if !isFinite(annualRatePercent) || annualRatePercent <= 0 {
		return fmt.Errorf("%w: interest rate must be greater than 0", apperrors.ErrInvalidArgument)
	}
	if months <= 0 {
		return fmt.Errorf("%w: duration must be at least 1 month", apperrors.ErrInvalidArgument)
	}
	if months > MaxMonths {
		return fmt.Errorf("%w: duration must not exceed %d months", apperrors.ErrInvalidArgument, MaxMonths)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
