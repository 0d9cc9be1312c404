package dto

import (
	"banking-api/internal/domain/amortization"
	"banking-api/internal/domain/loan"
	"banking-api/internal/pkg/apperrors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = time.DateOnly

// maxLoanAmount is the first value that no longer fits NUMERIC(15,2).
var maxLoanAmount = decimal.New(1, 13)

// LoanTermsRequest is the body of a loan application and of a simulation.
type LoanTermsRequest struct {
	LoanAmount     decimal.Decimal `json:"loanAmount" swaggertype:"number"`
	InterestRate   decimal.Decimal `json:"interestRate" swaggertype:"number"`
	DurationMonths int             `json:"durationMonths"`
}

func (r *LoanTermsRequest) Validate() error {
	return r.ValidateWithin(loan.DefaultMaxDurationMonths)
}

// ValidateWithin checks the terms against a maximum loan duration. A
// non-positive maxDurationMonths falls back to the default.
func (r *LoanTermsRequest) ValidateWithin(maxDurationMonths int) error {
	if maxDurationMonths <= 0 {
		maxDurationMonths = loan.DefaultMaxDurationMonths
	}
	if err := validateAmount("loanAmount", r.LoanAmount); err != nil {
		return err
	}
	if r.LoanAmount.GreaterThanOrEqual(maxLoanAmount) {
		return apperrors.NewValidationError("loanAmount", "loanAmount is too large")
	}
	if !r.InterestRate.IsPositive() {
		return apperrors.NewValidationError("interestRate", "interestRate must be greater than 0")
	}
	if r.InterestRate.GreaterThanOrEqual(decimal.NewFromInt(loan.MaxInterestRate)) {
		return apperrors.NewValidationError("interestRate", fmt.Sprintf("interestRate must be less than %d", loan.MaxInterestRate))
	}
	if !r.InterestRate.Equal(r.InterestRate.Truncate(loan.InterestRateScale)) {
		return apperrors.NewValidationError("interestRate", fmt.Sprintf("interestRate must not have more than %d decimal places", loan.InterestRateScale))
	}
	if r.DurationMonths <= 0 {
		return apperrors.NewValidationError("durationMonths", "durationMonths must be greater than 0")
	}
	if r.DurationMonths > maxDurationMonths {
		return apperrors.NewValidationError("durationMonths", fmt.Sprintf("durationMonths must not exceed %d", maxDurationMonths))
	}
	return nil
}

type RepayRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number"`
}

func (r *RepayRequest) Validate() error {
	return validateAmount("amount", r.Amount)
}

type RepaymentResponse struct {
	RepaymentID int64     `json:"repaymentID"`
	AmountPaid  Money     `json:"amountPaid" swaggertype:"number"`
	PaymentDate time.Time `json:"paymentDate"`
}

type ScheduleEntryResponse struct {
	Month     int   `json:"month"`
	Payment   Money `json:"payment" swaggertype:"number"`
	Principal Money `json:"principal" swaggertype:"number"`
	Interest  Money `json:"interest" swaggertype:"number"`
	Balance   Money `json:"balance" swaggertype:"number"`
}

func NewScheduleResponse(schedule []amortization.ScheduleEntry) []ScheduleEntryResponse {
	if schedule == nil {
		return nil
	}
	resp := make([]ScheduleEntryResponse, len(schedule))
	for i, e := range schedule {
		resp[i] = ScheduleEntryResponse{
			Month:     e.Month,
			Payment:   NewMoney(e.Payment),
			Principal: NewMoney(e.Principal),
			Interest:  NewMoney(e.Interest),
			Balance:   NewMoney(e.Balance),
		}
	}
	return resp
}

type SummaryResponse struct {
	MonthlyPayment Money `json:"monthlyPayment" swaggertype:"number"`
	TotalInterest  Money `json:"totalInterest" swaggertype:"number"`
	TotalRepayment Money `json:"totalRepayment" swaggertype:"number"`
}

func NewSummaryResponse(s amortization.Summary) SummaryResponse {
	return SummaryResponse{
		MonthlyPayment: NewMoney(s.MonthlyPayment),
		TotalInterest:  NewMoney(s.TotalInterest),
		TotalRepayment: NewMoney(s.TotalRepayment),
	}
}

type LoanResponse struct {
	LoanID           int64   `json:"loanID"`
	LoanAmount       Money   `json:"loanAmount" swaggertype:"number"`
	InterestRate     float64 `json:"interestRate"`
	DurationMonths   int     `json:"durationMonths"`
	StartDate        string  `json:"startDate"`
	MonthlyPayment   Money   `json:"monthlyPayment" swaggertype:"number"`
	TotalInterest    Money   `json:"totalInterest" swaggertype:"number"`
	TotalRepayment   Money   `json:"totalRepayment" swaggertype:"number"`
	TotalPaid        Money   `json:"totalPaid" swaggertype:"number"`
	RemainingBalance Money   `json:"remainingBalance" swaggertype:"number"`
	IsFullyPaid      bool    `json:"isFullyPaid"`
	Status           string  `json:"status"`
	AmountOverdue    Money   `json:"amountOverdue" swaggertype:"number"`

	Repayments []RepaymentResponse     `json:"repayments,omitempty"`
	Schedule   []ScheduleEntryResponse `json:"schedule,omitempty"`
}

// NewLoanResponse flattens a loan and its assessment. Remaining balance is
// floored at zero for display.
func NewLoanResponse(d *loan.Details) LoanResponse {
	l, a := d.Loan, d.Assessment
	resp := LoanResponse{
		LoanID:           l.ID,
		LoanAmount:       NewMoney(l.Principal),
		InterestRate:     l.InterestRate,
		DurationMonths:   l.DurationMonths,
		StartDate:        l.StartDate.Format(dateLayout),
		MonthlyPayment:   NewMoney(a.MonthlyPayment),
		TotalInterest:    NewMoney(a.TotalInterest),
		TotalRepayment:   NewMoney(a.TotalRepayment),
		TotalPaid:        NewMoney(a.TotalPaid),
		RemainingBalance: NewMoney(max(a.RemainingBalance, 0)),
		IsFullyPaid:      a.IsFullyPaid,
		Status:           string(a.Standing),
		AmountOverdue:    NewMoney(a.AmountOverdue),
		Schedule:         NewScheduleResponse(d.Schedule),
	}
	if l.Repayments != nil {
		resp.Repayments = make([]RepaymentResponse, len(l.Repayments))
		for i, rp := range l.Repayments {
			resp.Repayments[i] = RepaymentResponse{
				RepaymentID: rp.ID,
				AmountPaid:  NewMoney(rp.Amount),
				PaymentDate: rp.PaymentDate,
			}
		}
	}
	return resp
}

type LoansResponse struct {
	Success bool           `json:"success"`
	Loans   []LoanResponse `json:"loans"`
}

type LoanDetailResponse struct {
	Success bool         `json:"success"`
	Loan    LoanResponse `json:"loan"`
}

type DisbursedLoan struct {
	LoanID          int64           `json:"loanID"`
	LoanAmount      Money           `json:"loanAmount" swaggertype:"number"`
	InterestRate    float64         `json:"interestRate"`
	DurationMonths  int             `json:"durationMonths"`
	StartDate       string          `json:"startDate"`
	Summary         SummaryResponse `json:"summary"`
	AccountCredited string          `json:"accountCredited"`
	NewBalance      Money           `json:"newBalance" swaggertype:"number"`
}

type ApplyLoanResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Loan    DisbursedLoan `json:"loan"`
}

func NewDisbursedLoan(d *loan.Disbursement) DisbursedLoan {
	return DisbursedLoan{
		LoanID:          d.Loan.ID,
		LoanAmount:      NewMoney(d.Loan.Principal),
		InterestRate:    d.Loan.InterestRate,
		DurationMonths:  d.Loan.DurationMonths,
		StartDate:       d.Loan.StartDate.Format(dateLayout),
		Summary:         NewSummaryResponse(d.Summary),
		AccountCredited: d.AccountNumber,
		NewBalance:      NewMoney(d.NewBalance),
	}
}

type RepayResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	AmountPaid       Money  `json:"amountPaid" swaggertype:"number"`
	RemainingBalance Money  `json:"remainingBalance" swaggertype:"number"`
	IsFullyPaid      bool   `json:"isFullyPaid"`
	AccountDebited   string `json:"accountDebited"`
}

type SimulationResponse struct {
	Success  bool                    `json:"success"`
	Summary  SummaryResponse         `json:"summary"`
	Schedule []ScheduleEntryResponse `json:"schedule"`
}
