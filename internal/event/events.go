package event

import (
	"strings"
	"time"
)

const (
	RoutingKeyCustomerCreated = "customer.created"
	RoutingKeyLoanDisbursed   = "loan.disbursed"
	RoutingKeyLoanRepaid      = "loan.repaid"
	RoutingKeyLoanOverdue     = "loan.overdue"

	routingKeyTransactionPrefix = "transaction."
)

type CustomerCreatedEvent struct {
	CustomerID    int64     `json:"customerId"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	AccountNumber string    `json:"accountNumber"`
	Timestamp     time.Time `json:"timestamp"`
}

type TransactionCompletedEvent struct {
	TransactionID int64     `json:"transactionId"`
	CustomerID    int64     `json:"customerId"`
	Type          string    `json:"type"`
	FromAccount   *string   `json:"fromAccount,omitempty"`
	ToAccount     *string   `json:"toAccount,omitempty"`
	Amount        float64   `json:"amount"`
	NewBalance    float64   `json:"newBalance"`
	Timestamp     time.Time `json:"timestamp"`
}

// RoutingKey maps Withdrawal to transaction.withdrawal and so on.
func (e TransactionCompletedEvent) RoutingKey() string {
	return routingKeyTransactionPrefix + strings.ToLower(e.Type)
}

type LoanDisbursedEvent struct {
	LoanID          int64     `json:"loanId"`
	CustomerID      int64     `json:"customerId"`
	Principal       float64   `json:"principal"`
	InterestRate    float64   `json:"interestRate"`
	DurationMonths  int       `json:"durationMonths"`
	MonthlyPayment  float64   `json:"monthlyPayment"`
	AccountCredited string    `json:"accountCredited"`
	Timestamp       time.Time `json:"timestamp"`
}

type LoanRepaidEvent struct {
	LoanID           int64     `json:"loanId"`
	CustomerID       int64     `json:"customerId"`
	Amount           float64   `json:"amount"`
	RemainingBalance float64   `json:"remainingBalance"`
	IsFullyPaid      bool      `json:"isFullyPaid"`
	AccountDebited   string    `json:"accountDebited"`
	Timestamp        time.Time `json:"timestamp"`
}

type LoanOverdueEvent struct {
	LoanID         int64     `json:"loanId"`
	CustomerID     int64     `json:"customerId"`
	ExpectedPaid   float64   `json:"expectedPaid"`
	TotalPaid      float64   `json:"totalPaid"`
	AmountOverdue  float64   `json:"amountOverdue"`
	MonthsElapsed  int       `json:"monthsElapsed"`
	DurationMonths int       `json:"durationMonths"`
	Timestamp      time.Time `json:"timestamp"`
}
