package account

import (
	"banking-api/internal/pkg/apperrors"
	"fmt"
	"time"
)

type Type string

const (
	TypeSavings Type = "Savings"
	TypeCurrent Type = "Current"
)

type Account struct {
	ID         int64
	CustomerID int64
	Number     string
	Type       Type
	Balance    float64
	OpenedAt   time.Time
	Active     bool
}

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeSavings, TypeCurrent:
		return Type(s), nil
	default:
		return "", apperrors.NewValidationError("accountType", "invalid account type, must be Savings or Current")
	}
}

// NewAccountNumber builds ACC<unix millis><4 digit suffix>.
func NewAccountNumber(now time.Time, suffix int) string {
	return fmt.Sprintf("ACC%d%04d", now.UnixMilli(), suffix%10000)
}

func NewAccount(customerID int64, number string, t Type) *Account {
	return &Account{
		CustomerID: customerID,
		Number:     number,
		Type:       t,
		Active:     true,
	}
}

func TotalBalance(accounts []*Account) float64 {
	var total float64
	for _, a := range accounts {
		total += a.Balance
	}
	return total
}
