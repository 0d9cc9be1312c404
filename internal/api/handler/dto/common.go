package dto

import (
	"banking-api/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount rendered as a JSON number with two decimals.
type Money decimal.Decimal

func NewMoney(v float64) Money {
	return Money(decimal.NewFromFloat(v).Round(2))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

func (m Money) Float64() float64 {
	return decimal.Decimal(m).InexactFloat64()
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// validateAmount requires a strictly positive amount with at most two
// decimal places.
func validateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError(field, field+" must be greater than 0")
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.NewValidationError(field, field+" must not have more than two decimal places")
	}
	return nil
}
