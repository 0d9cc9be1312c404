package customer

import (
	"banking-api/internal/pkg/apperrors"
	"net/mail"
	"strings"
	"time"
)

const (
	RoleCustomer      = "Customer"
	MinPasswordLength = 6
)

type Customer struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        *string
	Address      *string
	Role         string
	Active       bool
	CreatedAt    time.Time
}

type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     *string
	Address   *string
}

// Profile holds the customer-editable fields. Phone and address are replaced
// as given, so nil clears them.
type Profile struct {
	FirstName string
	LastName  string
	Phone     *string
	Address   *string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *Registration) Normalize() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = NormalizeEmail(r.Email)
	r.Phone = trimOptional(r.Phone)
	r.Address = trimOptional(r.Address)

	if r.FirstName == "" {
		return apperrors.NewValidationError("firstName", "first name is required")
	}
	if r.LastName == "" {
		return apperrors.NewValidationError("lastName", "last name is required")
	}
	if !ValidEmail(r.Email) {
		return apperrors.NewValidationError("email", "valid email is required")
	}
	if len(r.Password) < MinPasswordLength {
		return apperrors.NewValidationError("password", "password must be at least 6 characters")
	}
	return nil
}

func (p *Profile) Normalize() error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = trimOptional(p.Phone)
	p.Address = trimOptional(p.Address)

	if p.FirstName == "" {
		return apperrors.NewValidationError("firstName", "first name is required")
	}
	if p.LastName == "" {
		return apperrors.NewValidationError("lastName", "last name is required")
	}
	return nil
}

func (c *Customer) Apply(p Profile) {
	c.FirstName = p.FirstName
	c.LastName = p.LastName
	c.Phone = p.Phone
	c.Address = p.Address
}

func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

// trimOptional trims s and maps blank values to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
