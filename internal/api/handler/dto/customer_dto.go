package dto

import (
	"banking-api/internal/domain/customer"
	"banking-api/internal/domain/dashboard"
	"time"
)

type UpdateProfileRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

func (r *UpdateProfileRequest) ToProfile() customer.Profile {
	return customer.Profile{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Address:   r.Address,
	}
}

type ProfileResponse struct {
	CustomerID  int64     `json:"customerID"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	UserRole    string    `json:"userRole"`
	DateCreated time.Time `json:"dateCreated"`
}

func NewProfileResponse(c *customer.Customer) ProfileResponse {
	return ProfileResponse{
		CustomerID:  c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		UserRole:    c.Role,
		DateCreated: c.CreatedAt,
	}
}

type ProfileEnvelope struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message,omitempty"`
	Customer ProfileResponse `json:"customer"`
}

type LoansSummaryResponse struct {
	TotalLoans       int   `json:"totalLoans"`
	ActiveLoans      int   `json:"activeLoans"`
	OverdueLoans     int   `json:"overdueLoans"`
	PaidOffLoans     int   `json:"paidOffLoans"`
	TotalBorrowed    Money `json:"totalBorrowed" swaggertype:"number"`
	TotalRepaid      Money `json:"totalRepaid" swaggertype:"number"`
	TotalOutstanding Money `json:"totalOutstanding" swaggertype:"number"`
}

type DashboardResponse struct {
	Customer           ProfileResponse       `json:"customer"`
	Accounts           []AccountResponse     `json:"accounts"`
	TotalBalance       Money                 `json:"totalBalance" swaggertype:"number"`
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
	LoansSummary       LoansSummaryResponse  `json:"loansSummary"`
}

type DashboardEnvelope struct {
	Success   bool              `json:"success"`
	Dashboard DashboardResponse `json:"dashboard"`
}

func NewDashboardResponse(d *dashboard.Dashboard) DashboardResponse {
	return DashboardResponse{
		Customer:           NewProfileResponse(d.Customer),
		Accounts:           NewAccountResponses(d.Accounts),
		TotalBalance:       NewMoney(d.TotalBalance),
		RecentTransactions: NewTransactionResponses(d.RecentTransactions),
		LoansSummary: LoansSummaryResponse{
			TotalLoans:       d.Loans.Count,
			ActiveLoans:      d.Loans.Active,
			OverdueLoans:     d.Loans.Overdue,
			PaidOffLoans:     d.Loans.PaidOff,
			TotalBorrowed:    NewMoney(d.Loans.TotalBorrowed),
			TotalRepaid:      NewMoney(d.Loans.TotalRepaid),
			TotalOutstanding: NewMoney(d.Loans.Outstanding),
		},
	}
}
