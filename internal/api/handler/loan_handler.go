package handler

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/domain/loan"
	"fmt"
	"log/slog"
	"net/http"
)

const includeSchedule = "schedule"

type LoanHandler struct {
	service           loan.LoanService
	maxDurationMonths int
	logger            *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	return &LoanHandler{
		service:           s,
		maxDurationMonths: loan.DefaultMaxDurationMonths,
		logger:            l.With("component", "LoanHandler"),
	}
}

// WithMaxDurationMonths caps the loan term accepted by Apply and Simulate.
// Non-positive values keep the default.
func (h *LoanHandler) WithMaxDurationMonths(months int) *LoanHandler {
	if months > 0 {
		h.maxDurationMonths = months
	}
	return h
}

// Apply handles POST /loans
// @Summary Apply for a loan
// @Description Approves the loan and credits the principal to the customer's primary account.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanTermsRequest true "Loan terms"
// @Success 201 {object} dto.ApplyLoanResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid loan terms"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "No active account to credit"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	var req dto.LoanTermsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.ValidateWithin(h.maxDurationMonths); err != nil {
		respondError(w, err)
		return
	}

	disbursement, err := h.service.Apply(r.Context(), customerID,
		req.LoanAmount.InexactFloat64(), req.InterestRate.InexactFloat64(), req.DurationMonths)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan disbursed",
		slog.Int64("customerID", customerID),
		slog.Int64("loanID", disbursement.Loan.ID),
		slog.String("accountNumber", disbursement.AccountNumber))

	respondJSON(w, http.StatusCreated, dto.ApplyLoanResponse{
		Success: true,
		Message: fmt.Sprintf("Loan approved! %s has been credited to account %s",
			req.LoanAmount.StringFixed(2), disbursement.AccountNumber),
		Loan: dto.NewDisbursedLoan(disbursement),
	})
}

// ListLoans handles GET /loans
// @Summary List loans
// @Description Every loan of the customer with its derived payment figures and standing.
// @Tags Loans
// @Produce json
// @Success 200 {object} dto.LoansResponse
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	loans, err := h.service.ListLoans(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := dto.LoansResponse{Success: true, Loans: make([]dto.LoanResponse, len(loans))}
	for i, d := range loans {
		resp.Loans[i] = dto.NewLoanResponse(d)
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetLoan handles GET /loans/{loanID}
// @Summary Loan detail
// @Description Derived figures and repayment history. Pass include=schedule for the amortization schedule.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param include query string false "Set to 'schedule' to include the amortization schedule"
// @Success 200 {object} dto.LoanDetailResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	loanID, err := getInt64URLParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	details, err := h.service.GetLoan(r.Context(), customerID, loanID, r.URL.Query().Get("include") == includeSchedule)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.LoanDetailResponse{Success: true, Loan: dto.NewLoanResponse(details)})
}

// Repay handles POST /loans/{loanID}/repay
// @Summary Repay a loan
// @Description Debits the customer's primary account. The amount may not exceed the remaining balance.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.RepayRequest true "Repayment amount"
// @Success 200 {object} dto.RepayResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid amount, amount exceeds remaining balance, loan already paid or insufficient funds"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/repay [post]
// @Security BearerAuth
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	loanID, err := getInt64URLParam(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.RepayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.Repay(r.Context(), customerID, loanID, req.Amount.InexactFloat64())
	if err != nil {
		respondError(w, err)
		return
	}

	message := "Repayment successful"
	if result.IsFullyPaid {
		message = "Repayment successful. The loan is now fully paid"
	}
	respondJSON(w, http.StatusOK, dto.RepayResponse{
		Success:          true,
		Message:          message,
		AmountPaid:       dto.NewMoney(result.Repayment.Amount),
		RemainingBalance: dto.NewMoney(max(result.RemainingBalance, 0)),
		IsFullyPaid:      result.IsFullyPaid,
		AccountDebited:   result.AccountNumber,
	})
}

// Simulate handles POST /loans/simulate
// @Summary Simulate a loan
// @Description Computes the monthly payment and full amortization schedule without creating anything.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanTermsRequest true "Loan terms"
// @Success 200 {object} dto.SimulationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid loan terms"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/simulate [post]
func (h *LoanHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req dto.LoanTermsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.ValidateWithin(h.maxDurationMonths); err != nil {
		respondError(w, err)
		return
	}

	sim, err := h.service.Simulate(r.Context(),
		req.LoanAmount.InexactFloat64(), req.InterestRate.InexactFloat64(), req.DurationMonths)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.SimulationResponse{
		Success:  true,
		Summary:  dto.NewSummaryResponse(sim.Summary),
		Schedule: dto.NewScheduleResponse(sim.Schedule),
	})
}
