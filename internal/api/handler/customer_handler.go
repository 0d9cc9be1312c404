package handler

import (
	"banking-api/internal/api/handler/dto"
	"banking-api/internal/domain/customer"
	"banking-api/internal/domain/dashboard"
	"log/slog"
	"net/http"
)

type CustomerHandler struct {
	service   customer.CustomerService
	dashboard dashboard.DashboardService
	logger    *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, d dashboard.DashboardService, l *slog.Logger) *CustomerHandler {
	if s == nil || d == nil {
		panic("customer and dashboard services cannot be nil")
	}
	return &CustomerHandler{service: s, dashboard: d, logger: l.With("component", "CustomerHandler")}
}

// GetProfile handles GET /customers/profile
// @Summary Customer profile
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.ProfileEnvelope
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/profile [get]
// @Security BearerAuth
func (h *CustomerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	cust, err := h.service.GetProfile(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.ProfileEnvelope{Success: true, Customer: dto.NewProfileResponse(cust)})
}

// UpdateProfile handles PUT /customers/profile
// @Summary Update profile
// @Description Updates names, phone and address. Email and password are not editable here.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.ProfileEnvelope
// @Failure 400 {object} dto.ErrorResponse "Invalid profile"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/profile [put]
// @Security BearerAuth
func (h *CustomerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	cust, err := h.service.UpdateProfile(r.Context(), customerID, req.ToProfile())
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Profile updated", slog.Int64("customerID", customerID))
	respondJSON(w, http.StatusOK, dto.ProfileEnvelope{
		Success:  true,
		Message:  "Profile updated successfully",
		Customer: dto.NewProfileResponse(cust),
	})
}

// GetDashboard handles GET /customers/dashboard
// @Summary Customer dashboard
// @Description Profile, accounts, total balance, recent transactions and a loans summary.
// @Tags Customers
// @Produce json
// @Success 200 {object} dto.DashboardEnvelope
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/dashboard [get]
// @Security BearerAuth
func (h *CustomerHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	customerID, ok := authenticatedCustomer(w, r)
	if !ok {
		return
	}

	d, err := h.dashboard.Get(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.DashboardEnvelope{Success: true, Dashboard: dto.NewDashboardResponse(d)})
}
