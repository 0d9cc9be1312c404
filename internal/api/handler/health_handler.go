package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type BannerResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type HealthHandler struct {
	db      Pinger
	version string
	logger  *slog.Logger
	now     func() time.Time
}

func NewHealthHandler(db Pinger, version string, l *slog.Logger) *HealthHandler {
	if db == nil {
		panic("database pinger cannot be nil")
	}
	return &HealthHandler{db: db, version: version, logger: l.With("component", "HealthHandler"), now: time.Now}
}

// Health handles GET /health
// @Summary Health check
// @Description Pings the database.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(r.Context(), "Database health check failed", slog.Any("error", err))
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Success:   false,
			Message:   "Database connection failed",
			Timestamp: h.now().UTC(),
		})
		return
	}
	respondJSON(w, http.StatusOK, HealthResponse{
		Success:   true,
		Message:   "Server and database are healthy",
		Timestamp: h.now().UTC(),
	})
}

// Root lists the API surface.
func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, BannerResponse{
		Message: "Banking API",
		Version: h.version,
		Endpoints: map[string]string{
			"auth":         "/api/auth",
			"accounts":     "/api/accounts",
			"transactions": "/api/transactions",
			"loans":        "/api/loans",
			"customers":    "/api/customers",
			"health":       "/api/health",
			"docs":         "/swagger/index.html",
			"metrics":      "/metrics",
		},
	})
}
