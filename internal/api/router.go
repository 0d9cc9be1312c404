package api

import (
	"banking-api/internal/api/handler"
	mw "banking-api/internal/api/middleware"
	"banking-api/internal/config"
	"banking-api/internal/domain/account"
	"banking-api/internal/domain/customer"
	"banking-api/internal/domain/dashboard"
	"banking-api/internal/domain/loan"
	"banking-api/internal/domain/transaction"
	"log/slog"
	"net/http"
	"time"

	_ "banking-api/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const (
	apiPrefix      = "/api"
	requestTimeout = 60 * time.Second
)

// Services groups the domain services the HTTP layer exposes.
type Services struct {
	Customers    customer.CustomerService
	Accounts     account.AccountService
	Transactions transaction.TransactionService
	Loans        loan.LoanService
	Dashboard    dashboard.DashboardService
}

// Dependencies is everything SetupRouter needs besides configuration.
type Dependencies struct {
	Services
	Tokens      handler.TokenIssuer
	TokenParser mw.TokenParser
	DB          handler.Pinger
	RateLimiter *mw.RateLimiterMiddleware
	Version     string
}

func SetupRouter(deps Dependencies, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, deps.RateLimiter, logger)
	setupMetricsEndpoint(router, cfg, logger)

	health := handler.NewHealthHandler(deps.DB, deps.Version, logger)
	router.Get("/", health.Root)

	authenticated := mw.AuthMiddleware(deps.TokenParser, logger)
	router.Route(apiPrefix, func(r chi.Router) {
		r.Get("/health", health.Health)
		setupAuthRoutes(r, deps, logger)
		setupAccountRoutes(r, deps.Accounts, authenticated, logger)
		setupTransactionRoutes(r, deps.Transactions, authenticated, logger)
		setupLoanRoutes(r, deps.Loans, cfg.Loan.MaxDurationMonths, authenticated, logger)
		setupCustomerRoutes(r, deps.Customers, deps.Dashboard, authenticated, logger)
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, limiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(requestTimeout))
	if limiter != nil {
		router.Use(limiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router chi.Router, deps Dependencies, logger *slog.Logger) {
	h := handler.NewAuthHandler(deps.Customers, deps.Tokens, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/login", h.Login)
	})
}

func setupAccountRoutes(router chi.Router, svc account.AccountService, auth func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewAccountHandler(svc, logger)

	router.Route("/accounts", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.ListAccounts)
		r.Post("/", h.OpenAccount)
		r.Get("/{accountNumber}/balance", h.GetBalance)
	})
}

func setupTransactionRoutes(router chi.Router, svc transaction.TransactionService, auth func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewTransactionHandler(svc, logger)

	router.Route("/transactions", func(r chi.Router) {
		r.Use(auth)
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Post("/transfer", h.Transfer)
		r.Get("/history/{accountNumber}", h.History)
		r.Get("/recent", h.Recent)
	})
}

func setupLoanRoutes(router chi.Router, svc loan.LoanService, maxDurationMonths int, auth func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewLoanHandler(svc, logger).WithMaxDurationMonths(maxDurationMonths)

	router.Route("/loans", func(r chi.Router) {
		r.Post("/simulate", h.Simulate)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.Apply)
			r.Get("/", h.ListLoans)
			r.Get("/{loanID}", h.GetLoan)
			r.Post("/{loanID}/repay", h.Repay)
		})
	})
}

func setupCustomerRoutes(router chi.Router, svc customer.CustomerService, dash dashboard.DashboardService, auth func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, dash, logger)

	router.Route("/customers", func(r chi.Router) {
		r.Use(auth)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/dashboard", h.GetDashboard)
	})
}
