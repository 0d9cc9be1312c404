package main

import (
	_ "banking-api/docs"
	"banking-api/internal/api"
	"banking-api/internal/api/middleware"
	"banking-api/internal/batch"
	"banking-api/internal/config"
	"banking-api/internal/domain/account"
	"banking-api/internal/domain/customer"
	"banking-api/internal/domain/dashboard"
	"banking-api/internal/domain/loan"
	"banking-api/internal/domain/transaction"
	"banking-api/internal/event"
	"banking-api/internal/infrastructure/cache"
	"banking-api/internal/infrastructure/database/postgres"
	"banking-api/internal/infrastructure/logging"
	"banking-api/internal/pkg/token"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	appVersion         = "1.0.0"
	loanStandingJob    = "LoanStanding"
	rabbitMQRetryCount = 5
)

// @title Banking API
// @version 1.0
// @description Customer accounts, money movements and amortized loans.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)
	runMigrations(cfg, logger)

	rabbitMQConn, err := setupRabbitMQ(cfg, logger)
	if err != nil {
		logger.Warn("Continuing without RabbitMQ; domain events will not be published", slog.Any("error", err))
	}
	redisClient := initializeRedisClient(cfg, logger)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger)
	issuer := initializeTokenIssuer(cfg, logger)

	publisher := initializePublisher(rabbitMQConn, cfg, logger)
	services, loanRepo := initializeServices(dbPool, publisher, redisClient, cfg, logger)

	standingJob := batch.NewLoanStandingJob(loanRepo, publisher, cfg.Batch.Workers, logger)
	cronScheduler := startBatchJobs(cfg, logger, standingJob)

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go rateLimiter.RunSweeper(sweeperCtx)

	router := api.SetupRouter(api.Dependencies{
		Services:    services,
		Tokens:      issuer,
		TokenParser: issuer,
		DB:          dbPool,
		RateLimiter: rateLimiter,
		Version:     appVersion,
	}, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
	closeConnections(rabbitMQConn, redisClient, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed(), "version", appVersion)

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func runMigrations(cfg *config.Config, logger *slog.Logger) {
	if !cfg.Database.AutoMigrate {
		logger.Info("Automatic migrations disabled; assuming the schema is current.")
		return
	}
	if err := postgres.RunMigrations(cfg.Database.URL, logger); err != nil {
		logger.Error("Failed to apply database migrations", "error", err)
		os.Exit(1)
	}
}

func initializeRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Info("Redis address not configured; using in-memory rate limiting and no simulation cache.")
		return nil
	}
	client, err := cache.NewClient(context.Background(), cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable; falling back to in-memory rate limiting", slog.Any("error", err))
		return nil
	}
	return client
}

func initializeTokenIssuer(cfg *config.Config, logger *slog.Logger) *token.Issuer {
	issuer, err := token.NewIssuer(cfg.Server.Auth.JWTSecret, cfg.Server.Auth.TokenTTL)
	if err != nil {
		logger.Error("Failed to initialize token issuer; set server.auth.jwtSecret", "error", err)
		os.Exit(1)
	}
	return issuer
}

func initializePublisher(conn *amqp.Connection, cfg *config.Config, logger *slog.Logger) event.EventPublisher {
	if conn == nil {
		return event.NewNoopPublisher(logger)
	}
	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Warn("Failed to set up RabbitMQ publisher; events will be dropped", slog.Any("error", err))
		return event.NewNoopPublisher(logger)
	}
	return publisher
}

func initializeServices(dbPool *pgxpool.Pool, publisher event.EventPublisher, redisClient *redis.Client, cfg *config.Config, logger *slog.Logger) (api.Services, *postgres.LoanRepository) {
	logger.Info("Initializing application components...")
	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	accountRepo := postgres.NewAccountRepository(dbPool, logger)
	ledgerRepo := postgres.NewLedgerRepository(dbPool, logger)
	loanRepo := postgres.NewLoanRepository(dbPool, logger)

	var simulations loan.SimulationCache
	if redisClient != nil {
		simulations = cache.NewSimulationCache(redisClient, cfg.Loan.SimulationCacheTTL, logger)
	}

	return api.Services{
		Customers:    customer.NewCustomerService(customerRepo, accountRepo, publisher, logger),
		Accounts:     account.NewAccountService(accountRepo, ledgerRepo, logger),
		Transactions: transaction.NewTransactionService(accountRepo, ledgerRepo, publisher, logger),
		Loans:        loan.NewLoanService(loanRepo, accountRepo, ledgerRepo, publisher, simulations, logger),
		Dashboard:    dashboard.NewDashboardService(customerRepo, accountRepo, ledgerRepo, loanRepo, logger),
	}, loanRepo
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func closeConnections(rabbitMQConn *amqp.Connection, redisClient *redis.Client, logger *slog.Logger) {
	if rabbitMQConn != nil {
		if err := rabbitMQConn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			logger.Warn("Failed to close RabbitMQ connection", slog.Any("error", err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis client", slog.Any("error", err))
		}
	}
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, job batch.Job) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	// A bad schedule leaves the API running without the batch job.
	_, _ = batch.Schedule(c, loanStandingJob, cfg.Batch.LoanStandingSchedule, cfg.Batch.LoanStandingTimeout, job, logger)

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func connectRabbitMQ(uri string, logger *slog.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := 1; i <= rabbitMQRetryCount; i++ {
		conn, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ")

			go func() {
				blockChan := conn.NotifyBlocked(make(chan amqp.Blocking))
				closeChan := conn.NotifyClose(make(chan *amqp.Error, 1))

				select {
				case b := <-blockChan:
					logger.Warn("RabbitMQ Connection Blocked", "reason", b.Reason)
				case e := <-closeChan:
					if e != nil {
						logger.Error("RabbitMQ Connection Closed", slog.Any("error", e))
					}
				}
			}()

			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying...",
			slog.Int("attempt", i),
			slog.Int("max_attempts", rabbitMQRetryCount),
			slog.Any("error", err),
		)
		time.Sleep(time.Duration(i*2) * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", rabbitMQRetryCount, err)
}

// rabbitMQURI builds the broker URI from configuration. An empty host means
// events are disabled.
func rabbitMQURI(cfg config.RabbitMQConfig) (string, error) {
	if cfg.Host == "" {
		return "", errors.New("RabbitMQ host is not configured")
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		return "", errors.New("RabbitMQ username and password must be provided together")
	}

	port := cfg.Port
	if port == 0 {
		port = 5672
	}
	if cfg.Username != "" {
		return fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.Username, cfg.Password, cfg.Host, port), nil
	}
	return fmt.Sprintf("amqp://%s:%d/", cfg.Host, port), nil
}

func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) (*amqp.Connection, error) {
	uri, err := rabbitMQURI(cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}

	conn, err := connectRabbitMQ(uri, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		return nil, err
	}
	return conn, nil
}
