package customer

import (
	"banking-api/internal/domain/account"
	"banking-api/internal/event"
	"banking-api/internal/infrastructure/monitoring"
	"banking-api/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type CustomerService interface {
	SignUp(ctx context.Context, reg Registration) (*Customer, *account.Account, error)
	Authenticate(ctx context.Context, email, password string) (*Customer, error)
	GetProfile(ctx context.Context, customerID int64) (*Customer, error)
	UpdateProfile(ctx context.Context, customerID int64, profile Profile) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo     CustomerRepository
	accounts account.Repository
	pub      event.EventPublisher
	logger   *slog.Logger
	hashCost int
	numberFn func() string
}

func NewCustomerService(repo CustomerRepository, accounts account.Repository, pub event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil || accounts == nil {
		panic("customer and account repositories cannot be nil")
	}
	if pub == nil {
		logger.Warn("No event publisher provided to NewCustomerService, events will be dropped")
		pub = event.NewNoopPublisher(logger)
	}
	return &customerService{
		repo:     repo,
		accounts: accounts,
		pub:      pub,
		logger:   logger.With(slog.String("component", "customerService")),
		hashCost: bcrypt.DefaultCost,
		numberFn: account.GenerateNumber,
	}
}

func (s *customerService) SignUp(ctx context.Context, reg Registration) (cust *Customer, acc *account.Account, err error) {
	if err := reg.Normalize(); err != nil {
		s.logger.WarnContext(ctx, "Signup validation failed", slog.Any("error", err))
		return nil, nil, err
	}
	logCtx := s.logger.With(slog.String("email", reg.Email))
	logCtx.InfoContext(ctx, "Attempting to sign up customer")

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.hashCost)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		return nil, nil, fmt.Errorf("%w: could not hash password", apperrors.ErrInternalServer)
	}

	cust = &Customer{
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        reg.Email,
		PasswordHash: string(hash),
		Phone:        reg.Phone,
		Address:      reg.Address,
		Role:         RoleCustomer,
		Active:       true,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	if err = s.repo.CreateInTx(ctx, tx, cust); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logCtx.WarnContext(ctx, "Email already registered")
			return nil, nil, fmt.Errorf("%w: user already exists with this email", apperrors.ErrAlreadyExists)
		}
		logCtx.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	acc = account.NewAccount(cust.ID, s.numberFn(), account.TypeSavings)
	if err = s.accounts.CreateInTx(ctx, tx, acc); err != nil {
		logCtx.ErrorContext(ctx, "Failed to open default account", slog.Any("error", err))
		return nil, nil, fmt.Errorf("failed to open default account: %w", err)
	}
	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, nil, fmt.Errorf("could not commit signup: %w", err)
	}

	monitoring.RecordCustomerCreated()
	logCtx.InfoContext(ctx, "Customer signed up", slog.Int64("customerID", cust.ID), slog.String("accountNumber", acc.Number))

	if pubErr := s.pub.PublishCustomerCreated(ctx, event.CustomerCreatedEvent{
		CustomerID:    cust.ID,
		Email:         cust.Email,
		FirstName:     cust.FirstName,
		LastName:      cust.LastName,
		AccountNumber: acc.Number,
		Timestamp:     time.Now(),
	}); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}
	return cust, acc, nil
}

func (s *customerService) Authenticate(ctx context.Context, email, password string) (*Customer, error) {
	email = NormalizeEmail(email)
	cust, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.InfoContext(ctx, "Login attempt for unknown email")
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "Repository error during login", slog.Any("error", err))
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cust.PasswordHash), []byte(password)); err != nil {
		s.logger.InfoContext(ctx, "Login attempt with wrong password", slog.Int64("customerID", cust.ID))
		return nil, apperrors.ErrInvalidCredentials
	}
	if !cust.Active {
		s.logger.WarnContext(ctx, "Login attempt for inactive customer", slog.Int64("customerID", cust.ID))
		return nil, fmt.Errorf("%w: account is deactivated", apperrors.ErrForbidden)
	}
	return cust, nil
}

func (s *customerService) GetProfile(ctx context.Context, customerID int64) (*Customer, error) {
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository", slog.Int64("customerID", customerID))
			return nil, fmt.Errorf("%w: customer %d not found", apperrors.ErrNotFound, customerID)
		}
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	return cust, nil
}

func (s *customerService) UpdateProfile(ctx context.Context, customerID int64, profile Profile) (*Customer, error) {
	if err := profile.Normalize(); err != nil {
		return nil, err
	}
	cust, err := s.GetProfile(ctx, customerID)
	if err != nil {
		return nil, err
	}
	cust.Apply(profile)
	if err := s.repo.UpdateProfile(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to update profile", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.logger.InfoContext(ctx, "Profile updated", slog.Int64("customerID", customerID))
	return cust, nil
}
