// Package coach ties persistence, currency conversion and calorie
// estimation to the solvency engine.
package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/leverage/internal/exchange"
	"gitlab.com/yelinaung/leverage/internal/gemini"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
	"gitlab.com/yelinaung/leverage/internal/wealth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "gitlab.com/yelinaung/leverage/internal/coach"

var (
	// ErrProfileNotFound is returned when a user has not saved a profile yet.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrExpenseNotFound is returned for unknown or foreign recurring expenses.
	ErrExpenseNotFound = errors.New("recurring expense not found")
)

// UserStore persists users.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// ProfileStore persists profiles.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	SaveProfile(ctx context.Context, user *models.User, profile *models.Profile) error
}

// ExpenseStore persists recurring expenses.
type ExpenseStore interface {
	Create(ctx context.Context, e *models.RecurringExpense) error
	GetByID(ctx context.Context, userID int64, id string) (*models.RecurringExpense, error)
	ListByUser(ctx context.Context, userID int64) ([]models.RecurringExpense, error)
	Delete(ctx context.Context, userID int64, id string) error
}

// LogStore persists activity logs.
type LogStore interface {
	Create(ctx context.Context, l *models.ActivityLog) error
	ListByUserSince(ctx context.Context, userID int64, since string) ([]models.ActivityLog, error)
}

// CalorieEstimator guesses the calories of a meal description.
type CalorieEstimator interface {
	EstimateCalories(ctx context.Context, description string) (gemini.CalorieEstimate, error)
}

// Deps are the collaborators of a Service. Converter and Estimator are optional.
type Deps struct {
	Users     UserStore
	Profiles  ProfileStore
	Expenses  ExpenseStore
	Logs      LogStore
	Converter exchange.Converter
	Estimator CalorieEstimator
	Engine    *solvency.Engine
	Wealth    *wealth.Calculator
	Location  *time.Location
	Now       func() time.Time
}

// Service is the application layer shared by the HTTP API and the bot.
type Service struct {
	users     UserStore
	profiles  ProfileStore
	expenses  ExpenseStore
	logs      LogStore
	converter exchange.Converter
	estimator CalorieEstimator
	engine    *solvency.Engine
	wealth    *wealth.Calculator
	loc       *time.Location
	now       func() time.Time

	tracer       trace.Tracer
	calculations metric.Int64Counter
	sdsHistogram metric.Float64Histogram
}

// New creates a Service. Stores are required; everything else has a default.
func New(d Deps) (*Service, error) {
	if d.Users == nil || d.Profiles == nil || d.Expenses == nil || d.Logs == nil {
		return nil, errors.New("coach: all stores are required")
	}
	if d.Engine == nil {
		d.Engine = solvency.NewEngine(true)
	}
	if d.Wealth == nil {
		d.Wealth = &wealth.Calculator{AnnualRate: wealth.DefaultAnnualRate}
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	meter := otel.Meter(instrumentationName)
	calculations, err := meter.Int64Counter("leverage.budget.calculations",
		metric.WithDescription("Solvency calculations by outcome status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create calculations counter: %w", err)
	}
	sdsHistogram, err := meter.Float64Histogram("leverage.budget.sds",
		metric.WithDescription("Safe daily spend handed out"))
	if err != nil {
		return nil, fmt.Errorf("failed to create sds histogram: %w", err)
	}

	return &Service{
		users:        d.Users,
		profiles:     d.Profiles,
		expenses:     d.Expenses,
		logs:         d.Logs,
		converter:    d.Converter,
		estimator:    d.Estimator,
		engine:       d.Engine,
		wealth:       d.Wealth,
		loc:          d.Location,
		now:          d.Now,
		tracer:       otel.Tracer(instrumentationName),
		calculations: calculations,
		sdsHistogram: sdsHistogram,
	}, nil
}

// Today is the current calendar day in the service time zone.
func (s *Service) Today() time.Time {
	return solvency.Day(s.now().In(s.loc))
}

// Users returns every user that can receive a budget.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// Profile loads the profile of userID.
func (s *Service) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", ErrProfileNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", solvency.ErrInvalidInput, fmt.Sprintf(format, args...))
}
