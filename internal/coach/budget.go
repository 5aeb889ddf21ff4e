package coach

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/yelinaung/leverage/internal/exchange"
	"gitlab.com/yelinaung/leverage/internal/logger"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Input is a self-contained solvency request. Today is YYYY-MM-DD and
// defaults to the current day.
type Input struct {
	Profile  *models.Profile           `json:"profile"`
	Expenses []models.RecurringExpense `json:"recurring_expenses"`
	Logs     []models.ActivityLog      `json:"logs"`
	Today    string                    `json:"today,omitempty"`
}

// Budget computes today's solvency result for a stored user.
func (s *Service) Budget(ctx context.Context, userID int64) (solvency.SolvencyResult, error) {
	ctx, span := s.tracer.Start(ctx, "coach.Budget",
		trace.WithAttributes(attribute.String("user.hash", logger.HashUserID(userID))))
	defer span.End()

	res, err := s.budget(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "budget failed")
		return solvency.SolvencyResult{}, err
	}
	s.record(ctx, span, res, "stored")
	return res, nil
}

func (s *Service) budget(ctx context.Context, userID int64) (solvency.SolvencyResult, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return solvency.SolvencyResult{}, err
	}
	if err := solvency.ValidateProfile(profile); err != nil {
		return solvency.SolvencyResult{}, err
	}

	today := s.Today()
	cycle := solvency.ResolveCycle(today, profile.PaydayDay)

	expenses, err := s.expenses.ListByUser(ctx, userID)
	if err != nil {
		return solvency.SolvencyResult{}, fmt.Errorf("failed to load recurring expenses: %w", err)
	}
	logs, err := s.logs.ListByUserSince(ctx, userID, cycle.Start.Format(time.DateOnly))
	if err != nil {
		return solvency.SolvencyResult{}, fmt.Errorf("failed to load activity logs: %w", err)
	}

	return s.calculate(ctx, profile, expenses, logs, today)
}

// Evaluate runs the engine on a caller-supplied payload without touching storage.
func (s *Service) Evaluate(ctx context.Context, in Input) (solvency.SolvencyResult, error) {
	ctx, span := s.tracer.Start(ctx, "coach.Evaluate")
	defer span.End()

	today := s.Today()
	if in.Today != "" {
		d, ok := solvency.ParseDate(in.Today)
		if !ok {
			err := invalidf("today %q is not a date", in.Today)
			span.RecordError(err)
			return solvency.SolvencyResult{}, err
		}
		today = d
	}

	res, err := s.calculate(ctx, in.Profile, in.Expenses, in.Logs, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluate failed")
		return solvency.SolvencyResult{}, err
	}
	s.record(ctx, span, res, "stateless")
	return res, nil
}

func (s *Service) calculate(
	ctx context.Context,
	profile *models.Profile,
	expenses []models.RecurringExpense,
	logs []models.ActivityLog,
	today time.Time,
) (solvency.SolvencyResult, error) {
	if profile == nil {
		return solvency.SolvencyResult{}, invalidf("profile is required")
	}

	normalized, err := exchange.NormalizeLogs(ctx, s.converter, logs, profile.Currency)
	if err != nil {
		return solvency.SolvencyResult{}, err
	}
	return s.engine.Calculate(profile, expenses, normalized, today)
}

func (s *Service) record(ctx context.Context, span trace.Span, res solvency.SolvencyResult, source string) {
	fin := res.Financial
	sds := fin.SDSToday.InexactFloat64()

	span.SetAttributes(
		attribute.String("budget.status", string(fin.Status)),
		attribute.String("budget.mode", string(fin.ActiveMode)),
		attribute.Float64("budget.sds", sds),
		attribute.Int("budget.days_until_payday", fin.DaysUntilPayday),
	)

	attrs := metric.WithAttributes(
		attribute.String("status", string(fin.Status)),
		attribute.String("source", source),
	)
	s.calculations.Add(ctx, 1, attrs)
	s.sdsHistogram.Record(ctx, sds, attrs)

	logger.Log.Debug().
		Str("status", string(fin.Status)).
		Str("mode", string(fin.ActiveMode)).
		Str("source", source).
		Str("bio_status", res.Biological.Status).
		Msg("Budget computed")
}
