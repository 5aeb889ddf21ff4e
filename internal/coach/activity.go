package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/logger"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

// LogActivity validates, completes and stores an activity log. Food logs
// that carry only a description get an estimated calorie count when an
// estimator is configured. A failed estimate keeps the log with zero calories.
func (s *Service) LogActivity(ctx context.Context, l *models.ActivityLog) error {
	if l == nil {
		return invalidf("log is required")
	}
	profile, err := s.Profile(ctx, l.UserID)
	if err != nil {
		return err
	}
	if err := s.completeLog(l, profile); err != nil {
		return err
	}

	if l.Kind == models.LogKindFood && l.Calories == 0 && strings.TrimSpace(l.Description) != "" && s.estimator != nil {
		est, err := s.estimator.EstimateCalories(ctx, l.Description)
		if err != nil {
			logger.Log.Warn().Err(err).
				Str("user", logger.HashUserID(l.UserID)).
				Str("description", logger.SanitizeText(l.Description)).
				Msg("Calorie estimate unavailable")
		} else {
			l.Calories = est.Calories
		}
	}

	if err := s.logs.Create(ctx, l); err != nil {
		return fmt.Errorf("failed to store activity log: %w", err)
	}

	logger.Log.Info().
		Str("user", logger.HashUserID(l.UserID)).
		Str("kind", string(l.Kind)).
		Str("date", l.Date).
		Msg("Activity logged")
	return nil
}

func (s *Service) completeLog(l *models.ActivityLog, profile *models.Profile) error {
	if !l.Kind.Valid() {
		return invalidf("unknown log_type %q", l.Kind)
	}
	if l.Amount.IsNegative() {
		return invalidf("amount must not be negative")
	}
	if l.Calories < 0 {
		return invalidf("calories must not be negative")
	}

	if strings.TrimSpace(l.Date) == "" {
		l.Date = s.Today().Format(time.DateOnly)
	} else {
		d, ok := solvency.ParseDate(l.Date)
		if !ok {
			return invalidf("date %q is not a date", l.Date)
		}
		l.Date = d.Format(time.DateOnly)
	}

	l.Currency = strings.ToUpper(strings.TrimSpace(l.Currency))
	if l.Currency == "" {
		l.Currency = profile.Currency
	}
	if _, ok := models.SupportedCurrencies[l.Currency]; !ok {
		return invalidf("unsupported currency %q", l.Currency)
	}

	l.Quantity = l.EffectiveQuantity()
	return nil
}

// PayBill records a payment of a recurring expense for today, which removes
// it from the pending bills of the current cycle. A nil amount pays the full
// reserved amount.
func (s *Service) PayBill(ctx context.Context, userID int64, expenseID string, amount *decimal.Decimal) (*models.ActivityLog, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	expense, err := s.expenses.GetByID(ctx, userID, expenseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrExpenseNotFound, expenseID)
	}
	if err != nil {
		return nil, err
	}

	paid := expense.Amount
	if expense.IsVariable {
		paid = expense.MaxAmount
	}
	if amount != nil {
		if amount.IsNegative() {
			return nil, invalidf("amount must not be negative")
		}
		paid = *amount
	}

	l := &models.ActivityLog{
		UserID:           userID,
		Date:             s.Today().Format(time.DateOnly),
		Kind:             models.LogKindExpense,
		Amount:           paid,
		Currency:         profile.Currency,
		Category:         "bills",
		Description:      expense.Name,
		Quantity:         1,
		RelatedExpenseID: expense.ID,
	}
	if err := s.logs.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to store bill payment: %w", err)
	}

	logger.Log.Info().
		Str("user", logger.HashUserID(userID)).
		Str("expense_id", expense.ID).
		Msg("Bill paid")
	return l, nil
}

// CycleLogs returns the logs of the current pay cycle and the cycle itself.
func (s *Service) CycleLogs(ctx context.Context, userID int64) ([]models.ActivityLog, solvency.PayCycle, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, solvency.PayCycle{}, err
	}
	if err := solvency.ValidateProfile(profile); err != nil {
		return nil, solvency.PayCycle{}, err
	}

	cycle := solvency.ResolveCycle(s.Today(), profile.PaydayDay)
	logs, err := s.logs.ListByUserSince(ctx, userID, cycle.Start.Format(time.DateOnly))
	if err != nil {
		return nil, solvency.PayCycle{}, fmt.Errorf("failed to load activity logs: %w", err)
	}
	return logs, cycle, nil
}
