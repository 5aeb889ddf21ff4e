package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/leverage/internal/logger"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

// SaveProfile validates and stores a profile together with its user.
// Unset preferences take their defaults.
func (s *Service) SaveProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	if user == nil || profile == nil {
		return invalidf("user and profile are required")
	}
	profile.UserID = user.ID

	profile.Currency = strings.ToUpper(strings.TrimSpace(profile.Currency))
	if profile.Currency == "" {
		profile.Currency = models.DefaultCurrency
	}
	if _, ok := models.SupportedCurrencies[profile.Currency]; !ok {
		return invalidf("unsupported currency %q", profile.Currency)
	}

	prefs := &profile.Preferences
	if prefs.WeekendMultiplier == 0 && prefs.StrategyMode == "" && !prefs.EnableWindfall && prefs.MinViableSDS.IsZero() {
		*prefs = models.DefaultPreferences()
	}
	if prefs.WeekendMultiplier == 0 {
		prefs.WeekendMultiplier = models.DefaultWeekendMultiplier
	}
	prefs.StrategyMode = strings.ToLower(string(solvency.ParseStrategyMode(prefs.StrategyMode)))

	if err := solvency.ValidateProfile(profile); err != nil {
		return err
	}
	if err := s.profiles.SaveProfile(ctx, user, profile); err != nil {
		return err
	}

	logger.Log.Info().Str("user", logger.HashUserID(user.ID)).Msg("Profile saved")
	return nil
}

// AddRecurringExpense validates and stores a recurring expense for a user
// who has a profile.
func (s *Service) AddRecurringExpense(ctx context.Context, e *models.RecurringExpense) error {
	if err := solvency.ValidateExpense(e); err != nil {
		return err
	}
	if _, err := s.Profile(ctx, e.UserID); err != nil {
		return err
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		return fmt.Errorf("failed to store recurring expense: %w", err)
	}
	return nil
}

// ListRecurringExpenses returns the recurring expenses of a user.
func (s *Service) ListRecurringExpenses(ctx context.Context, userID int64) ([]models.RecurringExpense, error) {
	expenses, err := s.expenses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring expenses: %w", err)
	}
	return expenses, nil
}

// RemoveRecurringExpense deletes a recurring expense. Its past payments stay
// in the log, unlinked.
func (s *Service) RemoveRecurringExpense(ctx context.Context, userID int64, id string) error {
	err := s.expenses.Delete(ctx, userID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrExpenseNotFound, id)
	}
	return err
}
