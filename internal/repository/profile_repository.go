package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/leverage/internal/database"
	"gitlab.com/yelinaung/leverage/internal/models"
)

// ProfileRepository handles profile database operations.
type ProfileRepository struct {
	db database.PGXDB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db database.PGXDB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert creates or replaces the profile of p.UserID.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	if p.Currency == "" {
		p.Currency = models.DefaultCurrency
	}
	prefs := p.Preferences
	err := r.db.QueryRow(ctx, `
		INSERT INTO profiles (
			user_id, liquid_balance, monthly_income, payday_day, emergency_target,
			tdee_kcal, weight_kg, height_cm, age, sex, activity_level,
			body_fat_percent, avg_daily_steps, currency,
			weekend_multiplier, min_viable_sds, strategy_mode, enable_windfall
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (user_id) DO UPDATE SET
			liquid_balance = EXCLUDED.liquid_balance,
			monthly_income = EXCLUDED.monthly_income,
			payday_day = EXCLUDED.payday_day,
			emergency_target = EXCLUDED.emergency_target,
			tdee_kcal = EXCLUDED.tdee_kcal,
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			age = EXCLUDED.age,
			sex = EXCLUDED.sex,
			activity_level = EXCLUDED.activity_level,
			body_fat_percent = EXCLUDED.body_fat_percent,
			avg_daily_steps = EXCLUDED.avg_daily_steps,
			currency = EXCLUDED.currency,
			weekend_multiplier = EXCLUDED.weekend_multiplier,
			min_viable_sds = EXCLUDED.min_viable_sds,
			strategy_mode = EXCLUDED.strategy_mode,
			enable_windfall = EXCLUDED.enable_windfall,
			updated_at = NOW()
		RETURNING updated_at
	`, p.UserID, p.LiquidBalance, p.MonthlyIncome, p.PaydayDay, p.EmergencyTarget,
		p.TDEEKcal, p.WeightKg, p.HeightCm, p.Age, p.Sex, p.ActivityLevel,
		p.BodyFatPercent, p.AvgDailySteps, p.Currency,
		prefs.WeekendMultiplier, prefs.MinViableSDS, prefs.StrategyMode, prefs.EnableWindfall,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// GetByUserID retrieves the profile of a user. The returned error wraps
// pgx.ErrNoRows when the user has no profile.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRow(ctx, `
		SELECT user_id, liquid_balance, monthly_income, payday_day, emergency_target,
		       tdee_kcal, weight_kg, height_cm, age, sex, activity_level,
		       body_fat_percent, avg_daily_steps, currency,
		       weekend_multiplier, min_viable_sds, strategy_mode, enable_windfall, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.LiquidBalance, &p.MonthlyIncome, &p.PaydayDay, &p.EmergencyTarget,
		&p.TDEEKcal, &p.WeightKg, &p.HeightCm, &p.Age, &p.Sex, &p.ActivityLevel,
		&p.BodyFatPercent, &p.AvgDailySteps, &p.Currency,
		&p.Preferences.WeekendMultiplier, &p.Preferences.MinViableSDS, &p.Preferences.StrategyMode,
		&p.Preferences.EnableWindfall, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
