package database

import (
	"context"
	"fmt"
)

// RunMigrations creates the database schema. Every statement is idempotent.
func RunMigrations(ctx context.Context, db PGXDB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS profiles (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			liquid_balance NUMERIC(14, 2) NOT NULL DEFAULT 0,
			monthly_income NUMERIC(14, 2) NOT NULL DEFAULT 0,
			payday_day SMALLINT NOT NULL CHECK (payday_day BETWEEN 1 AND 31),
			emergency_target NUMERIC(14, 2) NOT NULL DEFAULT 0,
			tdee_kcal INTEGER NOT NULL DEFAULT 0,
			weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			height_cm DOUBLE PRECISION NOT NULL DEFAULT 0,
			age INTEGER NOT NULL DEFAULT 0,
			sex TEXT NOT NULL DEFAULT '',
			activity_level TEXT NOT NULL DEFAULT '',
			body_fat_percent DOUBLE PRECISION,
			avg_daily_steps INTEGER,
			currency TEXT NOT NULL DEFAULT 'EUR',
			weekend_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0 CHECK (weekend_multiplier BETWEEN 1.0 AND 10.0),
			min_viable_sds NUMERIC(10, 2) NOT NULL DEFAULT 5 CHECK (min_viable_sds >= 0),
			strategy_mode TEXT NOT NULL DEFAULT 'balanced',
			enable_windfall BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS recurring_expenses (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			amount NUMERIC(14, 2) NOT NULL DEFAULT 0,
			is_variable BOOLEAN NOT NULL DEFAULT FALSE,
			min_amount NUMERIC(14, 2) NOT NULL DEFAULT 0,
			max_amount NUMERIC(14, 2) NOT NULL DEFAULT 0,
			payment_months INTEGER[] NOT NULL DEFAULT '{}',
			due_day SMALLINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (NOT is_variable OR (max_amount >= min_amount AND min_amount >= 0))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recurring_expenses_user_id ON recurring_expenses(user_id)`,

		`CREATE TABLE IF NOT EXISTS activity_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			log_date DATE NOT NULL,
			log_type TEXT NOT NULL CHECK (log_type IN ('expense', 'food', 'vice_consumed', 'workout')),
			amount NUMERIC(14, 2) NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'EUR',
			calories INTEGER NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT '',
			sub_type TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 1,
			description TEXT NOT NULL DEFAULT '',
			related_expense_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Bill payments keep their expense id after the bill is deleted.
		`ALTER TABLE activity_logs DROP CONSTRAINT IF EXISTS activity_logs_related_expense_id_fkey`,

		`CREATE INDEX IF NOT EXISTS idx_activity_logs_user_date ON activity_logs(user_id, log_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_related_expense ON activity_logs(related_expense_id) WHERE related_expense_id IS NOT NULL`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
