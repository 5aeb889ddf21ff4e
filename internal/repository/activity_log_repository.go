package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/leverage/internal/database"
	"gitlab.com/yelinaung/leverage/internal/models"
)

// ActivityLogRepository handles activity log database operations.
type ActivityLogRepository struct {
	db database.PGXDB
}

// NewActivityLogRepository creates a new ActivityLogRepository.
func NewActivityLogRepository(db database.PGXDB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create stores a log entry. Date must be YYYY-MM-DD.
func (r *ActivityLogRepository) Create(ctx context.Context, l *models.ActivityLog) error {
	if l.Currency == "" {
		l.Currency = models.DefaultCurrency
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO activity_logs (
			user_id, log_date, log_type, amount, currency, calories,
			category, sub_type, quantity, description, related_expense_id
		)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, '')::uuid)
		RETURNING id, created_at
	`, l.UserID, l.Date, string(l.Kind), l.Amount, l.Currency, l.Calories,
		l.Category, l.SubType, l.EffectiveQuantity(), l.Description, l.RelatedExpenseID,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

// ListByUserSince returns the logs of a user dated on or after since
// (YYYY-MM-DD), oldest first.
func (r *ActivityLogRepository) ListByUserSince(ctx context.Context, userID int64, since string) ([]models.ActivityLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, to_char(log_date, 'YYYY-MM-DD'), log_type, amount, currency, calories,
		       category, sub_type, quantity, description, COALESCE(related_expense_id::text, ''), created_at
		FROM activity_logs
		WHERE user_id = $1 AND log_date >= $2::date
		ORDER BY log_date, id
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		var kind string
		if err := rows.Scan(&l.ID, &l.UserID, &l.Date, &kind, &l.Amount, &l.Currency, &l.Calories,
			&l.Category, &l.SubType, &l.Quantity, &l.Description, &l.RelatedExpenseID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		l.Kind = models.LogKind(kind)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity logs: %w", err)
	}
	return logs, nil
}

// DeleteByID removes a log entry owned by userID.
func (r *ActivityLogRepository) DeleteByID(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM activity_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete activity log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete activity log: %w", pgx.ErrNoRows)
	}
	return nil
}
