package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/leverage/internal/database"
	"gitlab.com/yelinaung/leverage/internal/models"
)

// RecurringExpenseRepository handles recurring expense database operations.
type RecurringExpenseRepository struct {
	db database.PGXDB
}

// NewRecurringExpenseRepository creates a new RecurringExpenseRepository.
func NewRecurringExpenseRepository(db database.PGXDB) *RecurringExpenseRepository {
	return &RecurringExpenseRepository{db: db}
}

const recurringExpenseColumns = `id::text, user_id, name, amount, is_variable, min_amount, max_amount, payment_months, due_day, created_at`

// Create adds a recurring expense, assigning a new UUID when e.ID is empty.
func (r *RecurringExpenseRepository) Create(ctx context.Context, e *models.RecurringExpense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO recurring_expenses (id, user_id, name, amount, is_variable, min_amount, max_amount, payment_months, due_day)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, e.ID, e.UserID, e.Name, e.Amount, e.IsVariable, e.MinAmount, e.MaxAmount,
		toInt32s(e.PaymentMonths), e.DueDay,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create recurring expense: %w", err)
	}
	return nil
}

// GetByID retrieves a recurring expense owned by userID.
func (r *RecurringExpenseRepository) GetByID(ctx context.Context, userID int64, id string) (*models.RecurringExpense, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to get recurring expense: %w", pgx.ErrNoRows)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+recurringExpenseColumns+`
		FROM recurring_expenses WHERE id = $1::uuid AND user_id = $2
	`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring expense: %w", err)
	}
	defer rows.Close()

	expenses, err := scanRecurringExpenses(rows)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("failed to get recurring expense: %w", pgx.ErrNoRows)
	}
	return &expenses[0], nil
}

// ListByUser returns the recurring expenses of a user in creation order.
func (r *RecurringExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]models.RecurringExpense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+recurringExpenseColumns+`
		FROM recurring_expenses WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring expenses: %w", err)
	}
	defer rows.Close()

	return scanRecurringExpenses(rows)
}

// Delete removes a recurring expense owned by userID.
func (r *RecurringExpenseRepository) Delete(ctx context.Context, userID int64, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM recurring_expenses WHERE id::text = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete recurring expense: %w", pgx.ErrNoRows)
	}
	return nil
}

func scanRecurringExpenses(rows pgx.Rows) ([]models.RecurringExpense, error) {
	var expenses []models.RecurringExpense
	for rows.Next() {
		var e models.RecurringExpense
		var months []int32
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.Amount, &e.IsVariable,
			&e.MinAmount, &e.MaxAmount, &months, &e.DueDay, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recurring expense: %w", err)
		}
		e.PaymentMonths = fromInt32s(months)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurring expenses: %w", err)
	}
	return expenses, nil
}

func toInt32s(in []int) []int32 {
	out := make([]int32, 0, len(in))
	for _, v := range in {
		out = append(out, int32(v)) //nolint:gosec // months are 1..12
	}
	return out
}

func fromInt32s(in []int32) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
