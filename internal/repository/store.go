package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/leverage/internal/database"
	"gitlab.com/yelinaung/leverage/internal/models"
)

// Pool is a database handle that can also open transactions.
type Pool interface {
	database.PGXDB
	database.TxBeginner
}

// Store groups the repositories that share one pool.
type Store struct {
	pool     Pool
	Users    *UserRepository
	Profiles *ProfileRepository
	Expenses *RecurringExpenseRepository
	Logs     *ActivityLogRepository
}

// NewStore creates the repositories over pool.
func NewStore(pool Pool) *Store {
	return &Store{
		pool:     pool,
		Users:    NewUserRepository(pool),
		Profiles: NewProfileRepository(pool),
		Expenses: NewRecurringExpenseRepository(pool),
		Logs:     NewActivityLogRepository(pool),
	}
}

// GetByUserID retrieves the profile of a user.
func (s *Store) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.Profiles.GetByUserID(ctx, userID)
}

// SaveProfile upserts the user and their profile in one transaction.
func (s *Store) SaveProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	err := database.InTx(ctx, s.pool, func(tx database.PGXDB) error {
		if err := NewUserRepository(tx).UpsertUser(ctx, user); err != nil {
			return err
		}
		return NewProfileRepository(tx).Upsert(ctx, profile)
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
