package coach

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/exchange"
	"gitlab.com/yelinaung/leverage/internal/gemini"
	"gitlab.com/yelinaung/leverage/internal/models"
)

// memStore is an in-memory implementation of every store interface.
type memStore struct {
	mu       sync.Mutex
	users    map[int64]models.User
	profiles map[int64]models.Profile
	expenses map[string]models.RecurringExpense
	logs     []models.ActivityLog
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]models.User{},
		profiles: map[int64]models.Profile{},
		expenses: map[string]models.RecurringExpense{},
	}
}

func (m *memStore) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for id, u := range m.users {
		if _, ok := m.profiles[id]; ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("failed to get profile: %w", pgx.ErrNoRows)
	}
	return &p, nil
}

func (m *memStore) SaveProfile(_ context.Context, user *models.User, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	m.profiles[user.ID] = *profile
	return nil
}

type expenseStore struct{ *memStore }

func (s expenseStore) Create(_ context.Context, e *models.RecurringExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = fmt.Sprintf("exp-%d", len(s.expenses)+1)
	}
	s.expenses[e.ID] = *e
	return nil
}

func (s expenseStore) GetByID(_ context.Context, userID int64, id string) (*models.RecurringExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return nil, fmt.Errorf("failed to get recurring expense: %w", pgx.ErrNoRows)
	}
	return &e, nil
}

func (s expenseStore) ListByUser(_ context.Context, userID int64) ([]models.RecurringExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RecurringExpense
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s expenseStore) Delete(_ context.Context, userID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return fmt.Errorf("failed to delete recurring expense: %w", pgx.ErrNoRows)
	}
	delete(s.expenses, id)
	return nil
}

type logStore struct{ *memStore }

func (s logStore) Create(_ context.Context, l *models.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	l.ID = s.nextID
	s.logs = append(s.logs, *l)
	return nil
}

func (s logStore) ListByUserSince(_ context.Context, userID int64, since string) ([]models.ActivityLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ActivityLog
	for _, l := range s.logs {
		if l.UserID == userID && l.Date >= since {
			out = append(out, l)
		}
	}
	return out, nil
}

type fixedRate struct {
	rate decimal.Decimal
	err  error
}

func (f fixedRate) Convert(_ context.Context, amount decimal.Decimal, _, _ string) (exchange.ConversionResult, error) {
	if f.err != nil {
		return exchange.ConversionResult{}, f.err
	}
	return exchange.ConversionResult{Amount: amount.Mul(f.rate).Round(2), Rate: f.rate}, nil
}

type fakeEstimator struct {
	calories int
	err      error
	calls    int
}

func (f *fakeEstimator) EstimateCalories(context.Context, string) (gemini.CalorieEstimate, error) {
	f.calls++
	if f.err != nil {
		return gemini.CalorieEstimate{}, f.err
	}
	return gemini.CalorieEstimate{Calories: f.calories, Confidence: 0.8}, nil
}
