package api

import (
	"context"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/coach"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

// fakeCoach answers every call from an optional function field.
type fakeCoach struct {
	evaluate    func(coach.Input) (solvency.SolvencyResult, error)
	budget      func(int64) (solvency.SolvencyResult, error)
	profile     func(int64) (*models.Profile, error)
	saveProfile func(*models.User, *models.Profile) error
	addExpense  func(*models.RecurringExpense) error
	listExpense func(int64) ([]models.RecurringExpense, error)
	removeExp   func(int64, string) error
	logActivity func(*models.ActivityLog) error
	payBill     func(int64, string, *decimal.Decimal) (*models.ActivityLog, error)
	cycleLogs   func(int64) ([]models.ActivityLog, solvency.PayCycle, error)
	projection  func(coach.ProjectionInput) (coach.ProjectionResult, error)
}

func (f *fakeCoach) Evaluate(_ context.Context, in coach.Input) (solvency.SolvencyResult, error) {
	if f.evaluate == nil {
		return solvency.SolvencyResult{}, nil
	}
	return f.evaluate(in)
}

func (f *fakeCoach) Budget(_ context.Context, userID int64) (solvency.SolvencyResult, error) {
	if f.budget == nil {
		return solvency.SolvencyResult{}, nil
	}
	return f.budget(userID)
}

func (f *fakeCoach) Profile(_ context.Context, userID int64) (*models.Profile, error) {
	if f.profile == nil {
		return &models.Profile{UserID: userID, Currency: "EUR"}, nil
	}
	return f.profile(userID)
}

func (f *fakeCoach) SaveProfile(_ context.Context, user *models.User, profile *models.Profile) error {
	if f.saveProfile == nil {
		return nil
	}
	return f.saveProfile(user, profile)
}

func (f *fakeCoach) AddRecurringExpense(_ context.Context, e *models.RecurringExpense) error {
	if f.addExpense == nil {
		return nil
	}
	return f.addExpense(e)
}

func (f *fakeCoach) ListRecurringExpenses(_ context.Context, userID int64) ([]models.RecurringExpense, error) {
	if f.listExpense == nil {
		return nil, nil
	}
	return f.listExpense(userID)
}

func (f *fakeCoach) RemoveRecurringExpense(_ context.Context, userID int64, id string) error {
	if f.removeExp == nil {
		return nil
	}
	return f.removeExp(userID, id)
}

func (f *fakeCoach) LogActivity(_ context.Context, l *models.ActivityLog) error {
	if f.logActivity == nil {
		return nil
	}
	return f.logActivity(l)
}

func (f *fakeCoach) PayBill(_ context.Context, userID int64, expenseID string, amount *decimal.Decimal) (*models.ActivityLog, error) {
	if f.payBill == nil {
		return &models.ActivityLog{UserID: userID, RelatedExpenseID: expenseID}, nil
	}
	return f.payBill(userID, expenseID, amount)
}

func (f *fakeCoach) CycleLogs(_ context.Context, userID int64) ([]models.ActivityLog, solvency.PayCycle, error) {
	if f.cycleLogs == nil {
		return nil, solvency.PayCycle{}, nil
	}
	return f.cycleLogs(userID)
}

func (f *fakeCoach) Projection(in coach.ProjectionInput) (coach.ProjectionResult, error) {
	if f.projection == nil {
		return coach.ProjectionResult{}, nil
	}
	return f.projection(in)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
