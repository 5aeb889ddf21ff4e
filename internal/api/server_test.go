package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/leverage/internal/coach"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

func newTestServer(c *fakeCoach, opts Options) http.Handler {
	if opts.Version == "" {
		opts.Version = "test"
	}
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}
	return NewServer(c, opts).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestRootAndHealth(t *testing.T) {
	t.Parallel()

	t.Run("root reports version", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestServer(&fakeCoach{}, Options{Version: "1.2.3"}), http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		body := decodeBody(t, rec)
		require.Equal(t, "online", body["status"])
		require.Equal(t, "1.2.3", body["version"])
		require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	})

	t.Run("health without database", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestServer(&fakeCoach{}, Options{}), http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", decodeBody(t, rec)["status"])
	})

	t.Run("health with unreachable database", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(&fakeCoach{}, Options{DB: fakePinger{err: errors.New("down")}})
		rec := do(t, h, http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "down", decodeBody(t, rec)["database"])
	})

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestServer(&fakeCoach{}, Options{}), http.MethodGet, "/nope", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "not found", decodeBody(t, rec)["error"])
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestServer(&fakeCoach{}, Options{}), http.MethodDelete, "/", "")
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestProjectionEndpoint(t *testing.T) {
	t.Parallel()

	var got coach.ProjectionInput
	fc := &fakeCoach{projection: func(in coach.ProjectionInput) (coach.ProjectionResult, error) {
		got = in
		if in.Age <= 0 {
			return coach.ProjectionResult{}, fmt.Errorf("%w: age must be positive", solvency.ErrInvalidInput)
		}
		return coach.ProjectionResult{WealthProjection: coach.WealthProjection{DailySaving: decimal.NewFromInt(10)}}, nil
	}}
	h := newTestServer(fc, Options{})

	rec := do(t, h, http.MethodPost, "/calculate-projection",
		`{"age":30,"gender":"male","weight_kg":80,"height_cm":180,"habit_name":"cigarette","habit_cost":"0.5","daily_quantity":20}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 20, got.DailyQuantity)
	require.True(t, decimal.RequireFromString("0.5").Equal(got.HabitCost))
	wp := decodeBody(t, rec)["wealth_projection"].(map[string]any)
	require.Equal(t, "10", wp["daily_saving"])

	rec = do(t, h, http.MethodPost, "/calculate-projection", `{"age":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "age must be positive")

	rec = do(t, h, http.MethodPost, "/calculate-projection", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/calculate-projection", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "request body is required")
}

func TestEvaluateEndpoint(t *testing.T) {
	t.Parallel()

	var got coach.Input
	fc := &fakeCoach{evaluate: func(in coach.Input) (solvency.SolvencyResult, error) {
		got = in
		return solvency.SolvencyResult{Financial: solvency.FinancialResult{
			SDSToday: decimal.RequireFromString("31.3"),
			Status:   solvency.StatusGrowth,
		}}, nil
	}}

	body := `{
		"profile": {"current_liquid_balance": "1000", "monthly_income": "3000", "payday_day": 27, "currency": "EUR"},
		"recurring_expenses": [{"name": "Rent", "amount": "800"}],
		"logs": [{"date": "2024-03-01", "log_type": "expense", "amount": "12"}],
		"today": "2024-03-04"
	}`
	rec := do(t, newTestServer(fc, Options{}), http.MethodPost, "/v1/solvency", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Equal(t, 27, got.Profile.PaydayDay)
	require.Len(t, got.Expenses, 1)
	require.Len(t, got.Logs, 1)
	require.Equal(t, models.LogKindExpense, got.Logs[0].Kind)
	require.Equal(t, "2024-03-04", got.Today)

	fin := decodeBody(t, rec)["financial"].(map[string]any)
	require.Equal(t, "31.3", fin["sds_today"])
	require.Equal(t, string(solvency.StatusGrowth), fin["status"])
}

func TestUserRoutes(t *testing.T) {
	t.Parallel()

	t.Run("save profile", func(t *testing.T) {
		t.Parallel()
		var gotUser *models.User
		var gotProfile *models.Profile
		fc := &fakeCoach{saveProfile: func(u *models.User, p *models.Profile) error {
			gotUser, gotProfile = u, p
			p.UserID = u.ID
			return nil
		}}

		rec := do(t, newTestServer(fc, Options{}), http.MethodPut, "/v1/users/42/profile",
			`{"username":"alice","current_liquid_balance":"1500","monthly_income":"3000","payday_day":27}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, int64(42), gotUser.ID)
		require.Equal(t, "alice", gotUser.Username)
		require.Equal(t, 27, gotProfile.PaydayDay)
		require.Equal(t, float64(42), decodeBody(t, rec)["user_id"])
	})

	t.Run("get profile not found", func(t *testing.T) {
		t.Parallel()
		fc := &fakeCoach{profile: func(int64) (*models.Profile, error) {
			return nil, coach.ErrProfileNotFound
		}}
		rec := do(t, newTestServer(fc, Options{}), http.MethodGet, "/v1/users/42/profile", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric user id does not route", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestServer(&fakeCoach{}, Options{}), http.MethodGet, "/v1/users/abc/budget", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("zero user id is rejected", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestServer(&fakeCoach{}, Options{}), http.MethodGet, "/v1/users/0/budget", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("add expense", func(t *testing.T) {
		t.Parallel()
		fc := &fakeCoach{addExpense: func(e *models.RecurringExpense) error {
			e.ID = "3f1c0a4e-0000-4000-8000-000000000001"
			return nil
		}}
		rec := do(t, newTestServer(fc, Options{}), http.MethodPost, "/v1/users/7/expenses",
			`{"name":"Rent","amount":"800","payment_months":[1,7]}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, float64(7), body["user_id"])
		require.Equal(t, "3f1c0a4e-0000-4000-8000-000000000001", body["id"])
	})

	t.Run("empty expense list is an array", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestServer(&fakeCoach{}, Options{}), http.MethodGet, "/v1/users/7/expenses", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("remove expense", func(t *testing.T) {
		t.Parallel()
		fc := &fakeCoach{removeExp: func(userID int64, id string) error {
			if id != "abc" {
				return fmt.Errorf("%w: %s", coach.ErrExpenseNotFound, id)
			}
			return nil
		}}
		h := newTestServer(fc, Options{})

		rec := do(t, h, http.MethodDelete, "/v1/users/7/expenses/abc", "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = do(t, h, http.MethodDelete, "/v1/users/7/expenses/zzz", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("pay bill", func(t *testing.T) {
		t.Parallel()
		var gotAmount *decimal.Decimal
		fc := &fakeCoach{payBill: func(userID int64, id string, amount *decimal.Decimal) (*models.ActivityLog, error) {
			gotAmount = amount
			return &models.ActivityLog{UserID: userID, RelatedExpenseID: id, Kind: models.LogKindExpense}, nil
		}}
		h := newTestServer(fc, Options{})

		rec := do(t, h, http.MethodPost, "/v1/users/7/expenses/abc/pay", "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Nil(t, gotAmount)
		require.Equal(t, "abc", decodeBody(t, rec)["related_expense_id"])

		rec = do(t, h, http.MethodPost, "/v1/users/7/expenses/abc/pay", `{"amount":"12.5"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, gotAmount)
		require.True(t, decimal.RequireFromString("12.5").Equal(*gotAmount))
	})

	t.Run("log activity", func(t *testing.T) {
		t.Parallel()
		var got *models.ActivityLog
		fc := &fakeCoach{logActivity: func(l *models.ActivityLog) error {
			got = l
			l.ID = 99
			return nil
		}}
		rec := do(t, newTestServer(fc, Options{}), http.MethodPost, "/v1/users/7/logs",
			`{"log_type":"food","description":"pasta"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, int64(7), got.UserID)
		require.Equal(t, models.LogKindFood, got.Kind)
		require.Equal(t, float64(99), decodeBody(t, rec)["id"])
	})

	t.Run("budget errors", func(t *testing.T) {
		t.Parallel()
		fc := &fakeCoach{budget: func(userID int64) (solvency.SolvencyResult, error) {
			if userID == 1 {
				return solvency.SolvencyResult{}, coach.ErrProfileNotFound
			}
			return solvency.SolvencyResult{}, errors.New("connection reset by peer")
		}}
		h := newTestServer(fc, Options{})

		rec := do(t, h, http.MethodGet, "/v1/users/1/budget", "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = do(t, h, http.MethodGet, "/v1/users/2/budget", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "internal server error", decodeBody(t, rec)["error"])
	})
}

func TestBudgetChartEndpoint(t *testing.T) {
	t.Parallel()

	fc := &fakeCoach{budget: func(userID int64) (solvency.SolvencyResult, error) {
		if userID == 2 {
			return solvency.SolvencyResult{}, nil
		}
		return solvency.SolvencyResult{Financial: solvency.FinancialResult{
			CycleStart:        "2024-02-27",
			NextPayday:        "2024-03-27",
			PendingBillsTotal: decimal.NewFromInt(800),
			RemainingBudget:   decimal.NewFromInt(700),
		}}, nil
	}}
	h := newTestServer(fc, Options{})

	rec := do(t, h, http.MethodGet, "/v1/users/1/budget/chart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "budget_2024-02-27.png")
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 0x50, 0x4E, 0x47}))

	rec = do(t, h, http.MethodGet, "/v1/users/2/budget/chart", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogsCSVEndpoint(t *testing.T) {
	t.Parallel()

	fc := &fakeCoach{cycleLogs: func(int64) ([]models.ActivityLog, solvency.PayCycle, error) {
		return []models.ActivityLog{
				{ID: 1, Date: "2024-03-01", Kind: models.LogKindExpense, Amount: decimal.NewFromInt(12), Currency: "EUR"},
			}, solvency.PayCycle{
				Start:      time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC),
				NextPayday: time.Date(2024, 3, 27, 0, 0, 0, 0, time.UTC),
			}, nil
	}}

	rec := do(t, newTestServer(fc, Options{}), http.MethodGet, "/v1/users/1/logs.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "activity_2024-02-27.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[1], "1,2024-03-01,expense,12.00,EUR"))
}
