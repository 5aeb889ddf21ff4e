package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/coach"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/report"
)

type rootResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Status: "online", Version: s.opts.Version})
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.DB == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.opts.DB.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "down", Database: "down"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	var in coach.ProjectionInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := s.coach.Projection(in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var in coach.Input
	if err := decodeJSON(w, r, &in, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := s.coach.Evaluate(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// profileRequest is a profile plus the optional user details stored with it.
type profileRequest struct {
	models.Profile
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user := &models.User{ID: userID, Username: req.Username, FirstName: req.FirstName, LastName: req.LastName}
	profile := req.Profile
	if err := s.coach.SaveProfile(r.Context(), user, &profile); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	profile, err := s.coach.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var e models.RecurringExpense
	if err := decodeJSON(w, r, &e, false); err != nil {
		writeServiceError(w, r, err)
		return
	}
	e.UserID = userID

	if err := s.coach.AddRecurringExpense(r.Context(), &e); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	expenses, err := s.coach.ListRecurringExpenses(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []models.RecurringExpense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := s.coach.RemoveRecurringExpense(r.Context(), userID, mux.Vars(r)["expenseID"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type payRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req payRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeServiceError(w, r, err)
		return
	}

	l, err := s.coach.PayBill(r.Context(), userID, mux.Vars(r)["expenseID"], req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var l models.ActivityLog
	if err := decodeJSON(w, r, &l, false); err != nil {
		writeServiceError(w, r, err)
		return
	}
	l.UserID = userID

	if err := s.coach.LogActivity(r.Context(), &l); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := s.coach.Budget(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBudgetChart(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	profile, err := s.coach.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := s.coach.Budget(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	png, err := report.BudgetChart(res.Financial, profile.Currency)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, "image/png", report.ChartFilename(res.Financial.CycleStart), png)
}

func (s *Server) handleLogsCSV(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logs, cycle, err := s.coach.CycleLogs(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data, err := report.LogsCSV(logs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeAttachment(w, "text/csv", report.CSVFilename(cycle.Start.Format(time.DateOnly)), data)
}
