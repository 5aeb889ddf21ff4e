// Package api exposes the coaching service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/coach"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Coach is the part of coach.Service the API serves.
type Coach interface {
	Evaluate(ctx context.Context, in coach.Input) (solvency.SolvencyResult, error)
	Budget(ctx context.Context, userID int64) (solvency.SolvencyResult, error)
	Profile(ctx context.Context, userID int64) (*models.Profile, error)
	SaveProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	AddRecurringExpense(ctx context.Context, e *models.RecurringExpense) error
	ListRecurringExpenses(ctx context.Context, userID int64) ([]models.RecurringExpense, error)
	RemoveRecurringExpense(ctx context.Context, userID int64, id string) error
	LogActivity(ctx context.Context, l *models.ActivityLog) error
	PayBill(ctx context.Context, userID int64, expenseID string, amount *decimal.Decimal) (*models.ActivityLog, error)
	CycleLogs(ctx context.Context, userID int64) ([]models.ActivityLog, solvency.PayCycle, error)
	Projection(in coach.ProjectionInput) (coach.ProjectionResult, error)
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Version        string
	AllowedOrigins []string
	// JWTSecret enables bearer auth on /v1/users routes when set.
	JWTSecret string
	DB        Pinger
}

// Server routes HTTP requests to the coaching service.
type Server struct {
	coach  Coach
	opts   Options
	router *mux.Router
}

// NewServer builds the router.
func NewServer(c Coach, opts Options) *Server {
	s := &Server{coach: c, opts: opts, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/calculate-projection", s.handleProjection).Methods(http.MethodPost)
	r.HandleFunc("/v1/solvency", s.handleEvaluate).Methods(http.MethodPost)

	users := r.PathPrefix("/v1/users/{userID:[0-9]+}").Subrouter()
	if s.opts.JWTSecret != "" {
		users.Use(requireUser([]byte(s.opts.JWTSecret)))
	}
	users.HandleFunc("/profile", s.handleSaveProfile).Methods(http.MethodPut)
	users.HandleFunc("/profile", s.handleGetProfile).Methods(http.MethodGet)
	users.HandleFunc("/expenses", s.handleAddExpense).Methods(http.MethodPost)
	users.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	users.HandleFunc("/expenses/{expenseID}", s.handleRemoveExpense).Methods(http.MethodDelete)
	users.HandleFunc("/expenses/{expenseID}/pay", s.handlePayBill).Methods(http.MethodPost)
	users.HandleFunc("/logs", s.handleLogActivity).Methods(http.MethodPost)
	users.HandleFunc("/logs.csv", s.handleLogsCSV).Methods(http.MethodGet)
	users.HandleFunc("/budget", s.handleBudget).Methods(http.MethodGet)
	users.HandleFunc("/budget/chart", s.handleBudgetChart).Methods(http.MethodGet)
}

// Handler returns the router wrapped in the middleware stack.
func (s *Server) Handler() http.Handler {
	chain := Chain(
		RequestID,
		Recovery,
		AccessLog,
		CORS(s.opts.AllowedOrigins),
	)
	return otelhttp.NewHandler(chain(s.router), "leverage.api")
}
