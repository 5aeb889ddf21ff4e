// Package solvency computes the safe daily spend and the remaining daily
// calorie budget of a user for a given day.
//
// The engine is pure: it works only on the profile, expenses and logs it is
// given and keeps no state between calls.
package solvency

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/health"
	"gitlab.com/yelinaung/leverage/internal/models"
)

// ErrInvalidInput is returned when a profile or expense is structurally invalid.
var ErrInvalidInput = errors.New("invalid input")

// MaxWeekendMultiplier bounds how heavily a weekend day may be weighted.
const MaxWeekendMultiplier = 10.0

// Status classifies the user's financial phase.
type Status string

// Financial phases.
const (
	StatusStable   Status = "STABLE"
	StatusRecovery Status = "RECOVERY_MODE"
	StatusGrowth   Status = "GROWTH_MODE"
)

// ViceStatus is advisory access to discretionary vices.
type ViceStatus string

// Vice access states.
const (
	ViceLocked   ViceStatus = "LOCKED"
	ViceUnlocked ViceStatus = "UNLOCKED"
)

var defaultHabits = health.NewHabitTable()

var (
	emergencyMonths   = decimal.NewFromInt(3)
	incomeBufferShare = decimal.RequireFromString("0.3")
	wealthTaxShare    = decimal.RequireFromString("0.2")
)

// FinancialResult is the money side of a solvency calculation.
type FinancialResult struct {
	SDSToday              decimal.Decimal                     `json:"sds_today"`
	Status                Status                              `json:"status"`
	ActiveMode            StrategyMode                        `json:"active_mode"`
	DaysUntilPayday       int                                 `json:"days_until_payday"`
	WeightedDays          float64                             `json:"weighted_days"`
	CycleStart            string                              `json:"cycle_start"`
	NextPayday            string                              `json:"next_payday"`
	PendingBillsTotal     decimal.Decimal                     `json:"pending_bills_total"`
	PendingBillsAverage   decimal.Decimal                     `json:"pending_bills_average"`
	ProjectedWindfall     decimal.Decimal                     `json:"projected_windfall"`
	PendingBillsBreakdown []PendingBill                       `json:"pending_bills_breakdown"`
	EmergencyTarget       decimal.Decimal                     `json:"emergency_target"`
	EmergencyGap          decimal.Decimal                     `json:"emergency_gap"`
	DisposableIncome      decimal.Decimal                     `json:"disposable_income"`
	AllocatedBudget       decimal.Decimal                     `json:"allocated_budget"`
	MonthlySavingRate     decimal.Decimal                     `json:"monthly_saving_rate"`
	SpentInCycle          decimal.Decimal                     `json:"spent_in_cycle"`
	RemainingBudget       decimal.Decimal                     `json:"remaining_budget"`
	BelowMinViable        bool                                `json:"below_min_viable"`
	StrategyProjections   map[StrategyMode]StrategyProjection `json:"strategy_projections"`
}

// PsychologyResult is the advisory section of a solvency calculation.
type PsychologyResult struct {
	ViceStatus ViceStatus `json:"vice_status"`
	Message    string     `json:"message"`
}

// SolvencyResult is the combined outcome of Engine.Calculate.
type SolvencyResult struct {
	Financial  FinancialResult  `json:"financial"`
	Biological BiologicalResult `json:"biological"`
	Psychology PsychologyResult `json:"psychology"`
}

// Engine runs solvency calculations. It holds only fixed configuration and
// is safe for concurrent use.
type Engine struct {
	habits *health.HabitTable

	// GrowthTaxAggressive applies the growth-phase wealth tax to the
	// aggressive strategy as well.
	GrowthTaxAggressive bool
}

// NewEngine creates an engine with the default habit table.
func NewEngine(growthTaxAggressive bool) *Engine {
	return &Engine{
		habits:              defaultHabits,
		GrowthTaxAggressive: growthTaxAggressive,
	}
}

// Habits returns the habit table used for vice calories.
func (e *Engine) Habits() *health.HabitTable {
	if e.habits == nil {
		return defaultHabits
	}
	return e.habits
}

// Calculate runs the financial, biological and advisory calculations for today.
// It fails with ErrInvalidInput without a partial result.
func (e *Engine) Calculate(profile *models.Profile, expenses []models.RecurringExpense, logs []models.ActivityLog, today time.Time) (SolvencyResult, error) {
	if err := validate(profile, expenses); err != nil {
		return SolvencyResult{}, err
	}

	fin := e.financial(profile, expenses, logs, today)
	bio := e.BioBudget(profile, logs, today)

	return SolvencyResult{
		Financial:  fin,
		Biological: bio,
		Psychology: psychology(fin),
	}, nil
}

// CalculateFinancial computes the safe daily spend and strategy projections.
func (e *Engine) CalculateFinancial(profile *models.Profile, expenses []models.RecurringExpense, logs []models.ActivityLog, today time.Time) (FinancialResult, error) {
	if err := validate(profile, expenses); err != nil {
		return FinancialResult{}, err
	}
	return e.financial(profile, expenses, logs, today), nil
}

func (e *Engine) financial(profile *models.Profile, expenses []models.RecurringExpense, logs []models.ActivityLog, today time.Time) FinancialResult {
	today = Day(today)
	prefs := effectivePreferences(profile.Preferences)

	cycle := ResolveCycle(today, profile.PaydayDay)
	weighted := WeightedDaysUntil(today, cycle.NextPayday, prefs.WeekendMultiplier)

	liab := AggregateLiabilities(expenses, cycle, logs)
	burn := liab.PendingMax

	target := profile.EmergencyTarget
	if !target.IsPositive() {
		target = emergencyMonths.Mul(burn.Add(incomeBufferShare.Mul(profile.MonthlyIncome)))
	}
	gap := target.Sub(profile.LiquidBalance)
	disposable := profile.MonthlyIncome.Sub(burn)

	projections := SimulateAll(disposable, gap, prefs.MinViableSDS)
	mode := ParseStrategyMode(prefs.StrategyMode)
	active := projections[mode]
	allocated, saving := active.AllocatedBudget, active.MonthlySavingRate

	var status Status
	switch {
	case gap.IsPositive():
		status = StatusRecovery
	case !profile.LiquidBalance.LessThan(target):
		status = StatusGrowth
		if allocated.IsPositive() && (mode != Aggressive || e.GrowthTaxAggressive) {
			tax := allocated.Mul(wealthTaxShare)
			allocated = allocated.Sub(tax)
			saving = saving.Add(tax)
		}
	default:
		// Unreachable while gap is target minus balance; kept for the enum.
		status = StatusStable
	}

	spent := SpentInCycle(logs, cycle.Start)
	remaining := allocated.Sub(spent)
	sds := decimal.Max(decimal.Zero, remaining.Div(decimal.NewFromFloat(weighted))).Round(2)

	rounded := make(map[StrategyMode]StrategyProjection, len(projections))
	for m, p := range projections {
		rounded[m] = StrategyProjection{
			AllocatedBudget:   p.AllocatedBudget.Round(2),
			MonthlySavingRate: p.MonthlySavingRate.Round(2),
			MonthsToGoal:      p.MonthsToGoal,
		}
	}

	bills := liab.Bills
	if bills == nil {
		bills = []PendingBill{}
	}
	for i := range bills {
		bills[i].AmountReserved = bills[i].AmountReserved.Round(2)
	}

	res := FinancialResult{
		SDSToday:              sds,
		Status:                status,
		ActiveMode:            mode,
		DaysUntilPayday:       DaysUntil(today, cycle.NextPayday),
		WeightedDays:          weighted,
		CycleStart:            cycle.Start.Format(time.DateOnly),
		NextPayday:            cycle.NextPayday.Format(time.DateOnly),
		PendingBillsTotal:     liab.PendingMax.Round(2),
		PendingBillsAverage:   decimal.Zero,
		ProjectedWindfall:     decimal.Zero,
		PendingBillsBreakdown: bills,
		EmergencyTarget:       target.Round(2),
		EmergencyGap:          gap.Round(2),
		DisposableIncome:      disposable.Round(2),
		AllocatedBudget:       allocated.Round(2),
		MonthlySavingRate:     saving.Round(2),
		SpentInCycle:          spent.Round(2),
		RemainingBudget:       remaining.Round(2),
		BelowMinViable:        sds.LessThan(prefs.MinViableSDS),
		StrategyProjections:   rounded,
	}
	if prefs.EnableWindfall {
		res.PendingBillsAverage = liab.PendingAvg.Round(2)
		res.ProjectedWindfall = liab.Windfall.Round(2)
	}
	return res
}

// effectivePreferences fills unset preferences with defaults.
// A zero weekend multiplier means unset.
func effectivePreferences(p models.Preferences) models.Preferences {
	if p.WeekendMultiplier == 0 {
		p.WeekendMultiplier = models.DefaultWeekendMultiplier
	}
	return p
}

func psychology(fin FinancialResult) PsychologyResult {
	vice := ViceUnlocked
	if fin.Status == StatusRecovery && fin.ActiveMode == Aggressive {
		vice = ViceLocked
	}

	var msg string
	switch fin.Status {
	case StatusRecovery:
		if vice == ViceLocked {
			msg = fmt.Sprintf("Recovery mode: vices are locked until the emergency fund gap of %s is closed.", fin.EmergencyGap.StringFixed(2))
		} else {
			msg = fmt.Sprintf("Recovery mode: %s to go on the emergency fund. Keep today under %s.", fin.EmergencyGap.StringFixed(2), fin.SDSToday.StringFixed(2))
		}
	case StatusGrowth:
		msg = fmt.Sprintf("Growth mode: emergency fund covered, %s a month goes to savings.", fin.MonthlySavingRate.StringFixed(2))
	default:
		msg = "Stable: bills are covered, no surplus to allocate this cycle."
	}
	if fin.BelowMinViable {
		msg += " Today's budget is below your minimum viable spend."
	}

	return PsychologyResult{ViceStatus: vice, Message: msg}
}

// ValidateProfile checks a profile on its own, as Calculate would.
func ValidateProfile(profile *models.Profile) error {
	return validate(profile, nil)
}

// ValidateExpense checks a single recurring expense.
func ValidateExpense(e *models.RecurringExpense) error {
	if e == nil {
		return fmt.Errorf("%w: expense is required", ErrInvalidInput)
	}
	problems := validateExpense(e)
	if strings.TrimSpace(e.Name) == "" {
		problems = append(problems, "expense name is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func validate(profile *models.Profile, expenses []models.RecurringExpense) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is required", ErrInvalidInput)
	}

	var problems []string
	if profile.PaydayDay < 1 || profile.PaydayDay > 31 {
		problems = append(problems, fmt.Sprintf("payday_day must be between 1 and 31, got %d", profile.PaydayDay))
	}
	if profile.MonthlyIncome.IsNegative() {
		problems = append(problems, "monthly_income must not be negative")
	}
	if profile.EmergencyTarget.IsNegative() {
		problems = append(problems, "emergency_target must not be negative")
	}
	if profile.TDEEKcal < 0 {
		problems = append(problems, "tdee_kcal must not be negative")
	}
	if profile.WeightKg < 0 || profile.HeightCm < 0 || profile.Age < 0 {
		problems = append(problems, "biometrics must not be negative")
	}
	if bf := profile.BodyFatPercent; bf != nil && (*bf < 0 || *bf >= 100) {
		problems = append(problems, "body_fat_percent must be in [0, 100)")
	}
	if s := profile.AvgDailySteps; s != nil && *s < 0 {
		problems = append(problems, "avg_daily_steps must not be negative")
	}

	prefs := profile.Preferences
	if w := prefs.WeekendMultiplier; math.IsNaN(w) || (w != 0 && (w < 1 || w > MaxWeekendMultiplier)) {
		problems = append(problems, fmt.Sprintf("weekend_multiplier must be between 1.0 and %.0f", MaxWeekendMultiplier))
	}
	if prefs.MinViableSDS.IsNegative() {
		problems = append(problems, "min_viable_sds must not be negative")
	}

	for i := range expenses {
		problems = append(problems, validateExpense(&expenses[i])...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

func validateExpense(e *models.RecurringExpense) []string {
	var problems []string
	label := e.Name
	if label == "" {
		label = e.ID
	}

	if e.IsVariable {
		if e.MinAmount.IsNegative() {
			problems = append(problems, fmt.Sprintf("expense %q: min_amount must not be negative", label))
		}
		if e.MaxAmount.LessThan(e.MinAmount) {
			problems = append(problems, fmt.Sprintf("expense %q: max_amount must be at least min_amount", label))
		}
	} else if e.Amount.IsNegative() {
		problems = append(problems, fmt.Sprintf("expense %q: amount must not be negative", label))
	}
	for _, m := range e.PaymentMonths {
		if m < 1 || m > 12 {
			problems = append(problems, fmt.Sprintf("expense %q: payment month %d out of range", label, m))
		}
	}
	return problems
}
