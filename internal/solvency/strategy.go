package solvency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StrategyMode is an allocation policy for disposable income.
type StrategyMode string

// Allocation policies, from most to least saving.
const (
	Aggressive   StrategyMode = "AGGRESSIVE"
	Balanced     StrategyMode = "BALANCED"
	Conservative StrategyMode = "CONSERVATIVE"
)

// Modes lists every strategy in display order.
var Modes = []StrategyMode{Aggressive, Balanced, Conservative}

// UnreachableMonths marks a savings goal that the plan never reaches.
const UnreachableMonths = 999

var (
	daysPerMonth       = decimal.NewFromInt(30)
	balancedSaving     = decimal.RequireFromString("0.5")
	conservativeSaving = decimal.RequireFromString("0.2")
)

// StrategyProjection is the monthly split of one strategy.
type StrategyProjection struct {
	AllocatedBudget   decimal.Decimal `json:"allocated_budget"`
	MonthlySavingRate decimal.Decimal `json:"monthly_saving_rate"`
	MonthsToGoal      int             `json:"months_to_goal"`
}

// ParseStrategyMode parses a mode name case-insensitively. Unknown names are balanced.
func ParseStrategyMode(s string) StrategyMode {
	switch m := StrategyMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case Aggressive, Conservative:
		return m
	default:
		return Balanced
	}
}

// Simulate splits disposable income between discretionary spending and saving.
// Every mode keeps at least min(minViableSDS*30, disposable) for spending.
func Simulate(disposable, gap, minViableSDS decimal.Decimal, mode StrategyMode) StrategyProjection {
	if !disposable.IsPositive() {
		return StrategyProjection{
			AllocatedBudget:   decimal.Zero,
			MonthlySavingRate: decimal.Zero,
			MonthsToGoal:      UnreachableMonths,
		}
	}

	floor := decimal.Min(minViableSDS.Mul(daysPerMonth), disposable)

	var saving decimal.Decimal
	switch ParseStrategyMode(string(mode)) {
	case Aggressive:
		saving = disposable.Sub(floor)
	case Conservative:
		saving = decimal.Min(disposable.Mul(conservativeSaving), disposable.Sub(floor))
	default:
		saving = decimal.Min(disposable.Mul(balancedSaving), disposable.Sub(floor))
	}

	return StrategyProjection{
		AllocatedBudget:   disposable.Sub(saving),
		MonthlySavingRate: saving,
		MonthsToGoal:      monthsToGoal(gap, saving),
	}
}

// SimulateAll runs every strategy on the same inputs.
func SimulateAll(disposable, gap, minViableSDS decimal.Decimal) map[StrategyMode]StrategyProjection {
	out := make(map[StrategyMode]StrategyProjection, len(Modes))
	for _, m := range Modes {
		out[m] = Simulate(disposable, gap, minViableSDS, m)
	}
	return out
}

func monthsToGoal(gap, saving decimal.Decimal) int {
	if !gap.IsPositive() {
		return 0
	}
	if !saving.IsPositive() {
		return UnreachableMonths
	}
	months := gap.Div(saving).Ceil()
	if months.GreaterThanOrEqual(decimal.NewFromInt(UnreachableMonths)) {
		return UnreachableMonths
	}
	return int(months.IntPart())
}
