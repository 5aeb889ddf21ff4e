// Package report renders budget charts and activity exports.
package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

// ErrNothingToChart is returned when every slice of a chart would be empty.
var ErrNothingToChart = errors.New("nothing to chart")

// Slice is one labelled wedge of a pie chart.
type Slice struct {
	Label string
	Value decimal.Decimal
}

// BudgetSlices splits a cycle's money into pending bills, money already
// spent, what is left to spend and the monthly saving. Non-positive parts
// are left out.
func BudgetSlices(fin solvency.FinancialResult) []Slice {
	candidates := []Slice{
		{Label: "Pending bills", Value: fin.PendingBillsTotal},
		{Label: "Spent", Value: fin.SpentInCycle},
		{Label: "Remaining", Value: fin.RemainingBudget},
		{Label: "Saving", Value: fin.MonthlySavingRate},
	}

	slices := make([]Slice, 0, len(candidates))
	for _, s := range candidates {
		if s.Value.IsPositive() {
			slices = append(slices, s)
		}
	}
	return slices
}

// BudgetChart renders BudgetSlices as a PNG pie chart.
func BudgetChart(fin solvency.FinancialResult, currency string) ([]byte, error) {
	title := fmt.Sprintf("Cycle %s to %s (%s)", fin.CycleStart, fin.NextPayday, currency)
	return renderPie(title, BudgetSlices(fin))
}

// SpendingByCategory sums expense logs per category, largest first.
// Other log kinds are ignored.
func SpendingByCategory(logs []models.ActivityLog) []Slice {
	totals := make(map[string]decimal.Decimal)
	for i := range logs {
		if logs[i].Kind != models.LogKindExpense {
			continue
		}
		category := logs[i].Category
		if category == "" {
			category = "Uncategorized"
		}
		totals[category] = totals[category].Add(logs[i].Amount)
	}

	slices := make([]Slice, 0, len(totals))
	for label, total := range totals {
		slices = append(slices, Slice{Label: label, Value: total})
	}
	sort.Slice(slices, func(i, j int) bool {
		if c := slices[i].Value.Cmp(slices[j].Value); c != 0 {
			return c > 0
		}
		return slices[i].Label < slices[j].Label
	})
	return slices
}

// SpendingChart renders SpendingByCategory as a PNG pie chart.
func SpendingChart(logs []models.ActivityLog, period string) ([]byte, error) {
	return renderPie("Spending by category - "+period, SpendingByCategory(logs))
}

func renderPie(title string, slices []Slice) ([]byte, error) {
	if len(slices) == 0 {
		return nil, ErrNothingToChart
	}

	values := make([]float64, 0, len(slices))
	labels := make([]string, 0, len(slices))
	for _, s := range slices {
		values = append(values, s.Value.InexactFloat64())
		labels = append(labels, s.Label)
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{Text: title}),
		charts.LegendLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}
