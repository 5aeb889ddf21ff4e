package solvency

import (
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/models"
)

// SpentInCycle sums discretionary spending logged on or after cycleStart.
// Bill payments are liabilities and are left out.
func SpentInCycle(logs []models.ActivityLog, cycleStart time.Time) decimal.Decimal {
	total := decimal.Zero
	for i := range logs {
		l := &logs[i]
		if l.RelatedExpenseID != "" {
			continue
		}
		if l.Kind != models.LogKindExpense && l.Kind != models.LogKindViceConsumed {
			continue
		}
		d, ok := ParseDate(l.Date)
		if !ok || d.Before(cycleStart) {
			continue
		}
		total = total.Add(l.Amount)
	}
	return total
}
