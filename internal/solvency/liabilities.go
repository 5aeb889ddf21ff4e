package solvency

import (
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/models"
)

// PendingBill is a recurring expense still owed in the current cycle.
type PendingBill struct {
	ExpenseID      string          `json:"id"`
	Name           string          `json:"name"`
	AmountReserved decimal.Decimal `json:"amount_reserved"`
	IsEstimate     bool            `json:"is_estimate"`
}

// Liabilities are the bills still due before the next payday.
type Liabilities struct {
	PendingMax decimal.Decimal
	PendingAvg decimal.Decimal
	Windfall   decimal.Decimal
	Bills      []PendingBill
}

var two = decimal.NewFromInt(2)

// with returns a new Liabilities that also owes e.
func (l Liabilities) with(e models.RecurringExpense) Liabilities {
	bills := make([]PendingBill, len(l.Bills), len(l.Bills)+1)
	copy(bills, l.Bills)

	if !e.IsVariable {
		return Liabilities{
			PendingMax: l.PendingMax.Add(e.Amount),
			PendingAvg: l.PendingAvg.Add(e.Amount),
			Windfall:   l.Windfall,
			Bills:      append(bills, PendingBill{ExpenseID: e.ID, Name: e.Name, AmountReserved: e.Amount}),
		}
	}

	return Liabilities{
		PendingMax: l.PendingMax.Add(e.MaxAmount),
		PendingAvg: l.PendingAvg.Add(e.MinAmount.Add(e.MaxAmount).Div(two)),
		Windfall:   l.Windfall.Add(e.MaxAmount.Sub(e.MinAmount)),
		Bills:      append(bills, PendingBill{ExpenseID: e.ID, Name: e.Name, AmountReserved: e.MaxAmount, IsEstimate: true}),
	}
}

// paidExpenseIDs returns the expenses settled by a log dated on or after start.
func paidExpenseIDs(logs []models.ActivityLog, start time.Time) map[string]struct{} {
	paid := make(map[string]struct{})
	for i := range logs {
		if logs[i].RelatedExpenseID == "" {
			continue
		}
		d, ok := ParseDate(logs[i].Date)
		if !ok || d.Before(start) {
			continue
		}
		paid[logs[i].RelatedExpenseID] = struct{}{}
	}
	return paid
}

// AggregateLiabilities folds the recurring expenses due in the cycle's payday
// month that have not been paid since the cycle started.
func AggregateLiabilities(expenses []models.RecurringExpense, cycle PayCycle, logs []models.ActivityLog) Liabilities {
	paid := paidExpenseIDs(logs, cycle.Start)

	acc := Liabilities{
		PendingMax: decimal.Zero,
		PendingAvg: decimal.Zero,
		Windfall:   decimal.Zero,
	}
	for _, e := range expenses {
		if !e.DueIn(cycle.NextPayday.Month()) {
			continue
		}
		if _, ok := paid[e.ID]; ok && e.ID != "" {
			continue
		}
		acc = acc.with(e)
	}
	return acc
}
