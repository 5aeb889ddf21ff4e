package bot

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

// escapeHTML escapes HTML special characters for Telegram HTML messages.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// formatMoney renders an amount with the currency symbol, e.g. €31.30 or CHF 31.30.
func formatMoney(amount decimal.Decimal, currency string) string {
	symbol, ok := models.SupportedCurrencies[currency]
	if !ok {
		symbol = currency
	}
	if r := []rune(symbol); len(r) > 0 && unicode.IsLetter(r[len(r)-1]) {
		symbol += " "
	}
	return symbol + amount.StringFixed(2)
}

func statusEmoji(s solvency.Status) string {
	switch s {
	case solvency.StatusGrowth:
		return "🚀"
	case solvency.StatusRecovery:
		return "🛟"
	default:
		return "⚖️"
	}
}

// formatBudget renders a solvency result as an HTML message.
func formatBudget(res solvency.SolvencyResult, currency string) string {
	fin := res.Financial
	bio := res.Biological

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>Today you can spend %s</b>\n", statusEmoji(fin.Status), formatMoney(fin.SDSToday, currency))
	fmt.Fprintf(&sb, "Status: <code>%s</code> · mode <code>%s</code>\n", fin.Status, fin.ActiveMode)
	fmt.Fprintf(&sb, "Payday %s (%d days)\n\n", fin.NextPayday, fin.DaysUntilPayday)

	fmt.Fprintf(&sb, "💸 Spent this cycle: %s\n", formatMoney(fin.SpentInCycle, currency))
	fmt.Fprintf(&sb, "🧾 Pending bills: %s\n", formatMoney(fin.PendingBillsTotal, currency))
	fmt.Fprintf(&sb, "💰 Remaining budget: %s\n", formatMoney(fin.RemainingBudget, currency))
	if fin.EmergencyGap.IsPositive() {
		fmt.Fprintf(&sb, "🛡 Emergency fund gap: %s\n", formatMoney(fin.EmergencyGap, currency))
	}
	if fin.BelowMinViable {
		sb.WriteString("⚠️ Below your minimum viable daily budget.\n")
	}

	fmt.Fprintf(&sb, "\n🍽 Calories left: <b>%d</b> of %d (%s)\n", bio.SDCRemaining, bio.TargetCalories, bio.Status)
	if bio.WorkoutCredits > 0 {
		fmt.Fprintf(&sb, "🏃 Workout credits: %d kcal\n", bio.WorkoutCredits)
	}
	if bio.LifeMinutesLost > 0 {
		fmt.Fprintf(&sb, "🚬 Life minutes lost today: %d\n", bio.LifeMinutesLost)
	}

	if msg := res.Psychology.Message; msg != "" {
		fmt.Fprintf(&sb, "\n%s", escapeHTML(msg))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatBills renders the pending bills of a cycle as a numbered list,
// matching the numbering /paid expects.
func formatBills(expenses []models.RecurringExpense, pending []solvency.PendingBill, currency string) string {
	if len(expenses) == 0 {
		return "You have no recurring expenses yet."
	}

	isPending := make(map[string]bool, len(pending))
	for _, p := range pending {
		isPending[p.ExpenseID] = true
	}

	var sb strings.Builder
	sb.WriteString("🧾 <b>Recurring expenses</b>\n\n")
	for i := range expenses {
		e := &expenses[i]
		mark := "✅"
		if isPending[e.ID] {
			mark = "⏳"
		}
		amount := formatMoney(e.Amount, currency)
		if e.IsVariable {
			amount = fmt.Sprintf("%s–%s", formatMoney(e.MinAmount, currency), formatMoney(e.MaxAmount, currency))
		}
		fmt.Fprintf(&sb, "%d. %s %s: %s", i+1, mark, escapeHTML(e.Name), amount)
		if e.DueDay > 0 {
			fmt.Fprintf(&sb, " (day %d)", e.DueDay)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n⏳ pending this cycle · ✅ paid or not due\nUse <code>/paid N [amount]</code> to record a payment.")
	return sb.String()
}

// formatGreeting returns a greeting suffix with the user's name.
func formatGreeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + escapeHTML(firstName)
}
