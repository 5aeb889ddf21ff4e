// Package models defines the domain entities for the coaching backend.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency assumed for profiles and logs that do not name one.
const DefaultCurrency = "EUR"

// DefaultWeekendMultiplier weighs weekend days the same as weekdays.
const DefaultWeekendMultiplier = 1.0

// DefaultMinViableSDS is the daily spend floor used when a profile has none.
var DefaultMinViableSDS = decimal.NewFromInt(5)

// SupportedCurrencies lists the currency codes accepted on profiles and logs.
var SupportedCurrencies = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"CHF": "CHF",
	"SGD": "S$",
	"JPY": "¥",
	"AUD": "A$",
	"CAD": "C$",
}

// LogKind is the type of event recorded by an ActivityLog.
type LogKind string

// Activity log kinds.
const (
	LogKindExpense      LogKind = "expense"
	LogKindFood         LogKind = "food"
	LogKindViceConsumed LogKind = "vice_consumed"
	LogKindWorkout      LogKind = "workout"
)

// Valid reports whether k is one of the known log kinds.
func (k LogKind) Valid() bool {
	switch k {
	case LogKindExpense, LogKindFood, LogKindViceConsumed, LogKindWorkout:
		return true
	}
	return false
}

// User represents a Telegram user.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Preferences are the user's budgeting knobs.
type Preferences struct {
	WeekendMultiplier float64         `json:"weekend_multiplier"`
	MinViableSDS      decimal.Decimal `json:"min_viable_sds"`
	StrategyMode      string          `json:"strategy_mode"`
	EnableWindfall    bool            `json:"enable_windfall"`
}

// DefaultPreferences returns the preferences applied to new profiles.
func DefaultPreferences() Preferences {
	return Preferences{
		WeekendMultiplier: DefaultWeekendMultiplier,
		MinViableSDS:      DefaultMinViableSDS,
		StrategyMode:      "balanced",
		EnableWindfall:    true,
	}
}

// Profile is a user's financial and biometric baseline.
type Profile struct {
	UserID          int64           `json:"user_id"`
	LiquidBalance   decimal.Decimal `json:"current_liquid_balance"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	PaydayDay       int             `json:"payday_day"`
	EmergencyTarget decimal.Decimal `json:"emergency_target"`
	TDEEKcal        int             `json:"tdee_kcal"`
	WeightKg        float64         `json:"weight_kg"`
	HeightCm        float64         `json:"height_cm"`
	Age             int             `json:"age"`
	Sex             string          `json:"sex"`
	ActivityLevel   string          `json:"activity_level"`
	BodyFatPercent  *float64        `json:"body_fat_percent,omitempty"`
	AvgDailySteps   *int            `json:"avg_daily_steps,omitempty"`
	Currency        string          `json:"currency"`
	Preferences     Preferences     `json:"preferences"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RecurringExpense is a bill that comes due every cycle or in selected months.
type RecurringExpense struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	IsVariable    bool            `json:"is_variable"`
	MinAmount     decimal.Decimal `json:"min_amount"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	PaymentMonths []int           `json:"payment_months"`
	DueDay        int             `json:"due_day"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DueIn reports whether the expense is due in the given month.
// An empty month list means the expense is due every cycle.
func (e *RecurringExpense) DueIn(month time.Month) bool {
	if len(e.PaymentMonths) == 0 {
		return true
	}
	for _, m := range e.PaymentMonths {
		if time.Month(m) == month {
			return true
		}
	}
	return false
}

// ActivityLog is an immutable record of a single user event.
type ActivityLog struct {
	ID               int64           `json:"id,omitempty"`
	UserID           int64           `json:"user_id,omitempty"`
	Date             string          `json:"date"`
	Kind             LogKind         `json:"log_type"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency,omitempty"`
	Calories         int             `json:"calories"`
	Category         string          `json:"category,omitempty"`
	SubType          string          `json:"sub_type,omitempty"`
	Quantity         int             `json:"quantity,omitempty"`
	Description      string          `json:"description,omitempty"`
	RelatedExpenseID string          `json:"related_expense_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at,omitzero"`
}

// EffectiveQuantity returns the logged quantity, defaulting to 1.
func (l *ActivityLog) EffectiveQuantity() int {
	if l.Quantity <= 0 {
		return 1
	}
	return l.Quantity
}
