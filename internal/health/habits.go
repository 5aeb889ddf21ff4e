package health

import (
	"strings"
)

// LifeMinutesPerCigarette is the life expectancy cost tracked per cigarette.
const LifeMinutesPerCigarette = 11

// Canonical habit keys.
const (
	HabitFastFood     = "fast food"
	HabitAlcohol      = "alcol"
	HabitSugaryDrinks = "bevande zuccherate"
	HabitSnacks       = "snack"
	HabitSweets       = "dolci"
	HabitCigarettes   = "sigarette"
)

var smokingPatterns = []string{"sigarett", "cigarette", "fum", "smok", "tabacco", "tobacco"}

type habitEntry struct {
	key      string
	kcal     int
	patterns []string
}

// HabitImpact is the effect of consuming a habit a number of times.
type HabitImpact struct {
	Habit           string `json:"habit,omitempty"`
	Calories        int    `json:"daily_kcal"`
	LifeMinutesLost int    `json:"daily_life_minutes"`
	Known           bool   `json:"known"`
}

// HabitTable resolves free-text habit labels to calorie costs.
// It is immutable after construction and safe for concurrent use.
type HabitTable struct {
	entries []habitEntry
}

// NewHabitTable returns the default habit table with Italian and English aliases.
// Entries are matched in order, so more specific patterns come first.
func NewHabitTable() *HabitTable {
	return &HabitTable{entries: []habitEntry{
		{key: HabitFastFood, kcal: 1200, patterns: []string{"fast food", "fastfood", "burger", "hamburger", "kebab", "mcdonald"}},
		{key: HabitSugaryDrinks, kcal: 140, patterns: []string{"bevande zuccherate", "bevanda zuccherata", "sugary drink", "soda", "coca", "bibita"}},
		{key: HabitAlcohol, kcal: 200, patterns: []string{"alcol", "alcohol", "birra", "beer", "vino", "wine", "spritz", "cocktail"}},
		{key: HabitSnacks, kcal: 300, patterns: []string{"snack", "patatine", "chips"}},
		{key: HabitSweets, kcal: 400, patterns: []string{"dolci", "dolce", "sweet", "dessert", "cioccolat", "chocolate", "gelato", "ice cream", "candy", "caramell"}},
		{key: HabitCigarettes, kcal: 0, patterns: smokingPatterns},
	}}
}

// Lookup returns the canonical habit key and calorie cost for a label.
func (t *HabitTable) Lookup(label string) (string, int, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return "", 0, false
	}
	for _, e := range t.entries {
		if containsAny(l, e.patterns) {
			return e.key, e.kcal, true
		}
	}
	return "", 0, false
}

// Impact returns the calorie and life-minute cost of qty units of a habit.
// A non-positive qty counts as one.
func (t *HabitTable) Impact(label string, qty int) HabitImpact {
	if qty <= 0 {
		qty = 1
	}

	var impact HabitImpact
	if key, kcal, ok := t.Lookup(label); ok {
		impact = HabitImpact{Habit: key, Calories: kcal * qty, Known: true}
	}
	// Smoking is tracked even when another habit matched first.
	if containsAny(strings.ToLower(label), smokingPatterns) {
		impact.LifeMinutesLost = LifeMinutesPerCigarette * qty
		impact.Known = true
		if impact.Habit == "" {
			impact.Habit = HabitCigarettes
		}
	}
	return impact
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
