package solvency

import (
	"math"
	"strings"
	"time"

	"gitlab.com/yelinaung/leverage/internal/health"
	"gitlab.com/yelinaung/leverage/internal/models"
)

// Calorie budget states.
const (
	BioSafe       = "SAFE"
	BioLimit      = "LIMIT"
	BioOverBudget = "OVER_BUDGET"
)

// TDEE sources reported in BiologicalResult.
const (
	TDEESourceProfile  = "profile"
	TDEESourceFallback = "fallback"
)

const (
	overweightBMI  = 25.0
	deficitFactor  = 0.85
	limitThreshold = 300
)

// BiologicalResult is the calorie side of a solvency calculation.
type BiologicalResult struct {
	SDCRemaining    int    `json:"sdc_remaining"`
	ConsumedToday   int    `json:"consumed_today"`
	TDEEBase        int    `json:"tdee_base"`
	TargetCalories  int    `json:"target_calories"`
	DeficitApplied  bool   `json:"deficit_applied"`
	WorkoutCredits  int    `json:"workout_credits_kcal"`
	LifeMinutesLost int    `json:"life_minutes_lost_today"`
	TDEESource      string `json:"tdee_source"`
	Status          string `json:"status"`
}

// BioBudget computes today's remaining calorie budget. The result may be
// negative when the user is over budget.
func (e *Engine) BioBudget(profile *models.Profile, logs []models.ActivityLog, today time.Time) BiologicalResult {
	today = Day(today)
	base, source := baselineTDEE(profile)

	target := base
	deficit := false
	if bmi := health.BMI(profile.WeightKg, profile.HeightCm); bmi > overweightBMI {
		target = int(math.Round(float64(base) * deficitFactor))
		deficit = true
	}

	var consumed, credits, minutes int
	for i := range logs {
		l := &logs[i]
		d, ok := ParseDate(l.Date)
		if !ok || !d.Equal(today) {
			continue
		}

		if l.Kind == models.LogKindWorkout {
			if l.Calories > 0 {
				credits += l.Calories
			}
			continue
		}

		var impact health.HabitImpact
		if isVice(l) && strings.TrimSpace(l.SubType) != "" {
			impact = e.Habits().Impact(l.SubType, l.EffectiveQuantity())
			minutes += impact.LifeMinutesLost
		}

		switch {
		case l.Calories > 0:
			consumed += l.Calories
		case impact.Known:
			consumed += impact.Calories
		}
	}

	remaining := target - consumed + credits
	status := BioSafe
	switch {
	case remaining < 0:
		status = BioOverBudget
	case remaining < limitThreshold:
		status = BioLimit
	}

	return BiologicalResult{
		SDCRemaining:    remaining,
		ConsumedToday:   consumed,
		TDEEBase:        base,
		TargetCalories:  target,
		DeficitApplied:  deficit,
		WorkoutCredits:  credits,
		LifeMinutesLost: minutes,
		TDEESource:      source,
		Status:          status,
	}
}

func baselineTDEE(p *models.Profile) (int, string) {
	if p.TDEEKcal > 0 {
		return p.TDEEKcal, TDEESourceProfile
	}

	est, ok := health.EstimateTDEE(health.Biometrics{
		WeightKg:       p.WeightKg,
		HeightCm:       p.HeightCm,
		Age:            p.Age,
		Sex:            p.Sex,
		ActivityLevel:  p.ActivityLevel,
		BodyFatPercent: p.BodyFatPercent,
		AvgDailySteps:  p.AvgDailySteps,
	})
	if !ok {
		return health.FallbackTDEE, TDEESourceFallback
	}
	return est.TDEE, est.Method
}

func isVice(l *models.ActivityLog) bool {
	if l.Kind == models.LogKindViceConsumed {
		return true
	}
	c := strings.TrimSpace(l.Category)
	return strings.EqualFold(c, "Vizio") || strings.EqualFold(c, "vice")
}
