// Package health estimates daily energy expenditure and the calorie impact of habits.
package health

import (
	"strings"
)

// FallbackTDEE is used when neither an explicit TDEE nor usable biometrics are available.
const FallbackTDEE = 2000

// Estimation methods reported with an Estimate.
const (
	MethodKatchMcArdle = "katch_mcardle"
	MethodMifflinStJeor = "mifflin_st_jeor"
)

// Activity multiplier sources reported with an Estimate.
const (
	SourceDeclared = "declared_level"
	SourceSteps    = "step_tracker"
)

// activityMultipliers maps declared activity levels to their TDEE multiplier.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// Biometrics are the inputs of a TDEE estimate.
type Biometrics struct {
	WeightKg       float64
	HeightCm       float64
	Age            int
	Sex            string
	ActivityLevel  string
	BodyFatPercent *float64
	AvgDailySteps  *int
}

// Estimate is a derived daily energy expenditure.
type Estimate struct {
	TDEE           int    `json:"tdee"`
	BMR            int    `json:"bmr"`
	Method         string `json:"method"`
	ActivitySource string `json:"activity_source"`
}

// EstimateTDEE derives BMR and TDEE from biometrics.
// Katch-McArdle is used when body fat is known, Mifflin-St Jeor otherwise.
// Returns ok=false when weight, height or age are missing.
func EstimateTDEE(b Biometrics) (Estimate, bool) {
	if b.WeightKg <= 0 || b.HeightCm <= 0 || b.Age <= 0 {
		return Estimate{}, false
	}

	var bmr float64
	var method string
	if b.BodyFatPercent != nil && *b.BodyFatPercent > 0 && *b.BodyFatPercent < 100 {
		leanMass := b.WeightKg * (1 - *b.BodyFatPercent/100)
		bmr = 370 + 21.6*leanMass
		method = MethodKatchMcArdle
	} else {
		bmr = 10*b.WeightKg + 6.25*b.HeightCm - 5*float64(b.Age)
		if isMale(b.Sex) {
			bmr += 5
		} else {
			bmr -= 161
		}
		method = MethodMifflinStJeor
	}
	if bmr <= 0 {
		return Estimate{}, false
	}

	multiplier, source := ActivityMultiplier(b.ActivityLevel, b.AvgDailySteps)

	return Estimate{
		TDEE:           int(bmr * multiplier),
		BMR:            int(bmr),
		Method:         method,
		ActivitySource: source,
	}, true
}

// ActivityMultiplier picks the TDEE multiplier. A positive step average wins
// over the declared level; unknown levels count as sedentary.
func ActivityMultiplier(level string, avgDailySteps *int) (float64, string) {
	if avgDailySteps != nil && *avgDailySteps > 0 {
		steps := *avgDailySteps
		switch {
		case steps < 5000:
			return 1.2, SourceSteps
		case steps < 7500:
			return 1.375, SourceSteps
		case steps < 10000:
			return 1.55, SourceSteps
		default:
			return 1.725, SourceSteps
		}
	}

	key := strings.ToLower(strings.TrimSpace(level))
	key = strings.ReplaceAll(key, " ", "_")
	if m, ok := activityMultipliers[key]; ok {
		return m, SourceDeclared
	}
	return activityMultipliers["sedentary"], SourceDeclared
}

// BMI returns weight_kg / height_m². Zero when either input is missing.
func BMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	h := heightCm / 100
	return weightKg / (h * h)
}

func isMale(sex string) bool {
	switch strings.ToUpper(strings.TrimSpace(sex)) {
	case "M", "MALE", "MAN", "UOMO":
		return true
	}
	return false
}
