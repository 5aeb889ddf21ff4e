package coach

import (
	"math"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/health"
	"gitlab.com/yelinaung/leverage/internal/solvency"
	"gitlab.com/yelinaung/leverage/internal/wealth"
)

// ProjectionInput describes a person and one habit they could drop.
type ProjectionInput struct {
	Age            int             `json:"age"`
	Gender         string          `json:"gender"`
	WeightKg       float64         `json:"weight_kg"`
	HeightCm       float64         `json:"height_cm"`
	ActivityLevel  string          `json:"activity_level"`
	BodyFatPercent *float64        `json:"body_fat_percent,omitempty"`
	AvgDailySteps  *int            `json:"avg_daily_steps,omitempty"`
	HabitName      string          `json:"habit_name"`
	HabitCost      decimal.Decimal `json:"habit_cost"`
	DailyQuantity  int             `json:"daily_quantity"`
}

// UserAnalysis is the energy expenditure estimate of a projection.
type UserAnalysis struct {
	health.Estimate
	BMI float64 `json:"bmi"`
}

// WealthProjection is the compound value of the money the habit costs.
type WealthProjection struct {
	DailySaving  decimal.Decimal `json:"daily_saving"`
	AnnualSaving decimal.Decimal `json:"annual_saving"`
	ROI10Years   decimal.Decimal `json:"roi_10_years"`
	ROI20Years   decimal.Decimal `json:"roi_20_years"`
	ROI30Years   decimal.Decimal `json:"roi_30_years"`
}

// ProjectionResult answers what quitting a habit is worth.
type ProjectionResult struct {
	UserAnalysis     UserAnalysis       `json:"user_analysis"`
	WealthProjection WealthProjection   `json:"wealth_projection"`
	HealthProjection health.HabitImpact `json:"health_projection"`
}

// Projection prices a daily habit in money and health.
func (s *Service) Projection(in ProjectionInput) (ProjectionResult, error) {
	return Project(s.engine, s.wealth, in)
}

// Project prices a habit without a Service, for callers that have no
// database.
func Project(engine *solvency.Engine, calc *wealth.Calculator, in ProjectionInput) (ProjectionResult, error) {
	switch {
	case in.Age <= 0 || in.WeightKg <= 0 || in.HeightCm <= 0:
		return ProjectionResult{}, invalidf("age, weight_kg and height_cm must be positive")
	case in.HabitCost.IsNegative():
		return ProjectionResult{}, invalidf("habit_cost must not be negative")
	case in.DailyQuantity < 0:
		return ProjectionResult{}, invalidf("daily_quantity must not be negative")
	case in.BodyFatPercent != nil && (*in.BodyFatPercent < 0 || *in.BodyFatPercent >= 100):
		return ProjectionResult{}, invalidf("body_fat_percent must be in [0, 100)")
	case in.AvgDailySteps != nil && *in.AvgDailySteps < 0:
		return ProjectionResult{}, invalidf("avg_daily_steps must not be negative")
	}

	est, _ := health.EstimateTDEE(health.Biometrics{
		WeightKg:       in.WeightKg,
		HeightCm:       in.HeightCm,
		Age:            in.Age,
		Sex:            in.Gender,
		ActivityLevel:  in.ActivityLevel,
		BodyFatPercent: in.BodyFatPercent,
		AvgDailySteps:  in.AvgDailySteps,
	})

	daily := in.HabitCost.Mul(decimal.NewFromInt(int64(in.DailyQuantity)))
	p := calc.Project(daily, wealth.Daily)

	impact := engine.Habits().Impact(in.HabitName, in.DailyQuantity)
	if in.DailyQuantity == 0 {
		impact.Calories, impact.LifeMinutesLost = 0, 0
	}

	return ProjectionResult{
		UserAnalysis: UserAnalysis{
			Estimate: est,
			BMI:      math.Round(health.BMI(in.WeightKg, in.HeightCm)*10) / 10,
		},
		WealthProjection: WealthProjection{
			DailySaving:  p.Contribution,
			AnnualSaving: p.AnnualSaving,
			ROI10Years:   p.Years10,
			ROI20Years:   p.Years20,
			ROI30Years:   p.Years30,
		},
		HealthProjection: impact,
	}, nil
}
