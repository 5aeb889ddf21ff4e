package cmd

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gitlab.com/yelinaung/leverage/internal/coach"
	"gitlab.com/yelinaung/leverage/internal/solvency"
	"gitlab.com/yelinaung/leverage/internal/wealth"
)

var (
	projectInput coach.ProjectionInput
	projectCost  string
	projectRate  string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Price a daily habit in money and health, printed as JSON",
	Long: "Prints what dropping a habit is worth: the compound value of its cost\n" +
		"over 10, 20 and 30 years and its daily calorie and life-minute toll.",
	Example: "  leverage project --age 34 --weight 82 --height 178 --habit cigarette --cost 0.35 --quantity 10",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cost, err := decimal.NewFromString(projectCost)
		if err != nil {
			return err
		}
		rate, err := decimal.NewFromString(projectRate)
		if err != nil {
			return err
		}
		calc, err := wealth.NewCalculator(rate)
		if err != nil {
			return err
		}

		in := projectInput
		in.HabitCost = cost
		res, err := coach.Project(solvency.NewEngine(true), calc, in)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	f := projectCmd.Flags()
	f.IntVar(&projectInput.Age, "age", 0, "Age in years")
	f.StringVar(&projectInput.Gender, "gender", "male", "male or female")
	f.Float64Var(&projectInput.WeightKg, "weight", 0, "Weight in kg")
	f.Float64Var(&projectInput.HeightCm, "height", 0, "Height in cm")
	f.StringVar(&projectInput.ActivityLevel, "activity", "sedentary", "Activity level")
	f.StringVar(&projectInput.HabitName, "habit", "", "Habit to price, e.g. cigarette or beer")
	f.IntVar(&projectInput.DailyQuantity, "quantity", 1, "Units per day")
	f.StringVar(&projectCost, "cost", "0", "Cost of one unit")
	f.StringVar(&projectRate, "rate", wealth.DefaultAnnualRate.String(), "Annual interest rate as a fraction")

	_ = projectCmd.MarkFlagRequired("age")
	_ = projectCmd.MarkFlagRequired("weight")
	_ = projectCmd.MarkFlagRequired("height")

	rootCmd.AddCommand(projectCmd)
}
