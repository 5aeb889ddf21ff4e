//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/report"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

func main() {
	fin := solvency.FinancialResult{
		CycleStart:        "2026-01-27",
		NextPayday:        "2026-02-27",
		PendingBillsTotal: decimal.NewFromFloat(1150.00),
		SpentInCycle:      decimal.NewFromFloat(412.80),
		RemainingBudget:   decimal.NewFromFloat(687.20),
		MonthlySavingRate: decimal.NewFromFloat(250.00),
	}

	chartData, err := report.BudgetChart(fin, "EUR")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example pay cycle budget chart")
}
