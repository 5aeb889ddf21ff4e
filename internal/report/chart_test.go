package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/leverage/internal/models"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestBudgetSlices(t *testing.T) {
	t.Parallel()

	fin := solvency.FinancialResult{
		PendingBillsTotal: decimal.NewFromInt(800),
		SpentInCycle:      decimal.NewFromInt(120),
		RemainingBudget:   decimal.NewFromInt(-5),
		MonthlySavingRate: decimal.NewFromInt(300),
	}

	got := BudgetSlices(fin)
	require.Len(t, got, 3)
	require.Equal(t, "Pending bills", got[0].Label)
	require.Equal(t, "Spent", got[1].Label)
	require.Equal(t, "Saving", got[2].Label)
}

func TestBudgetChart(t *testing.T) {
	t.Parallel()

	t.Run("renders png", func(t *testing.T) {
		t.Parallel()
		fin := solvency.FinancialResult{
			CycleStart:        "2024-02-27",
			NextPayday:        "2024-03-27",
			PendingBillsTotal: decimal.NewFromInt(800),
			SpentInCycle:      decimal.NewFromInt(120),
			RemainingBudget:   decimal.NewFromInt(600),
		}

		buf, err := BudgetChart(fin, "EUR")
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(buf, pngMagic))
	})

	t.Run("empty result", func(t *testing.T) {
		t.Parallel()
		_, err := BudgetChart(solvency.FinancialResult{}, "EUR")
		require.ErrorIs(t, err, ErrNothingToChart)
	})
}

func TestSpendingByCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		logs []models.ActivityLog
		want map[string]string
	}{
		{
			name: "sums per category",
			logs: []models.ActivityLog{
				{Kind: models.LogKindExpense, Amount: decimal.RequireFromString("12.50"), Category: "food"},
				{Kind: models.LogKindExpense, Amount: decimal.RequireFromString("7.75"), Category: "food"},
				{Kind: models.LogKindExpense, Amount: decimal.NewFromInt(30), Category: "transport"},
			},
			want: map[string]string{"food": "20.25", "transport": "30"},
		},
		{
			name: "blank category is uncategorized",
			logs: []models.ActivityLog{
				{Kind: models.LogKindExpense, Amount: decimal.NewFromInt(5)},
			},
			want: map[string]string{"Uncategorized": "5"},
		},
		{
			name: "ignores other kinds",
			logs: []models.ActivityLog{
				{Kind: models.LogKindFood, Amount: decimal.NewFromInt(9), Category: "food"},
				{Kind: models.LogKindWorkout, Calories: 300},
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SpendingByCategory(tt.logs)
			require.Len(t, got, len(tt.want))
			for _, s := range got {
				require.Equal(t, tt.want[s.Label], s.Value.String(), s.Label)
			}
		})
	}
}

func TestSpendingByCategory_LargestFirst(t *testing.T) {
	t.Parallel()

	got := SpendingByCategory([]models.ActivityLog{
		{Kind: models.LogKindExpense, Amount: decimal.NewFromInt(5), Category: "b"},
		{Kind: models.LogKindExpense, Amount: decimal.NewFromInt(50), Category: "a"},
		{Kind: models.LogKindExpense, Amount: decimal.NewFromInt(5), Category: "a2"},
	})
	require.Equal(t, []string{"a", "a2", "b"}, []string{got[0].Label, got[1].Label, got[2].Label})
}

func TestSpendingChart(t *testing.T) {
	t.Parallel()

	buf, err := SpendingChart([]models.ActivityLog{
		{Kind: models.LogKindExpense, Amount: decimal.NewFromInt(20), Category: "food"},
	}, "March")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf, pngMagic))

	_, err = SpendingChart(nil, "March")
	require.ErrorIs(t, err, ErrNothingToChart)
}
