package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"gitlab.com/yelinaung/leverage/internal/models"
)

var csvHeader = []string{
	"ID", "Date", "Type", "Amount", "Currency", "Calories",
	"Category", "SubType", "Quantity", "Description", "RelatedExpenseID",
}

// LogsCSV writes activity logs as CSV with a header row.
func LogsCSV(logs []models.ActivityLog) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range logs {
		l := &logs[i]
		row := []string{
			strconv.FormatInt(l.ID, 10),
			l.Date,
			string(l.Kind),
			l.Amount.StringFixed(2),
			l.Currency,
			strconv.Itoa(l.Calories),
			l.Category,
			l.SubType,
			strconv.Itoa(l.EffectiveQuantity()),
			l.Description,
			l.RelatedExpenseID,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ChartFilename names a budget chart after the cycle it shows.
func ChartFilename(cycleStart string) string {
	return fmt.Sprintf("budget_%s.png", cycleStart)
}

// CSVFilename names a log export after the cycle it covers.
func CSVFilename(cycleStart string) string {
	return fmt.Sprintf("activity_%s.csv", cycleStart)
}
