package exchange

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/leverage/internal/models"
)

// NormalizeLogs returns a copy of logs with every positive amount expressed
// in currency. Logs without a currency are assumed to already use it.
// Any conversion failure fails the whole call so the engine never sees a
// partially converted history.
func NormalizeLogs(ctx context.Context, conv Converter, logs []models.ActivityLog, currency string) ([]models.ActivityLog, error) {
	target := normalizeCode(currency)
	if target == "" {
		target = models.DefaultCurrency
	}

	out := make([]models.ActivityLog, len(logs))
	for i, l := range logs {
		from := normalizeCode(l.Currency)
		if from == "" || from == target || !l.Amount.IsPositive() {
			l.Currency = target
			out[i] = l
			continue
		}
		if conv == nil {
			return nil, fmt.Errorf("failed to convert log %d from %s: no converter configured", l.ID, from)
		}

		res, err := conv.Convert(ctx, l.Amount, from, target)
		if err != nil {
			return nil, fmt.Errorf("failed to convert log %d from %s: %w", l.ID, from, err)
		}
		l.Amount = res.Amount
		l.Currency = target
		out[i] = l
	}
	return out, nil
}
