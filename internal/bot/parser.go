package bot

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/internal/models"
)

var (
	errMissingAmount = errors.New("amount is required")
	errBadAmount     = errors.New("amount must be a positive number like 5 or 5.50")
	errBadCalories   = errors.New("calories must be a whole number between 1 and 10000")
	errBadQuantity   = errors.New("quantity must be a whole number between 1 and 100")
	errMissingLabel  = errors.New("say what it was, e.g. /vice cigarette 2")
	errTooManyArgs   = errors.New("too many numbers")
	errBadIndex      = errors.New("bill number must match a line of /bills")
)

const (
	maxCalories = 10000
	maxQuantity = 100
)

// amountRegex matches amounts like "5", "5.50", "5,50".
var amountRegex = regexp.MustCompile(`^\d+(?:[.,]\d{1,2})?$`)

// parseAmount parses a strictly positive amount with at most two decimals.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !amountRegex.MatchString(s) {
		return decimal.Zero, errBadAmount
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, errBadAmount
	}
	return amount, nil
}

func parseBoundedInt(s string, maxVal int, errBad error) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > maxVal {
		return 0, errBad
	}
	return n, nil
}

func isNumeric(s string) bool {
	return amountRegex.MatchString(s)
}

// extractCommandArgs strips the /command prefix and an optional @botname suffix.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}

// ParsedSpend is a parsed /spend command.
type ParsedSpend struct {
	Amount      decimal.Decimal
	Currency    string
	Category    string
	Description string
}

// ParseSpendArgs parses "<amount> [CUR] [description] [#category]".
// Currency codes must be supported; a bare word is part of the description.
func ParseSpendArgs(args string) (*ParsedSpend, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, errMissingAmount
	}

	amount, err := parseAmount(fields[0])
	if err != nil {
		return nil, err
	}
	p := &ParsedSpend{Amount: amount}

	rest := fields[1:]
	if len(rest) > 0 {
		code := strings.ToUpper(rest[0])
		if _, ok := models.SupportedCurrencies[code]; ok && len(rest[0]) == 3 {
			p.Currency = code
			rest = rest[1:]
		}
	}

	words := make([]string, 0, len(rest))
	for _, w := range rest {
		if tag, ok := strings.CutPrefix(w, "#"); ok && tag != "" {
			p.Category = strings.ToLower(tag)
			continue
		}
		words = append(words, w)
	}
	p.Description = strings.Join(words, " ")
	return p, nil
}

// ParsedEat is a parsed /eat command. Calories is zero when only a
// description was given.
type ParsedEat struct {
	Calories    int
	Description string
}

// ParseEatArgs parses "<kcal> [description]" or "<description>".
func ParseEatArgs(args string) (*ParsedEat, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, errors.New("tell me the calories or what you ate")
	}

	if _, err := strconv.Atoi(fields[0]); err == nil {
		kcal, err := parseBoundedInt(fields[0], maxCalories, errBadCalories)
		if err != nil {
			return nil, err
		}
		return &ParsedEat{Calories: kcal, Description: strings.Join(fields[1:], " ")}, nil
	}
	return &ParsedEat{Description: strings.Join(fields, " ")}, nil
}

// ParsedVice is a parsed /vice command.
type ParsedVice struct {
	Label    string
	Quantity int
	Cost     decimal.Decimal
}

// ParseViceArgs parses "<label> [quantity] [cost]". The label may span
// several words; the first number ends it.
func ParseViceArgs(args string) (*ParsedVice, error) {
	fields := strings.Fields(args)

	i := 0
	for i < len(fields) && !isNumeric(fields[i]) {
		i++
	}
	if i == 0 {
		return nil, errMissingLabel
	}
	p := &ParsedVice{Label: strings.ToLower(strings.Join(fields[:i], " ")), Quantity: 1}

	numbers := fields[i:]
	switch {
	case len(numbers) > 2:
		return nil, errTooManyArgs
	case len(numbers) >= 1:
		q, err := parseBoundedInt(numbers[0], maxQuantity, errBadQuantity)
		if err != nil {
			return nil, err
		}
		p.Quantity = q
	}
	if len(numbers) == 2 {
		cost, err := parseAmount(numbers[1])
		if err != nil {
			return nil, err
		}
		p.Cost = cost
	}
	return p, nil
}

// ParsedWorkout is a parsed /workout command.
type ParsedWorkout struct {
	Calories    int
	Description string
}

// ParseWorkoutArgs parses "<kcal> [description]".
func ParseWorkoutArgs(args string) (*ParsedWorkout, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return nil, errBadCalories
	}
	kcal, err := parseBoundedInt(fields[0], maxCalories, errBadCalories)
	if err != nil {
		return nil, err
	}
	return &ParsedWorkout{Calories: kcal, Description: strings.Join(fields[1:], " ")}, nil
}

// ParsedPaid is a parsed /paid command. Index is 1-based; Amount is nil
// when the reserved amount should be paid.
type ParsedPaid struct {
	Index  int
	Amount *decimal.Decimal
}

// ParsePaidArgs parses "<n> [amount]".
func ParsePaidArgs(args string) (*ParsedPaid, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return nil, errBadIndex
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return nil, errBadIndex
	}
	p := &ParsedPaid{Index: n}
	if len(fields) == 2 {
		amount, err := parseAmount(fields[1])
		if err != nil {
			return nil, err
		}
		p.Amount = &amount
	}
	return p, nil
}
