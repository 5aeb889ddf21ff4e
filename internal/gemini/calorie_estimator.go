package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gitlab.com/yelinaung/leverage/internal/logger"
	"google.golang.org/genai"
)

// MaxMealCalories bounds a single estimate. Anything above is treated as a
// hallucination.
const MaxMealCalories = 5000

// ErrNoEstimate is returned when the model produced no usable estimate.
var ErrNoEstimate = errors.New("no calorie estimate available")

// CalorieEstimate is the model's answer for one meal description.
type CalorieEstimate struct {
	Calories   int     `json:"calories"`
	Confidence float64 `json:"confidence"`
}

const calorieInstruction = "You are a nutrition JSON API. Respond with ONLY a single JSON object."

var calorieSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"calories": {
			Type:        genai.TypeInteger,
			Description: "Estimated total kilocalories of the meal",
		},
		"confidence": {
			Type:        genai.TypeNumber,
			Description: "Confidence score between 0 and 1",
		},
	},
	Required: []string{"calories", "confidence"},
}

// EstimateCalories asks Gemini for the calories of a free-text meal
// description such as "pizza margherita e birra".
func (c *Client) EstimateCalories(ctx context.Context, description string) (CalorieEstimate, error) {
	if c == nil || c.generator == nil {
		return CalorieEstimate{}, fmt.Errorf("gemini client not initialized")
	}

	clean := SanitizeForPrompt(description, MaxDescriptionLength)
	if clean == "" {
		return CalorieEstimate{}, fmt.Errorf("description is required")
	}
	descHash := hashDescription(clean)

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	temp := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: 200,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: calorieInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   calorieSchema,
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildCaloriePrompt(clean)}},
	}}

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, contents, config)
	if err != nil {
		logger.Log.Error().Err(err).Str("description_hash", descHash).Msg("EstimateCalories: Gemini API call failed")
		return CalorieEstimate{}, fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp == nil {
		return CalorieEstimate{}, ErrNoEstimate
	}

	jsonText := extractJSON(resp.Text())
	if jsonText == "" {
		logger.Log.Warn().Str("description_hash", descHash).Msg("EstimateCalories: no JSON in response")
		return CalorieEstimate{}, ErrNoEstimate
	}

	var est CalorieEstimate
	if err := json.Unmarshal([]byte(jsonText), &est); err != nil {
		return CalorieEstimate{}, fmt.Errorf("%w: %v", ErrNoEstimate, err)
	}
	if est.Calories <= 0 || est.Calories > MaxMealCalories {
		logger.Log.Warn().Str("description_hash", descHash).Int("calories", est.Calories).
			Msg("EstimateCalories: estimate out of range")
		return CalorieEstimate{}, ErrNoEstimate
	}
	est.Confidence = min(max(est.Confidence, 0), 1)

	logger.Log.Debug().
		Str("description_hash", descHash).
		Int("calories", est.Calories).
		Float64("confidence", est.Confidence).
		Msg("EstimateCalories: parsed estimate")

	return est, nil
}

func buildCaloriePrompt(description string) string {
	return fmt.Sprintf(`Estimate the calories of this meal: "%s"

Rules:
- Assume a standard single portion unless a quantity is given
- Descriptions may be in Italian or English
- Lower confidence (0.3-0.6) for vague descriptions

Return JSON only:
{"calories": integer, "confidence": 0.0-1.0}`, description)
}
