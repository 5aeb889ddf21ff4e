package gemini

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MaxDescriptionLength is the longest meal description sent to the model.
const MaxDescriptionLength = 200

// SanitizeForPrompt strips characters that could break the prompt structure,
// collapses whitespace and truncates to maxLength bytes.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.Join(strings.Fields(input), " ")

	if len(input) > maxLength {
		input = strings.TrimSpace(strings.ToValidUTF8(input[:maxLength], ""))
	}
	return input
}

// extractJSON returns the outermost JSON object in text. The model
// occasionally adds a preamble even in JSON mode.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(text, "}")
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

func hashDescription(description string) string {
	sum := sha256.Sum256([]byte(description))
	return hex.EncodeToString(sum[:8])
}
