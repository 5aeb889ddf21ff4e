package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// MinHashSaltLength is the shortest LOG_HASH_SALT accepted.
const MinHashSaltLength = 32

// ErrWeakHashSalt is returned when LOG_HASH_SALT is missing or too short.
var ErrWeakHashSalt = errors.New("LOG_HASH_SALT must be set to at least 32 characters")

var hashSalt = "unset"

// InitHashSalt loads the salt used to hash identifiers in logs.
func InitHashSalt() error {
	salt := os.Getenv("LOG_HASH_SALT")
	if len(salt) < MinHashSaltLength {
		return ErrWeakHashSalt
	}
	hashSalt = salt
	return nil
}

// InitHashSaltForTesting sets the salt without validation.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

func hashID(id int64) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d:%s", id, hashSalt))
	return hex.EncodeToString(sum[:])[:8]
}

// HashUserID creates a privacy-preserving hash of a user ID.
func HashUserID(userID int64) string {
	return hashID(userID)
}

// HashChatID creates a privacy-preserving hash of a chat ID.
func HashChatID(chatID int64) string {
	return hashID(chatID)
}

// SanitizeDescription redacts a free-text description, keeping its shape.
func SanitizeDescription(desc string) string {
	if desc == "" {
		return "<empty>"
	}
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(strings.Fields(desc)), utf8.RuneCountInString(desc))
}

// SanitizeText shows at most a short prefix of user-provided text.
func SanitizeText(text string) string {
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return "<empty>"
	case n <= 10:
		return fmt.Sprintf("<%d chars>", n)
	default:
		return fmt.Sprintf("%s...<%d chars>", string([]rune(text)[:3]), n)
	}
}
