package gateway

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxMessageLength  = 500
	maxUsernameLength = 50
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	schemePattern = regexp.MustCompile(`(?i)javascript:|vbscript:|onload=|onerror=`)
)

// truncateRunes caps s at max characters. Counting runes rather than bytes
// keeps multibyte text from being cut mid-character into invalid UTF-8.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// SanitizeMessage strips markup and script schemes from a chat message and
// caps it at 500 characters.
func SanitizeMessage(message string) string {
	message = tagPattern.ReplaceAllString(message, "")
	message = schemePattern.ReplaceAllString(message, "")
	message = strings.TrimSpace(message)

	return truncateRunes(message, maxMessageLength)
}

// SanitizeUsername applies the message rules with the 50 character cap.
func SanitizeUsername(username string) string {
	return truncateRunes(SanitizeMessage(username), maxUsernameLength)
}
