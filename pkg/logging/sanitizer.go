package logging

import (
	"regexp"
)

const (
	// MaxSQLLogLength is the maximum length of SQL text to log
	MaxSQLLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match potential API keys
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)

	// Pattern to match bearer tokens
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_.]+`)
)

// SanitizeError sanitizes error messages that might contain credentials
// before they reach the logs. LLM client errors can echo request headers.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := apiKeyPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)

	return sanitized
}

// SanitizeText applies the same credential redaction to arbitrary text,
// for error strings that arrive already formatted.
func SanitizeText(s string) string {
	sanitized := apiKeyPattern.ReplaceAllString(s, "${1}="+RedactedText)
	return bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
}

// SanitizeSQL truncates SQL text for logging. Chat-supplied DDL batches can
// run to thousands of characters; the logs only need the head.
func SanitizeSQL(sql string) string {
	if len(sql) > MaxSQLLogLength {
		return sql[:MaxSQLLogLength] + "..."
	}
	return sql
}
