// Package redact strips sensitive information from strings before they are
// logged or returned in error responses: connection credentials, SQL text,
// file paths and stack traces.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order; earlier rules may consume text later rules would match.
var rules = []rule{
	{
		pattern:     regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*`),
		replacement: RedactedStackPlaceholder,
	},
	{
		// userinfo of postgres URLs
		pattern:     regexp.MustCompile(`(?i)\b(postgres(?:ql)?|pgx)://[^@\s/]+@`),
		replacement: "${1}://" + RedactedCredentialPlaceholder + "@",
	},
	{
		// key=value DSN passwords
		pattern:     regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*\S+`),
		replacement: "${1}=" + RedactionPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`\b(SELECT|INSERT INTO|UPDATE|DELETE FROM)\s[^;]*`),
		replacement: "${1} " + RedactedSQLPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?:/[\w.-]+){2,}`),
		replacement: RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
