// Package notify builds and delivers operator notifications over
// WhatsApp, tracking delivery outcomes on the notification record.
package notify

import (
	"regexp"
	"strings"
)

// WhatsApp template parameter limits. Exceeding them fails the whole
// template call, so parameters are cleaned and truncated before sending.
const (
	// HeaderParamMaxLength is the hard limit on header parameters.
	HeaderParamMaxLength = 60
	// BodyParamMaxLength is the hard limit on body parameters.
	BodyParamMaxLength = 1024
	// SafeHistoryLength is the conservative limit for history rendered
	// into a template parameter.
	SafeHistoryLength = 300
	// SafeMessageLength is the conservative limit for the triggering
	// message in a template parameter.
	SafeMessageLength = 100
)

var multiSpace = regexp.MustCompile(`\s{4,}`)

// CleanParameter strips characters WhatsApp rejects in template
// parameters: newlines, tabs and runs of four or more spaces. Cleaning
// an already-clean string is a no-op.
func CleanParameter(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\t", " ")
	text = multiSpace.ReplaceAllString(text, "   ")
	return strings.TrimSpace(text)
}

// TruncateParameter shortens text to at most limit runes, marking the
// cut with an ellipsis.
func TruncateParameter(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// PrepareParameter cleans and truncates in one step.
func PrepareParameter(text string, limit int) string {
	return TruncateParameter(CleanParameter(text), limit)
}
