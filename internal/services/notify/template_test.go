package notify_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skedy/escalation-service/internal/services/notify"
)

func TestCleanParameter(t *testing.T) {
	assert.Equal(t, "hello world", notify.CleanParameter("hello\nworld"))
	assert.Equal(t, "a b c", notify.CleanParameter("a\tb\tc"))
	assert.Equal(t, "left   right", notify.CleanParameter("left        right"))
	assert.Equal(t, "trimmed", notify.CleanParameter("  trimmed \n"))
	assert.Equal(t, "", notify.CleanParameter("\n\t\n"))
}

func TestCleanParameterIsIdempotent(t *testing.T) {
	inputs := []string{
		"hello\nworld",
		"runs        of spaces",
		"already clean",
		"mix\t of \n everything      here",
	}
	for _, input := range inputs {
		once := notify.CleanParameter(input)
		assert.Equal(t, once, notify.CleanParameter(once), "input %q", input)
	}
}

func TestTruncateParameter(t *testing.T) {
	assert.Equal(t, "short", notify.TruncateParameter("short", 60))

	long := strings.Repeat("x", 100)
	got := notify.TruncateParameter(long, 60)
	assert.Len(t, []rune(got), 60)
	assert.True(t, strings.HasSuffix(got, "..."))

	// Rune-safe: multibyte content is never cut mid-character.
	accented := strings.Repeat("é", 100)
	got = notify.TruncateParameter(accented, 10)
	assert.Len(t, []rune(got), 10)
	assert.Equal(t, strings.Repeat("é", 7)+"...", got)

	// Limits too small for the ellipsis just cut.
	assert.Equal(t, "ab", notify.TruncateParameter("abcdef", 2))
}

func TestPrepareParameter(t *testing.T) {
	got := notify.PrepareParameter("  line one\nline two  ", 100)
	assert.Equal(t, "line one line two", got)

	got = notify.PrepareParameter(strings.Repeat("word\n", 50), notify.HeaderParamMaxLength)
	assert.LessOrEqual(t, len([]rune(got)), notify.HeaderParamMaxLength)
	assert.NotContains(t, got, "\n")
}
