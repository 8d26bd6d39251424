package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 140))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 4))

	// A cut landing mid-rune backs off to the boundary so the result
	// stays valid UTF-8.
	s := strings.Repeat("a", 139) + "π rules"
	out := truncate(s, 140)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, strings.Repeat("a", 139)+"…", out)

	// Multi-byte content throughout.
	out = truncate(strings.Repeat("∀", 100), 10)
	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out)-len("…"), 10)
}
