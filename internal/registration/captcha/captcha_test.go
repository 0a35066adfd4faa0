package captcha

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducesSixCharAnswers(t *testing.T) {
	for range 50 {
		c, err := New()
		require.NoError(t, err)
		assert.Len(t, c.Display(), 6)
		for _, r := range c.Display() {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestMatch(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.True(t, c.Match(c.Display()))
	assert.False(t, c.Match(""))
	assert.False(t, c.Match(c.Display()+"x"))
	assert.False(t, c.Match(strings.Repeat("?", 6)))
}

func TestRefreshReplacesAnswer(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	// Collisions are possible but vanishingly unlikely across ten rounds.
	same := 0
	prev := c
	for range 10 {
		next, err := prev.Refresh()
		require.NoError(t, err)
		if next.Display() == prev.Display() {
			same++
		}
		prev = next
	}
	assert.Less(t, same, 10)
}
