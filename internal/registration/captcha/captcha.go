// Package captcha issues short human-verification challenges. The answer is
// held by the challenge and compared in constant time; it is never exposed to
// callers, only rendered for display.
package captcha

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"strings"
)

const answerLength = 6

// alphabet excludes visually ambiguous characters (0/O, 1/l/I).
const alphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Challenge is a single verification round. A Challenge is immutable; a
// failed round is replaced via Refresh rather than reused.
type Challenge struct {
	answer string
}

// New generates a fresh challenge.
func New() (*Challenge, error) {
	buf := make([]byte, answerLength)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating captcha: %w", err)
	}
	var b strings.Builder
	for _, v := range buf {
		b.WriteByte(alphabet[int(v)%len(alphabet)])
	}
	return &Challenge{answer: b.String()}, nil
}

// Display returns the text to render for the user.
func (c *Challenge) Display() string {
	return c.answer
}

// Match reports whether the submitted answer is correct. Comparison is
// case-sensitive and constant-time.
func (c *Challenge) Match(answer string) bool {
	if len(answer) != len(c.answer) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(answer), []byte(c.answer)) == 1
}

// Refresh returns a replacement challenge, used after a failed round so the
// same answer cannot be brute-forced.
func (c *Challenge) Refresh() (*Challenge, error) {
	return New()
}
