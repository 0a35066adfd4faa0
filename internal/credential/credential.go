// Package credential derives the wire credential for the challenge-response
// login handshake. The upstream authentication server expects
// SHA1(password + nonce) as a lowercase hex string; the plaintext password
// never crosses the wire. SHA-1 is what the existing server verifies against,
// so the digest choice is fixed by the wire contract.
package credential

import (
	"crypto/sha1"
	"encoding/hex"

	dErrors "tradegate/pkg/domain-errors"
)

// Hash combines a password and a server-issued nonce into the wire credential.
// Both inputs are treated as UTF-8, matching how the server computes its side
// of the comparison. The result is transient: callers must not log or persist
// it beyond the single login submission it was derived for.
func Hash(password, nonce string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password must not be empty")
	}
	sum := sha1.Sum([]byte(password + nonce))
	return hex.EncodeToString(sum[:]), nil
}
