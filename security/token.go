package security

import (
	"context"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // G505: SHA-1 only condenses random bytes into a 40 hex char token
	"encoding/hex"
	"fmt"
	"io"
)

// tokenEntropyBytes is the number of random bytes digested into each token.
const tokenEntropyBytes = 256

// TokenLength is the length of every generated token (hex encoded SHA-1).
const TokenLength = 2 * sha1.Size

// randReader is the randomness source. Tests may replace it.
var randReader io.Reader = rand.Reader

// GenerateToken produces an opaque bearer token: the lowercase hex SHA-1
// digest of 256 cryptographically random bytes. Generated tokens are never
// checked for collisions.
func GenerateToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	buf := make([]byte, tokenEntropyBytes)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	sum := sha1.Sum(buf) //nolint:gosec // see import
	return hex.EncodeToString(sum[:]), nil
}
