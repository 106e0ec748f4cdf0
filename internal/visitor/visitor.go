// Package visitor derives soft, anonymous identifiers for analytics.
// The fingerprint is a truncated hash of IP and user agent: stable enough
// for deduplication, deliberately not unique and not PII-safe.
package visitor

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// idLength is the number of hex characters kept from the SHA-256 digest.
const idLength = 16

// ID returns a deterministic fingerprint for an ip / user-agent pair.
// Empty inputs still produce a valid (degenerate) value.
func ID(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])[:idLength]
}

// SessionID returns the caller-provided session id when present,
// otherwise a freshly generated one.
func SessionID(provided string) string {
	if trimmed := strings.TrimSpace(provided); trimmed != "" {
		return trimmed
	}
	return uuid.NewString()
}
