// Package fingerprint computes the digest that binds a submission's text,
// content identifier and timestamp.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout matches JavaScript's Date.prototype.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Compute returns the lowercase hex SHA-256 of text || contentID || timestamp.
// The timestamp must be the exact string that will be stored; reformatting it
// changes the result.
func Compute(text, contentID, timestamp string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte(contentID))
	h.Write([]byte(timestamp))
	return hex.EncodeToString(h.Sum(nil))
}

// Timestamp formats t in UTC with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Verify recomputes the fingerprint and compares it with claimed.
// The comparison ignores case and an optional 0x prefix.
func Verify(text, contentID, timestamp, claimed string) bool {
	return Compute(text, contentID, timestamp) == Normalize(claimed)
}

// Normalize lowercases h and strips a 0x prefix.
func Normalize(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.TrimPrefix(h, "0x")
}

// ToBytes32 decodes a 64 character hex fingerprint (optionally 0x-prefixed)
// into the canonical byte form used on the ledger.
func ToBytes32(h string) ([32]byte, error) {
	var out [32]byte

	n := Normalize(h)
	if len(n) != 64 {
		return out, fmt.Errorf("fingerprint must be 64 hex characters, got %d", len(n))
	}

	b, err := hex.DecodeString(n)
	if err != nil {
		return out, fmt.Errorf("fingerprint is not hex: %w", err)
	}

	copy(out[:], b)
	return out, nil
}
