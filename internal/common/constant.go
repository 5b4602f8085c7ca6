package common

// VerificationMode tells how a record was confirmed before it was stored.
type VerificationMode string

const (
	// ModeLive records were cross-checked against a ledger receipt.
	ModeLive VerificationMode = "live"
	// ModeOfflineTest records never touched a ledger; the tx ref is a placeholder.
	ModeOfflineTest VerificationMode = "offline-test"
)

// Valid reports whether m is one of the known modes.
func (m VerificationMode) Valid() bool {
	return m == ModeLive || m == ModeOfflineTest
}

// DefaultAllowedFileTypes is the MIME allow-list applied at intake.
var DefaultAllowedFileTypes = []string{"image/jpeg", "image/png", "image/gif", "video/mp4", "video/webm"}

// DefaultMaxUploadBytes limits a single intake file.
const DefaultMaxUploadBytes int64 = 50 << 20
