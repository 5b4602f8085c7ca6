// Package common defines shared constants and sentinel errors used across
// the server and the command line client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Intake errors: the user must resubmit.
	ErrValidation = errors.New("validation error")

	// Content store or ledger unreachable or misconfigured.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Cross-check failures.
	ErrLedgerTxNotFound  = errors.New("ledger transaction not found")
	ErrLedgerTxFailed    = errors.New("ledger transaction failed")
	ErrWrongContract     = errors.New("transaction was not sent to the configured contract")
	ErrEventNotFound     = errors.New("RecordStored event not found in transaction")
	ErrHashMismatch      = errors.New("event hash does not match fingerprint")
	ErrCidMismatch       = errors.New("event CID does not match content identifier")
	ErrSubmitterMismatch = errors.New("event submitter does not match wallet address")

	// Recomputed fingerprint differs from the claimed one.
	ErrHashVerificationFailed = errors.New("hash verification failed")

	// Fingerprint already stored.
	ErrDuplicateRecord = errors.New("duplicate record")

	// Intake ticket errors.
	ErrInvalidTicket = errors.New("invalid intake ticket")
)

// Kind is the wire name of an error class.
type Kind string

const (
	KindValidation             Kind = "ValidationError"
	KindUpstreamUnavailable    Kind = "UpstreamUnavailable"
	KindLedgerTxNotFound       Kind = "LedgerTxNotFound"
	KindLedgerTxFailed         Kind = "LedgerTxFailed"
	KindWrongContract          Kind = "WrongContract"
	KindEventNotFound          Kind = "EventNotFound"
	KindHashMismatch           Kind = "HashMismatch"
	KindCidMismatch            Kind = "CidMismatch"
	KindSubmitterMismatch      Kind = "SubmitterMismatch"
	KindHashVerificationFailed Kind = "HashVerificationFailed"
	KindDuplicateRecord        Kind = "DuplicateRecord"
	KindInternal               Kind = "Internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrValidation, KindValidation},
	{ErrInvalidTicket, KindValidation},
	{ErrUpstreamUnavailable, KindUpstreamUnavailable},
	{ErrLedgerTxNotFound, KindLedgerTxNotFound},
	{ErrLedgerTxFailed, KindLedgerTxFailed},
	{ErrWrongContract, KindWrongContract},
	{ErrEventNotFound, KindEventNotFound},
	{ErrHashMismatch, KindHashMismatch},
	{ErrCidMismatch, KindCidMismatch},
	{ErrSubmitterMismatch, KindSubmitterMismatch},
	{ErrHashVerificationFailed, KindHashVerificationFailed},
	{ErrDuplicateRecord, KindDuplicateRecord},
}

// KindOf maps err to its wire kind. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsCrossCheckFailure reports whether err rejects a submission because the
// ledger data disagrees with it, as opposed to an infrastructure problem.
func IsCrossCheckFailure(err error) bool {
	switch KindOf(err) {
	case KindLedgerTxFailed, KindWrongContract, KindEventNotFound,
		KindHashMismatch, KindCidMismatch, KindSubmitterMismatch:
		return true
	}
	return false
}

// FromKind returns the sentinel for a wire kind, or ErrorInternal.
func FromKind(k Kind) error {
	for _, e := range kinds {
		if e.kind == k {
			return e.err
		}
	}
	return ErrorInternal
}
