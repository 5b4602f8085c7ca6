package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", fmt.Errorf("%w: text is required", ErrValidation), KindValidation},
		{"ticket counts as validation", fmt.Errorf("%w: expired", ErrInvalidTicket), KindValidation},
		{"upstream", fmt.Errorf("pin: %w", ErrUpstreamUnavailable), KindUpstreamUnavailable},
		{"tx not found", ErrLedgerTxNotFound, KindLedgerTxNotFound},
		{"tx failed", ErrLedgerTxFailed, KindLedgerTxFailed},
		{"wrong contract", ErrWrongContract, KindWrongContract},
		{"event", ErrEventNotFound, KindEventNotFound},
		{"hash", ErrHashMismatch, KindHashMismatch},
		{"cid", fmt.Errorf("%w: got bafy999", ErrCidMismatch), KindCidMismatch},
		{"submitter", ErrSubmitterMismatch, KindSubmitterMismatch},
		{"recompute", ErrHashVerificationFailed, KindHashVerificationFailed},
		{"duplicate", fmt.Errorf("db: %w", ErrDuplicateRecord), KindDuplicateRecord},
		{"unknown", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsCrossCheckFailure(t *testing.T) {
	assert.True(t, IsCrossCheckFailure(ErrCidMismatch))
	assert.True(t, IsCrossCheckFailure(fmt.Errorf("x: %w", ErrWrongContract)))
	assert.False(t, IsCrossCheckFailure(ErrLedgerTxNotFound))
	assert.False(t, IsCrossCheckFailure(ErrUpstreamUnavailable))
	assert.False(t, IsCrossCheckFailure(nil))
}

func TestVerificationModeValid(t *testing.T) {
	assert.True(t, ModeLive.Valid())
	assert.True(t, ModeOfflineTest.Valid())
	assert.False(t, VerificationMode("mock").Valid())
}

func TestFromKind(t *testing.T) {
	assert.ErrorIs(t, FromKind(KindCidMismatch), ErrCidMismatch)
	assert.ErrorIs(t, FromKind(KindValidation), ErrValidation)
	assert.ErrorIs(t, FromKind("Nope"), ErrorInternal)

	for _, k := range kinds {
		assert.Equal(t, k.kind, KindOf(FromKind(k.kind)))
	}
}
