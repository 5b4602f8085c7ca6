package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/fingerprint"
	"github.com/dmitrijs2005/truthchain/internal/server/ledger"
)

// CrossCheck verifies that txRef is a successful storeRecord call on the
// ledger's contract whose RecordStored event carries fp and cid, and, when
// submitter is not empty, was sent by submitter. Each failure wraps its own
// sentinel from package common.
func CrossCheck(ctx context.Context, l ledger.Ledger, txRef, fp, cid, submitter string) (*ledger.RecordStoredEvent, error) {
	receipt, err := l.GetReceipt(ctx, txRef)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("%w: %s is unknown or not yet mined, retry later", common.ErrLedgerTxNotFound, txRef)
	}

	if !receipt.Succeeded() {
		return nil, fmt.Errorf("%w: %s reverted", common.ErrLedgerTxFailed, txRef)
	}

	contract := l.ContractAddress()
	if !strings.EqualFold(receipt.To, contract) {
		return nil, fmt.Errorf("%w: sent to %q, want %s", common.ErrWrongContract, receipt.To, contract)
	}

	var event *ledger.RecordStoredEvent
	for _, log := range receipt.Logs {
		ev, err := l.DecodeEvent(log)
		if err != nil || ev == nil {
			continue
		}
		event = ev
		break
	}
	if event == nil {
		return nil, fmt.Errorf("%w: %s", common.ErrEventNotFound, txRef)
	}

	want, err := fingerprint.ToBytes32(fp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if event.Hash != want {
		return nil, fmt.Errorf("%w: event carries 0x%x", common.ErrHashMismatch, event.Hash)
	}

	if event.Cid != cid {
		return nil, fmt.Errorf("%w: event carries %q", common.ErrCidMismatch, event.Cid)
	}

	if submitter != "" && !strings.EqualFold(event.Submitter, submitter) {
		return nil, fmt.Errorf("%w: event submitter is %s", common.ErrSubmitterMismatch, event.Submitter)
	}

	return event, nil
}
