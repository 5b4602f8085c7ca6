// Package ledger talks to the TruthChain contract: it submits storeRecord
// transactions and reads back receipts and RecordStored events so they can
// be cross-checked against a submission.
package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

// Receipt is the part of a transaction receipt the cross-check needs.
type Receipt struct {
	TxRef  string
	To     string
	Status uint64
	Logs   []*types.Log
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r.Status == types.ReceiptStatusSuccessful
}

// RecordStoredEvent is a decoded RecordStored log.
type RecordStoredEvent struct {
	Hash      [32]byte
	Cid       string
	Submitter string
	Timestamp *big.Int
}

// Ledger is the contract-facing client.
//
// GetReceipt returns nil, nil when the transaction is unknown or not yet
// mined. DecodeEvent returns nil, nil for logs that are not RecordStored
// events emitted by ContractAddress.
type Ledger interface {
	Submit(ctx context.Context, hash [32]byte, cid string) (string, error)
	GetReceipt(ctx context.Context, txRef string) (*Receipt, error)
	DecodeEvent(log *types.Log) (*RecordStoredEvent, error)
	ContractAddress() string
}
