package ledger

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Offline is an in-process Ledger for offline-test mode. Submit does not
// touch a network: it records a synthetic receipt whose tx reference is
// "0x" followed by the fingerprint, and whose single log is the
// RecordStored event the contract would have emitted.
type Offline struct {
	mu        sync.RWMutex
	contract  ethcommon.Address
	submitter ethcommon.Address
	bound     *bind.BoundContract
	receipts  map[string]*Receipt
	now       func() time.Time
}

// NewOffline returns an empty offline ledger. contract may be empty, in
// which case the zero address is used.
func NewOffline(contract string) *Offline {
	addr := ethcommon.HexToAddress(contract)
	return &Offline{
		contract: addr,
		bound:    bind.NewBoundContract(addr, parsedABI, nil, nil, nil),
		receipts: make(map[string]*Receipt),
		now:      time.Now,
	}
}

// OfflineTxRef is the placeholder tx reference for a fingerprint.
func OfflineTxRef(hash [32]byte) string {
	return "0x" + hex.EncodeToString(hash[:])
}

func (o *Offline) ContractAddress() string { return o.contract.Hex() }

func (o *Offline) Submit(_ context.Context, hash [32]byte, cid string) (string, error) {
	txRef := OfflineTxRef(hash)

	log, err := PackRecordStored(o.contract, hash, cid, o.submitter, big.NewInt(o.now().Unix()))
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	o.receipts[txRef] = &Receipt{
		TxRef:  txRef,
		To:     o.contract.Hex(),
		Status: types.ReceiptStatusSuccessful,
		Logs:   []*types.Log{log},
	}
	o.mu.Unlock()

	return txRef, nil
}

func (o *Offline) GetReceipt(_ context.Context, txRef string) (*Receipt, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	r, ok := o.receipts[strings.ToLower(txRef)]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (o *Offline) DecodeEvent(log *types.Log) (*RecordStoredEvent, error) {
	return decodeRecordStored(o.bound, o.contract, log)
}
