package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dmitrijs2005/truthchain/internal/cryptox"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractABI is the subset of the TruthChain contract interface used here.
const ContractABI = `[
	{
		"type": "function",
		"name": "storeRecord",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "hash", "type": "bytes32"},
			{"name": "cid", "type": "string"}
		],
		"outputs": []
	},
	{
		"type": "event",
		"name": "RecordStored",
		"anonymous": false,
		"inputs": [
			{"name": "hash", "type": "bytes32", "indexed": true},
			{"name": "cid", "type": "string", "indexed": false},
			{"name": "submitter", "type": "address", "indexed": true},
			{"name": "timestamp", "type": "uint256", "indexed": false}
		]
	}
]`

const (
	EventName       = "RecordStored"
	EventSignature  = "RecordStored(bytes32,string,address,uint256)"
	MethodName      = "storeRecord"
	MethodSignature = "storeRecord(bytes32,string)"

	// GasLimit is the fixed gas limit for storeRecord transactions.
	GasLimit uint64 = 200000
)

var (
	parsedABI = mustParseABI()

	// RecordStoredTopic is topic 0 of every RecordStored log.
	RecordStoredTopic = common.Hash(cryptox.EventTopic(EventSignature))
)

func mustParseABI() abi.ABI {
	a, err := abi.JSON(strings.NewReader(ContractABI))
	if err != nil {
		panic(err)
	}
	return a
}

// ParsedABI returns the parsed contract interface.
func ParsedABI() abi.ABI { return parsedABI }

// recordStoredLog mirrors the event's fields for abi unpacking.
type recordStoredLog struct {
	Hash      [32]byte
	Cid       string
	Submitter common.Address
	Timestamp *big.Int
}

// decodeRecordStored decodes log when it is a RecordStored event emitted by
// contract, and returns nil, nil otherwise.
func decodeRecordStored(bound *bind.BoundContract, contract common.Address, log *types.Log) (*RecordStoredEvent, error) {
	if log == nil || log.Address != contract {
		return nil, nil
	}
	if len(log.Topics) == 0 || log.Topics[0] != RecordStoredTopic {
		return nil, nil
	}
	if len(log.Topics) != 3 {
		return nil, fmt.Errorf("RecordStored log has %d topics, want 3", len(log.Topics))
	}

	var ev recordStoredLog
	if err := bound.UnpackLog(&ev, EventName, *log); err != nil {
		return nil, fmt.Errorf("unpack RecordStored: %w", err)
	}

	return &RecordStoredEvent{
		Hash:      ev.Hash,
		Cid:       ev.Cid,
		Submitter: ev.Submitter.Hex(),
		Timestamp: ev.Timestamp,
	}, nil
}

// PackRecordStored builds a RecordStored log as the contract would emit it.
func PackRecordStored(contract common.Address, hash [32]byte, cid string, submitter common.Address, timestamp *big.Int) (*types.Log, error) {
	data, err := parsedABI.Events[EventName].Inputs.NonIndexed().Pack(cid, timestamp)
	if err != nil {
		return nil, fmt.Errorf("pack RecordStored: %w", err)
	}
	return &types.Log{
		Address: contract,
		Topics: []common.Hash{
			RecordStoredTopic,
			common.BytesToHash(hash[:]),
			common.BytesToHash(submitter.Bytes()),
		},
		Data: data,
	}, nil
}

// PackStoreRecord returns the calldata of storeRecord(hash, cid).
func PackStoreRecord(hash [32]byte, cid string) ([]byte, error) {
	return parsedABI.Pack(MethodName, hash, cid)
}
