package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/cryptox"
	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var txRefPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// chainReader is the read side of the JSON-RPC client used for cross-checks.
type chainReader interface {
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash ethcommon.Hash) (*types.Transaction, bool, error)
}

// chainBackend is everything Submit needs on top of chainReader.
type chainBackend interface {
	chainReader
	bind.ContractBackend
	bind.DeployBackend
}

// dialEthClient is a seam for tests.
var dialEthClient = func(ctx context.Context, rawurl string) (*ethclient.Client, error) {
	return ethclient.DialContext(ctx, rawurl)
}

// EVM is a Ledger backed by an EVM JSON-RPC endpoint.
type EVM struct {
	reader   chainReader
	backend  chainBackend
	contract ethcommon.Address
	bound    *bind.BoundContract
	signer   *ecdsa.PrivateKey
	chainID  *big.Int
	log      logging.Logger
	close    func()
}

// EVMConfig carries the connection settings of NewEVM.
type EVMConfig struct {
	RPCURL          string
	ContractAddress string
	ChainID         int64
	// SignerKey enables Submit. Empty leaves the ledger read-only.
	SignerKey string
}

// NewEVM dials the RPC endpoint and binds the contract.
func NewEVM(ctx context.Context, cfg EVMConfig, log logging.Logger) (*EVM, error) {
	if !ethcommon.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("%w: invalid contract address %q", common.ErrUpstreamUnavailable, cfg.ContractAddress)
	}

	var signer *ecdsa.PrivateKey
	if cfg.SignerKey != "" {
		k, err := cryptox.ParsePrivateKey(cfg.SignerKey)
		if err != nil {
			return nil, fmt.Errorf("%w: ledger signer: %v", common.ErrUpstreamUnavailable, err)
		}
		signer = k
	}

	client, err := dialEthClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v (check POLYGON_RPC_URL)", common.ErrUpstreamUnavailable, cfg.RPCURL, err)
	}

	e := newEVM(client, client, ethcommon.HexToAddress(cfg.ContractAddress), signer, big.NewInt(cfg.ChainID), log)
	e.close = client.Close

	if signer != nil {
		if id, err := client.ChainID(ctx); err == nil && id.Cmp(e.chainID) != 0 {
			log.Warn(ctx, "configured chain id differs from the RPC endpoint",
				"configured", e.chainID.String(), "endpoint", id.String())
		}
		log.Info(ctx, "ledger relay enabled", "signer", cryptox.Address(signer))
	}

	return e, nil
}

func newEVM(reader chainReader, backend chainBackend, contract ethcommon.Address, signer *ecdsa.PrivateKey, chainID *big.Int, log logging.Logger) *EVM {
	var cb bind.ContractBackend
	if backend != nil {
		cb = backend
	}
	return &EVM{
		reader:   reader,
		backend:  backend,
		contract: contract,
		bound:    bind.NewBoundContract(contract, parsedABI, cb, cb, cb),
		signer:   signer,
		chainID:  chainID,
		log:      log.With("module", "ledger"),
	}
}

// ContractAddress returns the checksummed contract address.
func (e *EVM) ContractAddress() string { return e.contract.Hex() }

// CanSubmit reports whether a signer key is configured.
func (e *EVM) CanSubmit() bool { return e.signer != nil && e.backend != nil }

// Close releases the RPC connection.
func (e *EVM) Close() {
	if e.close != nil {
		e.close()
	}
}

// Submit sends storeRecord(hash, cid) from the configured signer and waits
// until it is mined. A reverted transaction fails with ErrLedgerTxFailed.
func (e *EVM) Submit(ctx context.Context, hash [32]byte, cid string) (string, error) {
	if !e.CanSubmit() {
		return "", fmt.Errorf("%w: no ledger signer key configured", common.ErrUpstreamUnavailable)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(e.signer, e.chainID)
	if err != nil {
		return "", fmt.Errorf("%w: transactor: %v", common.ErrUpstreamUnavailable, err)
	}
	opts.Context = ctx
	opts.GasLimit = GasLimit

	tx, err := e.bound.Transact(opts, MethodName, hash, cid)
	if err != nil {
		return "", fmt.Errorf("%w: send storeRecord: %v", common.ErrUpstreamUnavailable, err)
	}
	txRef := tx.Hash().Hex()
	e.log.Info(ctx, "storeRecord sent", "tx", txRef)

	receipt, err := bind.WaitMined(ctx, e.backend, tx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return txRef, fmt.Errorf("%w: %s not mined in time, retry later", common.ErrLedgerTxNotFound, txRef)
		}
		return txRef, fmt.Errorf("%w: wait for %s: %v", common.ErrUpstreamUnavailable, txRef, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return txRef, fmt.Errorf("%w: %s reverted", common.ErrLedgerTxFailed, txRef)
	}

	return txRef, nil
}

// GetReceipt fetches the receipt and destination of txRef. Malformed
// references and unknown or pending transactions yield nil, nil.
func (e *EVM) GetReceipt(ctx context.Context, txRef string) (*Receipt, error) {
	if !txRefPattern.MatchString(txRef) {
		return nil, nil
	}
	h := ethcommon.HexToHash(txRef)

	r, err := e.reader.TransactionReceipt(ctx, h)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: receipt of %s timed out, retry later", common.ErrLedgerTxNotFound, txRef)
		}
		return nil, fmt.Errorf("%w: receipt: %v", common.ErrUpstreamUnavailable, err)
	}

	tx, _, err := e.reader.TransactionByHash(ctx, h)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: transaction: %v", common.ErrUpstreamUnavailable, err)
	}

	out := &Receipt{
		TxRef:  strings.ToLower(txRef),
		Status: r.Status,
		Logs:   r.Logs,
	}
	if to := tx.To(); to != nil {
		out.To = to.Hex()
	}
	return out, nil
}

// DecodeEvent decodes RecordStored logs emitted by the configured contract.
func (e *EVM) DecodeEvent(log *types.Log) (*RecordStoredEvent, error) {
	return decodeRecordStored(e.bound, e.contract, log)
}
