package ledger

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/cryptox"
	"github.com/dmitrijs2005/truthchain/internal/fingerprint"
	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

var (
	contract  = ethcommon.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	submitter = ethcommon.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	txRef     = "0x" + strings.Repeat("ab", 32)
)

func scenarioHash(t *testing.T) [32]byte {
	t.Helper()
	h, err := fingerprint.ToBytes32(fingerprint.Compute("Breaking news", "bafy123", "2024-01-01T00:00:00.000Z"))
	require.NoError(t, err)
	return h
}

func TestABI_SignaturesMatch(t *testing.T) {
	a := ParsedABI()
	assert.Equal(t, a.Events[EventName].ID, RecordStoredTopic)
	assert.Equal(t, a.Methods[MethodName].ID, cryptox.MethodID(MethodSignature))

	data, err := PackStoreRecord(scenarioHash(t), "bafy123")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, cryptox.MethodID(MethodSignature)))
}

func TestDecodeRecordStored_RoundTrip(t *testing.T) {
	hash := scenarioHash(t)
	l, err := PackRecordStored(contract, hash, "bafy123", submitter, big.NewInt(1704067200))
	require.NoError(t, err)

	o := NewOffline(contract.Hex())
	ev, err := o.DecodeEvent(l)
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, hash, ev.Hash)
	assert.Equal(t, "bafy123", ev.Cid)
	assert.Equal(t, submitter.Hex(), ev.Submitter)
	assert.Equal(t, int64(1704067200), ev.Timestamp.Int64())
}

func TestDecodeRecordStored_Filters(t *testing.T) {
	hash := scenarioHash(t)
	o := NewOffline(contract.Hex())

	other := ethcommon.HexToAddress("0x0000000000000000000000000000000000000001")
	l, err := PackRecordStored(other, hash, "bafy123", submitter, big.NewInt(1))
	require.NoError(t, err)
	ev, err := o.DecodeEvent(l)
	assert.NoError(t, err)
	assert.Nil(t, ev, "logs from other contracts are ignored")

	l, err = PackRecordStored(contract, hash, "bafy123", submitter, big.NewInt(1))
	require.NoError(t, err)
	l.Topics[0] = ethcommon.HexToHash("0x01")
	ev, err = o.DecodeEvent(l)
	assert.NoError(t, err)
	assert.Nil(t, ev, "other events are ignored")

	ev, err = o.DecodeEvent(&types.Log{Address: contract})
	assert.NoError(t, err)
	assert.Nil(t, ev, "anonymous logs are ignored")

	l, err = PackRecordStored(contract, hash, "bafy123", submitter, big.NewInt(1))
	require.NoError(t, err)
	l.Topics = l.Topics[:2]
	_, err = o.DecodeEvent(l)
	assert.Error(t, err)

	ev, err = o.DecodeEvent(nil)
	assert.NoError(t, err)
	assert.Nil(t, ev)
}

type fakeReader struct {
	receipt    *types.Receipt
	receiptErr error
	tx         *types.Transaction
	txErr      error
	calls      int
}

func (f *fakeReader) TransactionReceipt(context.Context, ethcommon.Hash) (*types.Receipt, error) {
	f.calls++
	return f.receipt, f.receiptErr
}

func (f *fakeReader) TransactionByHash(context.Context, ethcommon.Hash) (*types.Transaction, bool, error) {
	return f.tx, false, f.txErr
}

func txTo(addr *ethcommon.Address) *types.Transaction {
	return types.NewTx(&types.LegacyTx{Nonce: 1, To: addr, Gas: GasLimit, GasPrice: big.NewInt(1), Value: big.NewInt(0)})
}

func TestEVM_GetReceipt(t *testing.T) {
	l, err := PackRecordStored(contract, scenarioHash(t), "bafy123", submitter, big.NewInt(1))
	require.NoError(t, err)

	reader := &fakeReader{
		receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{l}},
		tx:      txTo(&contract),
	}
	e := newEVM(reader, nil, contract, nil, big.NewInt(137), nopLogger{})

	r, err := e.GetReceipt(context.Background(), "0x"+strings.ToUpper(txRef[2:]))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Succeeded())
	assert.Equal(t, contract.Hex(), r.To)
	assert.Equal(t, txRef, r.TxRef)
	require.Len(t, r.Logs, 1)

	ev, err := e.DecodeEvent(r.Logs[0])
	require.NoError(t, err)
	assert.Equal(t, "bafy123", ev.Cid)
}

func TestEVM_GetReceipt_Absent(t *testing.T) {
	t.Run("malformed ref", func(t *testing.T) {
		reader := &fakeReader{}
		e := newEVM(reader, nil, contract, nil, big.NewInt(137), nopLogger{})
		r, err := e.GetReceipt(context.Background(), "0xnothex")
		assert.NoError(t, err)
		assert.Nil(t, r)
		assert.Zero(t, reader.calls, "malformed refs never reach the RPC endpoint")
	})

	t.Run("not found", func(t *testing.T) {
		e := newEVM(&fakeReader{receiptErr: ethereum.NotFound}, nil, contract, nil, big.NewInt(137), nopLogger{})
		r, err := e.GetReceipt(context.Background(), txRef)
		assert.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("timeout", func(t *testing.T) {
		e := newEVM(&fakeReader{receiptErr: context.DeadlineExceeded}, nil, contract, nil, big.NewInt(137), nopLogger{})
		_, err := e.GetReceipt(context.Background(), txRef)
		assert.ErrorIs(t, err, common.ErrLedgerTxNotFound)
	})

	t.Run("rpc failure", func(t *testing.T) {
		e := newEVM(&fakeReader{receiptErr: errors.New("502 bad gateway")}, nil, contract, nil, big.NewInt(137), nopLogger{})
		_, err := e.GetReceipt(context.Background(), txRef)
		assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	})
}

func TestEVM_GetReceipt_ContractCreationHasNoTo(t *testing.T) {
	reader := &fakeReader{
		receipt: &types.Receipt{Status: types.ReceiptStatusFailed},
		tx:      txTo(nil),
	}
	e := newEVM(reader, nil, contract, nil, big.NewInt(137), nopLogger{})

	r, err := e.GetReceipt(context.Background(), txRef)
	require.NoError(t, err)
	assert.Equal(t, "", r.To)
	assert.False(t, r.Succeeded())
}

func TestEVM_SubmitWithoutSigner(t *testing.T) {
	e := newEVM(&fakeReader{}, nil, contract, nil, big.NewInt(137), nopLogger{})
	assert.False(t, e.CanSubmit())

	_, err := e.Submit(context.Background(), scenarioHash(t), "bafy123")
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
}

func TestNewEVM_Validation(t *testing.T) {
	orig := dialEthClient
	t.Cleanup(func() { dialEthClient = orig })
	dialEthClient = func(ctx context.Context, rawurl string) (*ethclient.Client, error) {
		return nil, errors.New("connection refused")
	}

	ctx := context.Background()

	_, err := NewEVM(ctx, EVMConfig{RPCURL: "http://x", ContractAddress: "nope"}, nopLogger{})
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)

	_, err = NewEVM(ctx, EVMConfig{RPCURL: "http://x", ContractAddress: contract.Hex(), SignerKey: "0x12"}, nopLogger{})
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)

	_, err = NewEVM(ctx, EVMConfig{RPCURL: "http://x", ContractAddress: contract.Hex()}, nopLogger{})
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOffline_SubmitThenReadBack(t *testing.T) {
	o := NewOffline(contract.Hex())
	hash := scenarioHash(t)

	ref, err := o.Submit(context.Background(), hash, "bafy123")
	require.NoError(t, err)
	assert.Equal(t, OfflineTxRef(hash), ref)
	assert.Equal(t, "0x"+fingerprint.Compute("Breaking news", "bafy123", "2024-01-01T00:00:00.000Z"), ref)

	r, err := o.GetReceipt(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Succeeded())
	assert.Equal(t, contract.Hex(), r.To)

	ev, err := o.DecodeEvent(r.Logs[0])
	require.NoError(t, err)
	assert.Equal(t, hash, ev.Hash)
	assert.Equal(t, "bafy123", ev.Cid)

	missing, err := o.GetReceipt(context.Background(), txRef)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
