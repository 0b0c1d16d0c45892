package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/eventbus"
	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/mempool"
	"github.com/DytallixHQ/dytallix-node/pkg/state"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

func setupChain(t *testing.T) (*Store, kv.Store, *state.State, *mempool.Mempool, *eventbus.Bus, *Producer) {
	t.Helper()
	kvStore := kv.NewMemStore()
	require.NoError(t, kvStore.Put(kv.MetaChainID, []byte("dyt-test-1")))
	require.NoError(t, kvStore.Put(kv.MetaHeight, []byte("0")))
	require.NoError(t, kvStore.Put(kv.MetaBestHash, []byte(types.Hash{}.String())))

	ls := New(kvStore)
	st := state.New()
	mp := mempool.New(0)
	bus := eventbus.New(8)
	p := NewProducer(ls, kvStore, st, mp, bus, "dyt-test-1", "node-1", 100, true, time.Second)
	return ls, kvStore, st, mp, bus, p
}

func makeTx(from, to types.Address, amount, fee int64, nonce uint64) *types.Transaction {
	tx := &types.Transaction{
		From: from, To: to, Denom: types.DenomNative,
		Amount: types.NewAmount(amount), Fee: types.NewAmount(fee), Nonce: nonce,
		Algorithm: types.AlgoDilithium3,
	}
	tx.Hash = codec.TxHash(tx)
	return tx
}

func TestTickProducesGenesisParentedBlock(t *testing.T) {
	ls, _, _, _, _, p := setupChain(t)
	require.NoError(t, p.Tick())

	blk, err := ls.GetBlockByHeight(1)
	require.NoError(t, err)
	assert.Equal(t, types.GenesisParent, blk.Parent)
	assert.Equal(t, uint64(1), blk.Height)
}

func TestTickChainsParentHash(t *testing.T) {
	ls, _, _, _, _, p := setupChain(t)
	require.NoError(t, p.Tick())
	blk1, err := ls.GetBlockByHeight(1)
	require.NoError(t, err)

	require.NoError(t, p.Tick())
	blk2, err := ls.GetBlockByHeight(2)
	require.NoError(t, err)
	assert.Equal(t, blk1.Hash.String(), blk2.Parent)
}

func TestTickAppliesTransferAndBurnsFee(t *testing.T) {
	ls, _, st, mp, _, p := setupChain(t)
	alice := types.Address("dyt1alice")
	bob := types.Address("dyt1bob")
	st.CreditGenesis(alice, types.NewAmount(1000))

	tx := makeTx(alice, bob, 10, 1, 0)
	require.NoError(t, mp.Admit(tx))
	require.NoError(t, p.Tick())

	aliceAcct, err := ls.GetAccount(alice)
	require.NoError(t, err)
	assert.Equal(t, "989", aliceAcct.Balance.String())
	assert.Equal(t, uint64(1), aliceAcct.Nonce)

	bobAcct, err := ls.GetAccount(bob)
	require.NoError(t, err)
	assert.Equal(t, "10", bobAcct.Balance.String())

	receipt, err := ls.GetReceipt(tx.Hash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptSuccess, receipt.Status)
}

func TestTickFailedTransferLeavesBalancesUntouched(t *testing.T) {
	ls, _, st, mp, _, p := setupChain(t)
	alice := types.Address("dyt1alice")
	st.CreditGenesis(alice, types.NewAmount(5))

	tx := makeTx(alice, "dyt1bob", 10, 1, 0)
	require.NoError(t, mp.Admit(tx))
	require.NoError(t, p.Tick())

	receipt, err := ls.GetReceipt(tx.Hash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptFailed, receipt.Status)

	aliceAcct, err := ls.GetAccount(alice)
	require.NoError(t, err)
	assert.Equal(t, "5", aliceAcct.Balance.String())
}

func TestTickStaleNonceAtInclusionFailsWithoutMutation(t *testing.T) {
	ls, _, st, mp, _, p := setupChain(t)
	alice := types.Address("dyt1alice")
	st.CreditGenesis(alice, types.NewAmount(1000))
	// IncrNonce directly (bypassing admission) to simulate a tx that was
	// admitted against a since-advanced sender nonce.
	st.IncrNonce(alice)

	tx := makeTx(alice, "dyt1bob", 10, 1, 0)
	require.NoError(t, mp.Admit(tx))
	require.NoError(t, p.Tick())

	receipt, err := ls.GetReceipt(tx.Hash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptFailed, receipt.Status)
	assert.Equal(t, "InvalidNonce", receipt.Error)

	aliceAcct, err := ls.GetAccount(alice)
	require.NoError(t, err)
	assert.Equal(t, "1000", aliceAcct.Balance.String())
	assert.Equal(t, uint64(1), aliceAcct.Nonce)
}

func TestTickSkipsEmptyBlockWhenDisabled(t *testing.T) {
	ls, kvStore, _, _, _, p := setupChain(t)
	p.emptyBlocks = false
	require.NoError(t, p.Tick())

	_, err := ls.GetBlockByHeight(1)
	assert.ErrorIs(t, err, ErrNotFound)

	height, err := kvStore.Get(kv.MetaHeight)
	require.NoError(t, err)
	assert.Equal(t, "0", string(height))
}

func TestTickPublishesEventsForIncludedTxsOnly(t *testing.T) {
	_, _, st, mp, bus, p := setupChain(t)
	alice := types.Address("dyt1alice")
	st.CreditGenesis(alice, types.NewAmount(1000))

	good := makeTx(alice, "dyt1bob", 10, 1, 0)
	bad := makeTx("dyt1broke", "dyt1bob", 10, 1, 0)
	require.NoError(t, mp.Admit(good))
	require.NoError(t, mp.Admit(bad))

	sub := bus.Subscribe()
	defer sub.Close()
	require.NoError(t, p.Tick())

	blockEv := <-sub.Events()
	require.Equal(t, eventbus.EventNewBlock, blockEv.Type)
	blockPayload := blockEv.Payload.(eventbus.NewBlockPayload)
	assert.Equal(t, []types.Hash{good.Hash}, blockPayload.Txs)

	txEv := <-sub.Events()
	require.Equal(t, eventbus.EventNewTransaction, txEv.Type)
	assert.Equal(t, good.Hash, txEv.Payload.(eventbus.NewTransactionPayload).Hash)

	select {
	case extra := <-sub.Events():
		t.Fatalf("unexpected extra event %v for a failed tx", extra.Type)
	default:
	}
}
