package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/eventbus"
	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/mempool"
	"github.com/DytallixHQ/dytallix-node/pkg/metrics"
	"github.com/DytallixHQ/dytallix-node/pkg/state"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// Producer is the single block-production loop: it ticks at a fixed
// interval, drains the mempool, applies each transaction to in-memory
// state under a block-scoped snapshot, and commits the resulting
// block/transactions/receipts/account deltas in one KV batch. There is
// no voting or validator set here: one producer owns block building
// outright, with no ABCI-style consensus machinery.
type Producer struct {
	store         *Store
	kv            kv.Store
	state         *state.State
	mempool       *mempool.Mempool
	bus           *eventbus.Bus
	chainID       string
	proposer      string
	maxTxPerBlock int
	emptyBlocks   bool
	interval      time.Duration
}

// NewProducer builds a Producer. proposer is an opaque node identifier
// recorded on every block's proposer field ("single" when empty).
func NewProducer(store *Store, kvStore kv.Store, st *state.State, mp *mempool.Mempool, bus *eventbus.Bus, chainID, proposer string, maxTxPerBlock int, emptyBlocks bool, interval time.Duration) *Producer {
	if proposer == "" {
		proposer = "single"
	}
	return &Producer{
		store:         store,
		kv:            kvStore,
		state:         st,
		mempool:       mp,
		bus:           bus,
		chainID:       chainID,
		proposer:      proposer,
		maxTxPerBlock: maxTxPerBlock,
		emptyBlocks:   emptyBlocks,
		interval:      interval,
	}
}

// Run blocks, ticking every interval until ctx is cancelled. Each tick
// calls Tick and logs (but does not panic on) any error, since a single
// bad tick must never bring the node down.
func (p *Producer) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Tick(); err != nil {
				log.Error().Err(err).Msg("block tick failed")
			}
		}
	}
}

// Tick runs one block-production pass: drain the mempool, apply each
// transaction under a snapshot, and commit the block/receipts in one KV
// batch. It returns nil (and produces no block) when there is nothing
// to include and emptyBlocks is false.
func (p *Producer) Tick() error {
	txs := p.mempool.Drain(p.maxTxPerBlock)
	metrics.MempoolSize.Set(float64(p.mempool.Size()))
	if len(txs) == 0 && !p.emptyBlocks {
		return nil
	}

	meta, err := p.store.GetChainMeta()
	if err != nil {
		return err
	}

	snapshot := p.state.Snapshot()
	height := meta.Height + 1
	timestamp := time.Now().Unix()
	if timestamp <= meta.LastTimestamp {
		timestamp = meta.LastTimestamp + 1
	}

	var txHashes []types.Hash
	var batch []kv.Op
	var touched = map[types.Address]types.Account{}

	for i, tx := range txs {
		receipt := &types.Receipt{
			Hash:        tx.Hash,
			BlockHeight: height,
			Index:       uint32(i),
			Fee:         tx.Fee,
			From:        tx.From,
			To:          tx.To,
			Amount:      tx.Amount,
			Nonce:       tx.Nonce,
		}

		// Re-check the nonce at inclusion time, not just at admission.
		// The single-producer/no-gap-queue admission rule means this
		// should never actually fire in practice, but a block containing
		// more than one tx from the same sender still goes through this
		// same loop in order, so it is the inclusion path's own
		// responsibility to catch it rather than assume the
		// admission-time check is still valid.
		if current := p.state.Get(tx.From); tx.Nonce != current.Nonce {
			receipt.Status = types.ReceiptFailed
			receipt.Error = "InvalidNonce"
		} else if err := p.state.ApplyTransfer(tx.From, tx.To, tx.Amount, tx.Fee); err != nil {
			receipt.Status = types.ReceiptFailed
			receipt.Error = err.Error()
			// Fee is NOT debited on failed inclusion: ApplyTransfer
			// already rejected atomically, so sender/recipient
			// balances are untouched here.
		} else {
			p.state.IncrNonce(tx.From)
			receipt.Status = types.ReceiptSuccess
			txHashes = append(txHashes, tx.Hash)
		}
		metrics.TransactionsTotal.WithLabelValues(string(receipt.Status)).Inc()

		touched[tx.From] = p.state.Get(tx.From)
		touched[tx.To] = p.state.Get(tx.To)

		txRaw, err := codec.EncodeTransaction(tx)
		if err != nil {
			p.state.Restore(snapshot)
			return err
		}
		rcptRaw, err := codec.EncodeReceipt(receipt)
		if err != nil {
			p.state.Restore(snapshot)
			return err
		}
		batch = append(batch,
			kv.Op{Key: kv.TxKey(tx.Hash.HexKey()), Value: txRaw},
			kv.Op{Key: kv.ReceiptKey(tx.Hash.HexKey()), Value: rcptRaw},
		)
	}

	block := &types.Block{
		Height:    height,
		Parent:    meta.BestHash.String(),
		Timestamp: timestamp,
		Proposer:  types.Address(p.proposer),
		TxHashes:  txHashes,
		TxCount:   uint32(len(txHashes)),
	}
	if height == 1 {
		block.Parent = types.GenesisParent
	}
	block.Hash = codec.BlockHash(block.Height, block.Parent, block.Timestamp, block.TxHashes)

	blockRaw, err := codec.EncodeBlock(block)
	if err != nil {
		p.state.Restore(snapshot)
		return err
	}
	for addr, acct := range touched {
		raw, err := codec.EncodeAccount(&acct)
		if err != nil {
			p.state.Restore(snapshot)
			return err
		}
		batch = append(batch, kv.Op{Key: kv.AccountKey(string(addr)), Value: raw})
	}
	batch = append(batch,
		kv.Op{Key: kv.BlockHashKey(block.Hash.HexKey()), Value: blockRaw},
		kv.Op{Key: kv.BlockHeightKey(block.Height), Value: []byte(block.Hash.String())},
		kv.Op{Key: kv.MetaHeight, Value: []byte(strconv.FormatUint(block.Height, 10))},
		kv.Op{Key: kv.MetaBestHash, Value: []byte(block.Hash.String())},
		kv.Op{Key: kv.MetaLastTimestamp, Value: []byte(strconv.FormatInt(block.Timestamp, 10))},
	)

	if err := p.kv.WriteBatch(batch); err != nil {
		p.state.Restore(snapshot)
		return err
	}

	log.Info().Uint64("height", block.Height).Int("txs", len(txs)).Msg("block committed")
	metrics.BlocksProducedTotal.Inc()
	metrics.ChainHeight.Set(float64(block.Height))
	p.bus.Publish(eventbus.Event{Type: eventbus.EventNewBlock, Payload: eventbus.NewBlockPayload{
		Height: block.Height, Hash: block.Hash, Txs: txHashes,
	}})
	for _, h := range txHashes {
		p.bus.Publish(eventbus.Event{Type: eventbus.EventNewTransaction, Payload: eventbus.NewTransactionPayload{Hash: h}})
	}
	return nil
}
