package kv

import "encoding/binary"

// Key prefixes for every logical table in the KV store. Centralizing
// them here means cross-table key confusion (e.g. writing a Block under
// the tx: prefix) would require deliberately bypassing these helpers.
var (
	PrefixAccount       = []byte("acct:")
	PrefixBlockByHash   = []byte("blk_hash:")
	PrefixBlockByHeight = []byte("blk_num:")
	PrefixTx            = []byte("tx:")
	PrefixReceipt       = []byte("rcpt:")
	PrefixMeta          = []byte("meta:")
	PrefixOracle        = []byte("oracle:ai:")
	KeyBridgeHalted     = []byte("bridge:halted")
	KeyBridgeValidators = []byte("bridge:validators")
	PrefixBridgeCustody = []byte("bridge:custody:")
	PrefixBridgePending = []byte("bridge:pending:")
	PrefixBridgeApplied = []byte("bridge:applied:")
)

var (
	MetaChainID       = append(append([]byte{}, PrefixMeta...), []byte("chain_id")...)
	MetaHeight        = append(append([]byte{}, PrefixMeta...), []byte("height")...)
	MetaBestHash      = append(append([]byte{}, PrefixMeta...), []byte("best_hash")...)
	MetaLastTimestamp = append(append([]byte{}, PrefixMeta...), []byte("last_timestamp")...)
)

// AccountKey returns the acct: key for an address.
func AccountKey(addr string) []byte { return append(append([]byte{}, PrefixAccount...), addr...) }

// BlockHashKey returns the blk_hash: key for a hex-encoded block hash.
func BlockHashKey(hexHash string) []byte {
	return append(append([]byte{}, PrefixBlockByHash...), hexHash...)
}

// BlockHeightKey returns the blk_num: key for a height, encoded as an
// 8-byte big-endian suffix so ascending Scan order matches height order.
func BlockHeightKey(height uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], height)
	return append(append([]byte{}, PrefixBlockByHeight...), b[:]...)
}

// TxKey returns the tx: key for a hex-encoded tx hash.
func TxKey(hexHash string) []byte { return append(append([]byte{}, PrefixTx...), hexHash...) }

// ReceiptKey returns the rcpt: key for a hex-encoded tx hash.
func ReceiptKey(hexHash string) []byte { return append(append([]byte{}, PrefixReceipt...), hexHash...) }

// OracleKey returns the oracle:ai: key for a hex-encoded tx hash.
func OracleKey(hexHash string) []byte { return append(append([]byte{}, PrefixOracle...), hexHash...) }

// BridgeCustodyKey returns the bridge:custody: key for an asset.
func BridgeCustodyKey(asset string) []byte {
	return append(append([]byte{}, PrefixBridgeCustody...), asset...)
}

// BridgePendingKey returns the bridge:pending: key for a hex message id.
func BridgePendingKey(hexID string) []byte {
	return append(append([]byte{}, PrefixBridgePending...), hexID...)
}

// BridgeAppliedKey returns the bridge:applied: key for a hex message id.
func BridgeAppliedKey(hexID string) []byte {
	return append(append([]byte{}, PrefixBridgeApplied...), hexID...)
}
