// Package codec implements the canonical binary encoding used for
// transaction hashing/signing and for KV storage values, plus the JSON
// wire encoding (handled by the types package's MarshalJSON methods).
// This is the one corner of the module that is deliberately hand-rolled
// rather than backed by a serialization library: the byte layout is an
// auditable, published contract of the network, which rules out a
// general-purpose codec whose layout is an implementation detail of the
// library rather than a contract of this module.
package codec

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// writeLP appends a length-prefixed (4-byte big-endian length) byte string.
func writeLP(buf []byte, s []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

// TxCanonicalBytes produces the exact byte layout used both to derive
// Transaction.Hash and as the message signed/verified over:
//
//	length-prefixed(from) || length-prefixed(to) || length-prefixed(denom) ||
//	length-prefixed(amount decimal ascii) || length-prefixed(fee decimal ascii) ||
//	nonce (8-byte big-endian) || length-prefixed(memo, possibly empty) ||
//	length-prefixed(algorithm ascii)
//
// Hash and signature fields themselves, and the public key, are never part
// of this encoding; that is what makes the hash a function of the body
// alone and lets the signature cover exactly the same bytes.
func TxCanonicalBytes(tx *types.Transaction) []byte {
	buf := make([]byte, 0, 128)
	buf = writeLP(buf, []byte(tx.From))
	buf = writeLP(buf, []byte(tx.To))
	buf = writeLP(buf, []byte(tx.Denom))
	buf = writeLP(buf, []byte(tx.Amount.String()))
	buf = writeLP(buf, []byte(tx.Fee.String()))
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], tx.Nonce)
	buf = append(buf, nonceBuf[:]...)
	buf = writeLP(buf, []byte(tx.Memo))
	buf = writeLP(buf, []byte(tx.Algorithm))
	return buf
}

// TxHash derives the deterministic, network-wide-unique transaction hash
// from its canonical body bytes.
func TxHash(tx *types.Transaction) types.Hash {
	return types.Hash(sha256.Sum256(TxCanonicalBytes(tx)))
}

// BlockCanonicalBytes produces the byte layout hashed to derive a
// block's hash: height || parent || timestamp || ordered tx hashes.
func BlockCanonicalBytes(height uint64, parent string, timestamp int64, txHashes []types.Hash) []byte {
	buf := make([]byte, 0, 32+len(txHashes)*32)
	var heightBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], height)
	buf = append(buf, heightBuf[:]...)
	buf = writeLP(buf, []byte(parent))
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(timestamp))
	buf = append(buf, tsBuf[:]...)
	for _, h := range txHashes {
		buf = append(buf, h[:]...)
	}
	return buf
}

// BlockHash derives a block's hash from its canonical bytes.
func BlockHash(height uint64, parent string, timestamp int64, txHashes []types.Hash) types.Hash {
	return types.Hash(sha256.Sum256(BlockCanonicalBytes(height, parent, timestamp, txHashes)))
}

// BridgePayload builds the canonical ASCII message signed by bridge
// validators:
// "{id}:{source_chain}:{dest_chain}:{asset}:{amount}:{recipient}".
func BridgePayload(msg *types.BridgeMessage) []byte {
	s := msg.ID.String() + ":" + msg.SourceChain + ":" + msg.DestChain + ":" +
		msg.Asset + ":" + msg.Amount.String() + ":" + string(msg.Recipient)
	return []byte(s)
}

// OraclePayload builds the canonical ASCII message signed over an oracle
// score post: "{tx_hash}:{score}".
func OraclePayload(txHash types.Hash, score float64) []byte {
	return []byte(txHash.String() + ":" + formatScore(score))
}
