package codec

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// ErrTruncated is returned when a stored value runs out of bytes before a
// decoder finishes reading a field.
var ErrTruncated = errors.New("codec: truncated storage value")

// cursor reads the length-prefixed/fixed-width fields written by the
// Encode* functions below, in the same order they were written.
type cursor struct {
	b   []byte
	off int
}

func (c *cursor) uint32() (uint32, error) {
	if len(c.b)-c.off < 4 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(c.b[c.off:])
	c.off += 4
	return v, nil
}

func (c *cursor) uint64() (uint64, error) {
	if len(c.b)-c.off < 8 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint64(c.b[c.off:])
	c.off += 8
	return v, nil
}

func (c *cursor) raw32() ([32]byte, error) {
	var out [32]byte
	if len(c.b)-c.off < 32 {
		return out, ErrTruncated
	}
	copy(out[:], c.b[c.off:c.off+32])
	c.off += 32
	return out, nil
}

func (c *cursor) bytes() ([]byte, error) {
	n, err := c.uint32()
	if err != nil {
		return nil, err
	}
	if uint32(len(c.b)-c.off) < n {
		return nil, ErrTruncated
	}
	out := append([]byte(nil), c.b[c.off:c.off+int(n)]...)
	c.off += int(n)
	return out, nil
}

func (c *cursor) str() (string, error) {
	b, err := c.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *cursor) byte() (byte, error) {
	if len(c.b)-c.off < 1 {
		return 0, ErrTruncated
	}
	v := c.b[c.off]
	c.off++
	return v, nil
}

func writeU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func writeU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func writeAmount(buf []byte, a types.Amount) []byte {
	return writeLP(buf, []byte(a.String()))
}

func readAmount(c *cursor) (types.Amount, error) {
	s, err := c.str()
	if err != nil {
		return types.Amount{}, err
	}
	return types.ParseAmount(s)
}

// EncodeAccount writes nonce (8-byte big-endian) followed by the
// length-prefixed decimal balance.
func EncodeAccount(a *types.Account) ([]byte, error) {
	buf := make([]byte, 0, 16)
	buf = writeU64(buf, a.Nonce)
	buf = writeAmount(buf, a.Balance)
	return buf, nil
}

func DecodeAccount(b []byte) (*types.Account, error) {
	c := &cursor{b: b}
	nonce, err := c.uint64()
	if err != nil {
		return nil, err
	}
	balance, err := readAmount(c)
	if err != nil {
		return nil, err
	}
	return &types.Account{Balance: balance, Nonce: nonce}, nil
}

// EncodeTransaction writes the stored transaction record: the raw 32-byte
// hash, the length-prefixed from/to/denom strings, the length-prefixed
// decimal amount/fee, the 8-byte big-endian nonce, the length-prefixed
// algorithm string, and the length-prefixed public key/signature/memo.
func EncodeTransaction(tx *types.Transaction) ([]byte, error) {
	buf := make([]byte, 0, 192)
	buf = append(buf, tx.Hash[:]...)
	buf = writeLP(buf, []byte(tx.From))
	buf = writeLP(buf, []byte(tx.To))
	buf = writeLP(buf, []byte(tx.Denom))
	buf = writeAmount(buf, tx.Amount)
	buf = writeAmount(buf, tx.Fee)
	buf = writeU64(buf, tx.Nonce)
	buf = writeLP(buf, []byte(tx.Algorithm))
	buf = writeLP(buf, tx.PublicKey)
	buf = writeLP(buf, tx.Signature)
	buf = writeLP(buf, []byte(tx.Memo))
	return buf, nil
}

func DecodeTransaction(b []byte) (*types.Transaction, error) {
	c := &cursor{b: b}
	hash, err := c.raw32()
	if err != nil {
		return nil, err
	}
	from, err := c.str()
	if err != nil {
		return nil, err
	}
	to, err := c.str()
	if err != nil {
		return nil, err
	}
	denom, err := c.str()
	if err != nil {
		return nil, err
	}
	amount, err := readAmount(c)
	if err != nil {
		return nil, err
	}
	fee, err := readAmount(c)
	if err != nil {
		return nil, err
	}
	nonce, err := c.uint64()
	if err != nil {
		return nil, err
	}
	algo, err := c.str()
	if err != nil {
		return nil, err
	}
	pubkey, err := c.bytes()
	if err != nil {
		return nil, err
	}
	sig, err := c.bytes()
	if err != nil {
		return nil, err
	}
	memo, err := c.str()
	if err != nil {
		return nil, err
	}
	return &types.Transaction{
		Hash:      types.Hash(hash),
		From:      types.Address(from),
		To:        types.Address(to),
		Denom:     types.Denom(denom),
		Amount:    amount,
		Fee:       fee,
		Nonce:     nonce,
		Algorithm: types.PqcAlgo(algo),
		PublicKey: pubkey,
		Signature: sig,
		Memo:      memo,
	}, nil
}

// EncodeReceipt writes the stored receipt record: the raw 32-byte hash,
// the length-prefixed status string, the 8-byte big-endian block height,
// the 4-byte big-endian index, the length-prefixed fee/from/to/amount,
// the 8-byte big-endian nonce, the length-prefixed error string, and a
// one-byte present flag followed by the 8-byte big-endian IEEE-754 bits
// of the AI risk score when present.
func EncodeReceipt(r *types.Receipt) ([]byte, error) {
	buf := make([]byte, 0, 192)
	buf = append(buf, r.Hash[:]...)
	buf = writeLP(buf, []byte(r.Status))
	buf = writeU64(buf, r.BlockHeight)
	buf = writeU32(buf, r.Index)
	buf = writeAmount(buf, r.Fee)
	buf = writeLP(buf, []byte(r.From))
	buf = writeLP(buf, []byte(r.To))
	buf = writeAmount(buf, r.Amount)
	buf = writeU64(buf, r.Nonce)
	buf = writeLP(buf, []byte(r.Error))
	if r.AIRiskScore == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = writeU64(buf, math.Float64bits(*r.AIRiskScore))
	}
	return buf, nil
}

func DecodeReceipt(b []byte) (*types.Receipt, error) {
	c := &cursor{b: b}
	hash, err := c.raw32()
	if err != nil {
		return nil, err
	}
	status, err := c.str()
	if err != nil {
		return nil, err
	}
	height, err := c.uint64()
	if err != nil {
		return nil, err
	}
	index, err := c.uint32()
	if err != nil {
		return nil, err
	}
	fee, err := readAmount(c)
	if err != nil {
		return nil, err
	}
	from, err := c.str()
	if err != nil {
		return nil, err
	}
	to, err := c.str()
	if err != nil {
		return nil, err
	}
	amount, err := readAmount(c)
	if err != nil {
		return nil, err
	}
	nonce, err := c.uint64()
	if err != nil {
		return nil, err
	}
	errStr, err := c.str()
	if err != nil {
		return nil, err
	}
	present, err := c.byte()
	if err != nil {
		return nil, err
	}
	var score *float64
	if present == 1 {
		bits, err := c.uint64()
		if err != nil {
			return nil, err
		}
		f := math.Float64frombits(bits)
		score = &f
	}
	return &types.Receipt{
		Hash:        types.Hash(hash),
		Status:      types.ReceiptStatus(status),
		BlockHeight: height,
		Index:       index,
		Fee:         fee,
		From:        types.Address(from),
		To:          types.Address(to),
		Amount:      amount,
		Nonce:       nonce,
		Error:       errStr,
		AIRiskScore: score,
	}, nil
}

// EncodeBlock writes the stored block record: the 8-byte big-endian
// height, the raw 32-byte hash, the length-prefixed parent string, the
// 8-byte big-endian timestamp, the length-prefixed proposer address, and
// the 4-byte big-endian tx count followed by that many raw 32-byte tx
// hashes.
func EncodeBlock(blk *types.Block) ([]byte, error) {
	buf := make([]byte, 0, 96+len(blk.TxHashes)*32)
	buf = writeU64(buf, blk.Height)
	buf = append(buf, blk.Hash[:]...)
	buf = writeLP(buf, []byte(blk.Parent))
	buf = writeU64(buf, uint64(blk.Timestamp))
	buf = writeLP(buf, []byte(blk.Proposer))
	buf = writeU32(buf, uint32(len(blk.TxHashes)))
	for _, h := range blk.TxHashes {
		buf = append(buf, h[:]...)
	}
	return buf, nil
}

func DecodeBlock(b []byte) (*types.Block, error) {
	c := &cursor{b: b}
	height, err := c.uint64()
	if err != nil {
		return nil, err
	}
	hash, err := c.raw32()
	if err != nil {
		return nil, err
	}
	parent, err := c.str()
	if err != nil {
		return nil, err
	}
	timestamp, err := c.uint64()
	if err != nil {
		return nil, err
	}
	proposer, err := c.str()
	if err != nil {
		return nil, err
	}
	count, err := c.uint32()
	if err != nil {
		return nil, err
	}
	txHashes := make([]types.Hash, 0, count)
	for i := uint32(0); i < count; i++ {
		h, err := c.raw32()
		if err != nil {
			return nil, err
		}
		txHashes = append(txHashes, types.Hash(h))
	}
	return &types.Block{
		Height:    height,
		Hash:      types.Hash(hash),
		Parent:    parent,
		Timestamp: int64(timestamp),
		Proposer:  types.Address(proposer),
		TxHashes:  txHashes,
		TxCount:   uint32(len(txHashes)),
	}, nil
}

// EncodeBridgeMessage writes the raw 32-byte id, the length-prefixed
// source chain/dest chain/asset strings, the length-prefixed decimal
// amount, the length-prefixed recipient, and
// the 4-byte big-endian signature count followed by that many
// length-prefixed signatures, then the same count-plus-entries shape for
// signer ids.
func EncodeBridgeMessage(m *types.BridgeMessage) ([]byte, error) {
	buf := make([]byte, 0, 128)
	buf = append(buf, m.ID[:]...)
	buf = writeLP(buf, []byte(m.SourceChain))
	buf = writeLP(buf, []byte(m.DestChain))
	buf = writeLP(buf, []byte(m.Asset))
	buf = writeAmount(buf, m.Amount)
	buf = writeLP(buf, []byte(m.Recipient))
	buf = writeU32(buf, uint32(len(m.Signatures)))
	for _, s := range m.Signatures {
		buf = writeLP(buf, s)
	}
	buf = writeU32(buf, uint32(len(m.Signers)))
	for _, s := range m.Signers {
		buf = writeLP(buf, []byte(s))
	}
	return buf, nil
}

func DecodeBridgeMessage(b []byte) (*types.BridgeMessage, error) {
	c := &cursor{b: b}
	id, err := c.raw32()
	if err != nil {
		return nil, err
	}
	source, err := c.str()
	if err != nil {
		return nil, err
	}
	dest, err := c.str()
	if err != nil {
		return nil, err
	}
	asset, err := c.str()
	if err != nil {
		return nil, err
	}
	amount, err := readAmount(c)
	if err != nil {
		return nil, err
	}
	recipient, err := c.str()
	if err != nil {
		return nil, err
	}
	sigCount, err := c.uint32()
	if err != nil {
		return nil, err
	}
	sigs := make([][]byte, 0, sigCount)
	for i := uint32(0); i < sigCount; i++ {
		s, err := c.bytes()
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, s)
	}
	signerCount, err := c.uint32()
	if err != nil {
		return nil, err
	}
	signers := make([]string, 0, signerCount)
	for i := uint32(0); i < signerCount; i++ {
		s, err := c.str()
		if err != nil {
			return nil, err
		}
		signers = append(signers, s)
	}
	return &types.BridgeMessage{
		ID:          types.Hash(id),
		SourceChain: source,
		DestChain:   dest,
		Asset:       asset,
		Amount:      amount,
		Recipient:   types.Address(recipient),
		Signatures:  sigs,
		Signers:     signers,
	}, nil
}
