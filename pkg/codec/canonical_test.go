package codec

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

func sampleTx() *types.Transaction {
	amount, _ := types.ParseAmount("10")
	fee, _ := types.ParseAmount("1")
	return &types.Transaction{
		From:      "dyt1alice",
		To:        "dyt1bob",
		Denom:     types.DenomNative,
		Amount:    amount,
		Fee:       fee,
		Nonce:     0,
		Algorithm: types.AlgoDilithium3,
		PublicKey: []byte{1, 2, 3},
		Memo:      "hello",
	}
}

// TestTxCanonicalBytesConformanceVector pins the published byte layout:
// any change to the canonical encoding breaks this vector and therefore
// every already-signed transaction on the network.
func TestTxCanonicalBytesConformanceVector(t *testing.T) {
	tx := sampleTx()
	want := "0000000964797431616c6963650000000764797431626f62000000066e6174697665" +
		"000000023130000000013100000000000000000000000568656c6c6f" +
		"0000000a64696c69746869756d33"
	assert.Equal(t, want, hex.EncodeToString(TxCanonicalBytes(tx)))
	assert.Equal(t,
		"0x4bf9ba66f1962a0c993e988d14ff363e7aecdef54a98a63df0dd5b5b932e81dd",
		TxHash(tx).String())
}

func TestTxHashDeterministic(t *testing.T) {
	tx := sampleTx()
	h1 := TxHash(tx)
	h2 := TxHash(tx)
	assert.Equal(t, h1, h2)

	tx2 := sampleTx()
	tx2.Memo = "different"
	assert.NotEqual(t, h1, TxHash(tx2))
}

func TestTxCanonicalBytesRoundTripViaHash(t *testing.T) {
	tx := sampleTx()
	tx.Hash = TxHash(tx)
	require.Equal(t, tx.Hash, TxHash(tx))
}

func TestBridgePayloadFormat(t *testing.T) {
	id, err := types.ParseHash("0x" + repeat("ab", 32))
	require.NoError(t, err)
	amount, _ := types.ParseAmount("100")
	msg := &types.BridgeMessage{
		ID: id, SourceChain: "eth", DestChain: "dyt",
		Asset: "USDC", Amount: amount, Recipient: "dyt1bob",
	}
	payload := string(BridgePayload(msg))
	assert.Contains(t, payload, "eth:dyt:USDC:100:dyt1bob")
}

func TestOraclePayloadFormat(t *testing.T) {
	h, err := types.ParseHash("0x" + repeat("cd", 32))
	require.NoError(t, err)
	payload := string(OraclePayload(h, 0.42))
	assert.Equal(t, h.String()+":0.42", payload)
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
