package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudflare/circl/sign/schemes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DytallixHQ/dytallix-node/pkg/bridgestore"
	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/crypto"
	"github.com/DytallixHQ/dytallix-node/pkg/eventbus"
	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/ledger"
	"github.com/DytallixHQ/dytallix-node/pkg/mempool"
	"github.com/DytallixHQ/dytallix-node/pkg/oraclestore"
	"github.com/DytallixHQ/dytallix-node/pkg/state"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
	"github.com/DytallixHQ/dytallix-node/pkg/verifier"
)

func newTestServer(t *testing.T) (*Server, *state.State) {
	t.Helper()
	kvStore := kv.NewMemStore()
	require.NoError(t, kvStore.Put(kv.MetaChainID, []byte("dyt-test-1")))
	require.NoError(t, kvStore.Put(kv.MetaHeight, []byte("0")))
	require.NoError(t, kvStore.Put(kv.MetaBestHash, []byte(types.Hash{}.String())))

	st := state.New()
	mp := mempool.New(0)
	ls := ledger.New(kvStore)
	orc := oraclestore.New(kvStore)
	bs := bridgestore.New(kvStore)
	bus := eventbus.New(8)
	v := verifier.New(st, kvStore, mp, types.DefaultHRP, false)

	return New(v, mp, st, ls, orc, bs, bus, kvStore, Config{ChainID: "dyt-test-1", MaxTxBody: 8192, WSEnabled: false}), st
}

func signedSubmitTx(t *testing.T, amount, fee string) *types.Transaction {
	t.Helper()
	scheme := schemes.ByName("Dilithium3")
	require.NotNil(t, scheme)
	pub, priv, err := scheme.GenerateKey()
	require.NoError(t, err)
	pubBytes, err := pub.MarshalBinary()
	require.NoError(t, err)

	from, err := crypto.AddressFromPubkey(pubBytes, types.DefaultHRP)
	require.NoError(t, err)

	amt, err := types.ParseAmount(amount)
	require.NoError(t, err)
	feeAmt, err := types.ParseAmount(fee)
	require.NoError(t, err)

	tx := &types.Transaction{
		From: from, To: "dyt1bob", Denom: types.DenomNative,
		Amount: amt, Fee: feeAmt, Nonce: 0,
		Algorithm: types.AlgoDilithium3, PublicKey: pubBytes,
	}
	body := codec.TxCanonicalBytes(tx)
	tx.Signature = scheme.Sign(priv, body, nil)
	tx.Hash = codec.TxHash(tx)
	return tx
}

func TestHandleBalanceDefaultsToZero(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/balance/dyt1nobody", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var acct types.Account
	require.NoError(t, json.NewDecoder(w.Body).Decode(&acct))
	assert.True(t, acct.Balance.IsZero())
}

func TestHandleSubmitRejectsMalformedBody(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleStatsReportsMempoolSize(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "dyt-test-1", body["chain_id"])
	assert.EqualValues(t, 0, body["mempool_size"])
}

func TestHandleBridgeHaltTogglesState(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/bridge/halt", strings.NewReader(`{"action":"halt"}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/bridge/state", nil)
	w2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(w2, req2)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&body))
	assert.Equal(t, true, body["halted"])
}

func TestHandleGetTxNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/tx/0x"+strings.Repeat("00", 32), nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSubmitPersistsPendingReceiptVisibleImmediately(t *testing.T) {
	s, st := newTestServer(t)
	tx := signedSubmitTx(t, "10", "1")
	st.CreditGenesis(tx.From, types.NewAmount(100))

	body, err := json.Marshal(tx)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/tx/"+tx.Hash.String(), nil)
	w2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(w2, req2)
	require.Equal(t, http.StatusOK, w2.Code)

	var receipt types.Receipt
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&receipt))
	assert.Equal(t, types.ReceiptPending, receipt.Status)
}

func TestHandleSubmitDuplicateRejected(t *testing.T) {
	s, st := newTestServer(t)
	tx := signedSubmitTx(t, "10", "1")
	st.CreditGenesis(tx.From, types.NewAmount(100))
	body, err := json.Marshal(tx)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(body))
	w2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusConflict, w2.Code)
}

func newRelaxedTestServer(t *testing.T) (*Server, *state.State) {
	t.Helper()
	kvStore := kv.NewMemStore()
	require.NoError(t, kvStore.Put(kv.MetaChainID, []byte("dyt-test-1")))
	require.NoError(t, kvStore.Put(kv.MetaHeight, []byte("0")))
	require.NoError(t, kvStore.Put(kv.MetaBestHash, []byte(types.Hash{}.String())))

	st := state.New()
	mp := mempool.New(0)
	v := verifier.New(st, kvStore, mp, types.DefaultHRP, true)
	return New(v, mp, st, ledger.New(kvStore), oraclestore.New(kvStore), bridgestore.New(kvStore),
		eventbus.New(8), kvStore, Config{ChainID: "dyt-test-1", MaxTxBody: 8192, WSEnabled: false}), st
}

func TestHandleSubmitOmittedNonceResolvesToCurrent(t *testing.T) {
	s, st := newRelaxedTestServer(t)
	alice := types.Address("dyt1alice")
	st.CreditGenesis(alice, types.NewAmount(100))
	st.IncrNonce(alice)
	st.IncrNonce(alice)
	st.IncrNonce(alice)

	amount, _ := types.ParseAmount("10")
	fee, _ := types.ParseAmount("1")
	tx := &types.Transaction{
		From: alice, To: "dyt1bob", Denom: types.DenomNative,
		Amount: amount, Fee: fee, Nonce: 3,
		Algorithm: types.AlgoDilithium3,
	}
	tx.Hash = codec.TxHash(tx)

	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &body))
	delete(body, "nonce")
	raw, err = json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleSubmitExplicitZeroNonceStillRejectedWhenStale(t *testing.T) {
	s, st := newRelaxedTestServer(t)
	alice := types.Address("dyt1alice")
	st.CreditGenesis(alice, types.NewAmount(100))
	st.IncrNonce(alice)

	amount, _ := types.ParseAmount("10")
	fee, _ := types.ParseAmount("1")
	tx := &types.Transaction{
		From: alice, To: "dyt1bob", Denom: types.DenomNative,
		Amount: amount, Fee: fee, Nonce: 0,
		Algorithm: types.AlgoDilithium3,
	}
	tx.Hash = codec.TxHash(tx)

	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "InvalidNonce", resp["error"])
	assert.EqualValues(t, 1, resp["expected"])
	assert.EqualValues(t, 0, resp["got"])
}
