// Package rpc implements the node's HTTP + WebSocket surface: the only
// way the outside world talks to it. Handlers are grouped onto a single
// Server struct by concern, with rs/cors for origin restriction and
// gorilla/websocket for the /ws push feed.
package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/DytallixHQ/dytallix-node/pkg/bridgestore"
	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/eventbus"
	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/ledger"
	"github.com/DytallixHQ/dytallix-node/pkg/mempool"
	"github.com/DytallixHQ/dytallix-node/pkg/metrics"
	"github.com/DytallixHQ/dytallix-node/pkg/oraclestore"
	"github.com/DytallixHQ/dytallix-node/pkg/state"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
	"github.com/DytallixHQ/dytallix-node/pkg/verifier"
)

// Server wires the verifier/mempool/stores into an http.Handler
// implementing the node's full set of query and submission routes.
type Server struct {
	verifier    *verifier.Verifier
	mempool     *mempool.Mempool
	state       *state.State
	ledgerStore *ledger.Store
	oracle      *oraclestore.Store
	bridge      *bridgestore.Store
	bus         *eventbus.Bus
	kv          kv.Store

	chainID        string
	maxTxBody      int64
	frontendOrigin string
	wsEnabled      bool
	oraclePubkey   string

	mux *http.ServeMux
}

// Config bundles Server's construction-time knobs, split from the
// collaborators above so New's signature stays readable.
type Config struct {
	ChainID         string
	MaxTxBody       int64
	FrontendOrigin  string
	WSEnabled       bool
	OraclePubkeyB64 string
}

// New builds a Server and registers every route. Call Handler to get
// the CORS-wrapped http.Handler to pass to http.Serve.
func New(v *verifier.Verifier, mp *mempool.Mempool, st *state.State, ls *ledger.Store, oracleStore *oraclestore.Store, bs *bridgestore.Store, bus *eventbus.Bus, store kv.Store, cfg Config) *Server {
	s := &Server{
		verifier: v, mempool: mp, state: st, ledgerStore: ls,
		oracle: oracleStore, bridge: bs, bus: bus, kv: store,
		chainID: cfg.ChainID, maxTxBody: cfg.MaxTxBody,
		frontendOrigin: cfg.FrontendOrigin, wsEnabled: cfg.WSEnabled,
		oraclePubkey: cfg.OraclePubkeyB64,
	}
	s.mux = http.NewServeMux()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /submit", s.handleSubmit)
	s.mux.HandleFunc("GET /tx/{hash}", s.handleGetTx)
	s.mux.HandleFunc("GET /balance/{address}", s.handleGetBalance)
	s.mux.HandleFunc("GET /block/{ref}", s.handleGetBlock)
	s.mux.HandleFunc("GET /blocks", s.handleListBlocks)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /peers", s.handlePeers)
	s.mux.HandleFunc("POST /oracle/ai_risk", s.handleOracleRisk)
	s.mux.HandleFunc("POST /bridge/ingest", s.handleBridgeIngest)
	s.mux.HandleFunc("POST /bridge/halt", s.handleBridgeHalt)
	s.mux.HandleFunc("GET /bridge/state", s.handleBridgeState)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	if s.wsEnabled {
		s.mux.HandleFunc("GET /ws", s.handleWS)
	}
}

// Handler returns the CORS-wrapped http.Handler, restricted to the
// configured frontend origin if set, else permissive.
func (s *Server) Handler() http.Handler {
	opts := cors.Options{AllowedMethods: []string{http.MethodGet, http.MethodPost}}
	if s.frontendOrigin != "" {
		opts.AllowedOrigins = []string{s.frontendOrigin}
	} else {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts).Handler(s.mux)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// submitRequest shadows Transaction.Nonce with a pointer so an omitted
// wire nonce is distinguishable from an explicit nonce:0.
type submitRequest struct {
	types.Transaction
	Nonce *uint64 `json:"nonce"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxTxBody)
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Malformed")
		return
	}

	tx := req.Transaction
	if req.Nonce != nil {
		tx.Nonce = *req.Nonce
	} else {
		// Omitted nonce resolves to the sender's current nonce. The
		// canonical bytes cover the nonce, so the hash and signature
		// the client supplied only verify if they were produced over
		// that same value.
		tx.Nonce = s.state.Get(tx.From).Nonce
	}

	if err := s.verifier.VerifyTransaction(&tx); err != nil {
		statusFor(w, err)
		return
	}

	if err := s.mempool.Admit(&tx); err != nil {
		switch err {
		case mempool.ErrDuplicate:
			writeError(w, http.StatusConflict, "Duplicate")
		case mempool.ErrMempoolFull:
			writeError(w, http.StatusTooManyRequests, "MempoolFull")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// Persist a pending receipt directly (not via the producer's batch)
	// so GET /tx/{hash} can observe it before the next tick includes it.
	pending := &types.Receipt{
		Hash: tx.Hash, Status: types.ReceiptPending,
		Fee: tx.Fee, From: tx.From, To: tx.To, Amount: tx.Amount, Nonce: tx.Nonce,
	}
	if raw, err := codec.EncodeReceipt(pending); err == nil {
		_ = s.kv.Put(kv.ReceiptKey(tx.Hash.HexKey()), raw)
	}

	metrics.MempoolSize.Set(float64(s.mempool.Size()))
	writeJSON(w, http.StatusOK, map[string]string{"hash": tx.Hash.String()})
}

func statusFor(w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *verifier.InvalidNonceError:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "InvalidNonce", "expected": e.Expected, "got": e.Got,
		})
	case verifier.Error:
		switch e {
		case verifier.ErrDuplicate:
			writeError(w, http.StatusConflict, string(e))
		case verifier.ErrInsufficientBalance, verifier.ErrMalformed:
			writeError(w, http.StatusUnprocessableEntity, string(e))
		default:
			writeError(w, http.StatusUnprocessableEntity, string(e))
		}
	default:
		writeError(w, http.StatusUnprocessableEntity, "Malformed")
	}
}

func (s *Server) handleGetTx(w http.ResponseWriter, r *http.Request) {
	hash, err := types.ParseHash(r.PathValue("hash"))
	if err != nil {
		writeError(w, http.StatusNotFound, "NotFound")
		return
	}
	receipt, err := s.ledgerStore.GetReceipt(hash)
	if err != nil {
		writeError(w, http.StatusNotFound, "NotFound")
		return
	}
	if rec, err := s.oracle.Get(hash); err == nil {
		receipt.AIRiskScore = &rec.Score
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	addr := types.Address(r.PathValue("address"))
	acct, err := s.ledgerStore.GetAccount(addr)
	if err != nil {
		zero := types.Account{Balance: types.ZeroAmount()}
		writeJSON(w, http.StatusOK, zero)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	var blk *types.Block
	var err error
	switch {
	case ref == "latest":
		meta, mErr := s.ledgerStore.GetChainMeta()
		if mErr != nil {
			writeError(w, http.StatusNotFound, "NotFound")
			return
		}
		blk, err = s.ledgerStore.GetBlockByHeight(meta.Height)
	case strings.HasPrefix(ref, "0x"):
		var h types.Hash
		h, err = types.ParseHash(ref)
		if err == nil {
			blk, err = s.ledgerStore.GetBlockByHash(h)
		}
	default:
		var height uint64
		height, err = strconv.ParseUint(ref, 10, 64)
		if err == nil {
			blk, err = s.ledgerStore.GetBlockByHeight(height)
		}
	}
	if err != nil || blk == nil {
		writeError(w, http.StatusNotFound, "NotFound")
		return
	}
	writeJSON(w, http.StatusOK, blk)
}

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	meta, err := s.ledgerStore.GetChainMeta()
	if err != nil {
		writeJSON(w, http.StatusOK, []*types.Block{})
		return
	}
	blocks, err := s.ledgerStore.ListBlocksDescending(meta.Height, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "InternalError")
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	meta, err := s.ledgerStore.GetChainMeta()
	height := uint64(0)
	if err == nil {
		height = meta.Height
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"height":       height,
		"mempool_size": s.mempool.Size(),
		"chain_id":     s.chainID,
	})
}

func (s *Server) handlePeers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []string{})
}

func (s *Server) handleOracleRisk(w http.ResponseWriter, r *http.Request) {
	var rec types.OracleRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Malformed")
		return
	}
	if err := verifier.VerifyOracleRecord(&rec, s.oraclePubkey); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.oracle.Put(&rec); err != nil {
		writeError(w, http.StatusInternalServerError, "InternalError")
		return
	}
	s.bus.Publish(eventbus.Event{Type: eventbus.EventAIRiskPosted, Payload: eventbus.AIRiskPostedPayload{
		TxHash: rec.TxHash, Score: rec.Score,
	}})
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleBridgeIngest(w http.ResponseWriter, r *http.Request) {
	var msg types.BridgeMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Malformed")
		return
	}

	applied, err := s.bridge.IsApplied(msg.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "InternalError")
		return
	}
	if applied {
		metrics.BridgeIngestTotal.WithLabelValues("duplicate").Inc()
		writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
		return
	}

	// Stage the message ahead of quorum verification so a message that
	// doesn't (yet) clear quorum is still durably recorded rather than
	// dropped on the floor.
	if err := s.bridge.Stage(&msg); err != nil {
		writeError(w, http.StatusInternalServerError, "InternalError")
		return
	}

	validators, err := s.bridge.Validators()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "InternalError")
		return
	}
	halted, err := s.bridge.Halted()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "InternalError")
		return
	}

	if err := verifier.VerifyBridgeMessage(&msg, validators, halted); err != nil {
		metrics.BridgeIngestTotal.WithLabelValues("rejected").Inc()
		// 422/423 give the client an explicit, distinguishable code for
		// quorum/halt rejection rather than a bare 500.
		if err == verifier.ErrBridgeHalted {
			writeError(w, http.StatusLocked, err.Error())
		} else {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}

	custody, err := s.bridge.CustodyBalance(msg.Asset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "InternalError")
		return
	}
	if err := s.bridge.Apply(&msg, custody.Add(msg.Amount)); err != nil {
		if err == bridgestore.ErrAlreadyApplied {
			writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
			return
		}
		writeError(w, http.StatusInternalServerError, "InternalError")
		return
	}

	metrics.BridgeIngestTotal.WithLabelValues("accepted").Inc()
	s.bus.Publish(eventbus.Event{Type: eventbus.EventBridgeApplied, Payload: eventbus.BridgeAppliedPayload{ID: msg.ID}})
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleBridgeHalt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Malformed")
		return
	}
	halted := body.Action == "halt"
	if body.Action != "halt" && body.Action != "resume" {
		writeError(w, http.StatusUnprocessableEntity, "Malformed")
		return
	}
	if err := s.bridge.SetHalted(halted); err != nil {
		writeError(w, http.StatusInternalServerError, "InternalError")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"halted": halted})
}

func (s *Server) handleBridgeState(w http.ResponseWriter, r *http.Request) {
	halted, _ := s.bridge.Halted()
	validators, _ := s.bridge.Validators()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"halted":     halted,
		"validators": validators,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWS upgrades the connection and streams new_transaction/new_block
// events until the client disconnects. Clients are expected to reconnect
// on their own, so this handler does no retry bookkeeping of its own.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	sub := s.bus.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readPump(conn, cancel)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if ev.Type != eventbus.EventNewTransaction && ev.Type != eventbus.EventNewBlock {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(map[string]interface{}{"type": ev.Type, "data": ev.Payload}); err != nil {
				return
			}
		}
	}
}

// readPump drains and discards client frames so the connection's close
// and ping/pong control messages are still processed, cancelling ctx
// once the client goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
