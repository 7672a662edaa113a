// Package ledgertest is an in-process double of a ledger node,
// exposing the REST surface the client consumes: account records,
// resources by type name, per-account event logs, and transaction
// submission with sequence and signature checking. Client tests run
// against it over httptest; cmd/mockledger serves it standalone for
// local development.
package ledgertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"github.com/laminarhq/laminar-go/pkg/client"
	lamcrypto "github.com/laminarhq/laminar-go/pkg/crypto"
	"github.com/laminarhq/laminar-go/pkg/types"
)

// DefaultChainID is the chain id the double reports unless configured
// otherwise.
const DefaultChainID = 4

type resourceEntry struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type eventEntry struct {
	Version types.Uint64    `json:"version"`
	Data    json.RawMessage `json:"data"`
}

type txEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Server holds the double's mutable ledger state. All methods are safe
// for concurrent use.
type Server struct {
	mu sync.Mutex

	log     *zap.Logger
	chainID uint8

	seqs      map[types.Address]uint64
	resources map[types.Address]map[string]resourceEntry
	events    map[types.Address]map[string][]eventEntry
	txns      map[string]json.RawMessage

	// Scripted behavior for exercising client failure paths.
	rejections   []string // error codes to reject the next submissions with
	pendingPolls int      // by_hash lookups to answer "pending" before finalizing
	emitNext     []txEvent

	version     uint64
	submissions int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

// WithChainID overrides the reported chain id.
func WithChainID(id uint8) Option { return func(s *Server) { s.chainID = id } }

// New creates an empty ledger double.
func New(opts ...Option) *Server {
	s := &Server{
		log:       zap.NewNop(),
		chainID:   DefaultChainID,
		seqs:      map[types.Address]uint64{},
		resources: map[types.Address]map[string]resourceEntry{},
		events:    map[types.Address]map[string][]eventEntry{},
		txns:      map[string]json.RawMessage{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the full HTTP surface, CORS-wrapped so browser
// tooling can hit a standalone instance.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1", s.handleIndex).Methods(http.MethodGet)
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/accounts/{address}", s.handleAccount).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{address}/resource/{type}", s.handleResource).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{address}/events/{handle}/{field}", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/transactions", s.handleSubmit).Methods(http.MethodPost)
	v1.HandleFunc("/transactions/by_hash/{hash}", s.handleByHash).Methods(http.MethodGet)
	return cors.AllowAll().Handler(r)
}

// RegisterAccount creates or resets an account at the given sequence
// number.
func (s *Server) RegisterAccount(addr types.Address, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[addr] = seq
}

// Sequence returns an account's current sequence number.
func (s *Server) Sequence(addr types.Address) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqs[addr]
}

// SetResource stores (or replaces) a resource under an account. data
// is marshaled as the resource body.
func (s *Server) SetResource(addr types.Address, typeName string, data any) {
	raw := mustJSON(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resources[addr] == nil {
		s.resources[addr] = map[string]resourceEntry{}
	}
	s.resources[addr][typeName] = resourceEntry{Type: typeName, Data: raw}
}

// RemoveResource deletes a resource if present.
func (s *Server) RemoveResource(addr types.Address, typeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resources[addr], typeName)
}

// AppendEvent appends one entry to an account's named event-log field.
func (s *Server) AppendEvent(addr types.Address, field string, data any) {
	raw := mustJSON(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events[addr] == nil {
		s.events[addr] = map[string][]eventEntry{}
	}
	s.version++
	s.events[addr][field] = append(s.events[addr][field],
		eventEntry{Version: types.Uint64(s.version), Data: raw})
}

// QueueRejection makes the next submission fail with the given node
// error code. Queued rejections are consumed in order.
func (s *Server) QueueRejection(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejections = append(s.rejections, code)
}

// DelayFinality makes the next n by_hash lookups report the
// transaction as still pending.
func (s *Server) DelayFinality(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingPolls = n
}

// EmitEvent attaches an event (with a fully qualified type tag) to the
// next accepted transaction.
func (s *Server) EmitEvent(typeTag string, data any) {
	raw := mustJSON(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitNext = append(s.emitNext, txEvent{Type: typeTag, Data: raw})
}

// Submissions reports how many submissions reached the double,
// accepted or not.
func (s *Server) Submissions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	version := s.version
	chainID := s.chainID
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"chain_id":         chainID,
		"ledger_version":   fmt.Sprint(version),
		"ledger_timestamp": fmt.Sprint(nowMicros()),
	})
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	seq, exists := s.seqs[addr]
	s.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "account_not_found", "account not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sequence_number":    fmt.Sprint(seq),
		"authentication_key": addr.Hex(),
	})
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	typeName := mux.Vars(r)["type"]
	s.mu.Lock()
	entry, exists := s.resources[addr][typeName]
	s.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "resource_not_found", "resource not found: "+typeName)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	field := mux.Vars(r)["field"]
	s.mu.Lock()
	entries := s.events[addr][field]
	s.mu.Unlock()
	if entries == nil {
		entries = []eventEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req client.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions++

	if len(s.rejections) > 0 {
		code := s.rejections[0]
		s.rejections = s.rejections[1:]
		s.log.Info("rejecting submission by script", zap.String("code", code))
		writeError(w, http.StatusBadRequest, code, "scripted rejection")
		return
	}

	sender, err := types.ParseAddress(req.Sender)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	seq, exists := s.seqs[sender]
	if !exists {
		writeError(w, http.StatusNotFound, "account_not_found", "unknown sender")
		return
	}
	if req.ChainId != s.chainID {
		writeError(w, http.StatusBadRequest, "invalid_chain_id", "wrong chain id")
		return
	}
	switch {
	case uint64(req.SequenceNumber) < seq:
		writeError(w, http.StatusBadRequest, client.CodeSequenceNumberTooOld,
			fmt.Sprintf("transaction sequence %d, account at %d", req.SequenceNumber, seq))
		return
	case uint64(req.SequenceNumber) > seq:
		writeError(w, http.StatusBadRequest, client.CodeInvalidTransactionUpdate,
			fmt.Sprintf("transaction sequence %d ahead of account at %d", req.SequenceNumber, seq))
		return
	}

	message, err := client.SigningMessage(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if !lamcrypto.VerifyHex(req.Signature.PublicKey, message, req.Signature.Signature) {
		writeError(w, http.StatusBadRequest, "invalid_signature", "signature verification failed")
		return
	}

	s.seqs[sender] = seq + 1
	s.version++
	events := s.emitNext
	s.emitNext = nil
	if events == nil {
		events = []txEvent{}
	}

	hash := txnHash(req.Signature.Signature)
	finalized := map[string]any{
		"type":            "user_transaction",
		"hash":            hash,
		"version":         fmt.Sprint(s.version),
		"gas_used":        "7",
		"success":         true,
		"vm_status":       "Executed successfully",
		"sender":          req.Sender,
		"sequence_number": req.SequenceNumber,
		"max_gas_amount":  req.MaxGasAmount,
		"chain_id":        req.ChainId,
		"payload":         req.Payload,
		"signature":       req.Signature,
		"events":          events,
		"timestamp":       fmt.Sprint(nowMicros()),
	}
	s.txns[hash] = mustJSON(finalized)
	s.log.Info("accepted submission",
		zap.String("sender", sender.ShortHex()),
		zap.Uint64("sequence_number", seq),
		zap.String("hash", hash))

	writeJSON(w, http.StatusAccepted, map[string]any{"hash": hash, "type": "pending_transaction"})
}

func (s *Server) handleByHash(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	s.mu.Lock()
	raw, exists := s.txns[hash]
	pending := s.pendingPolls > 0
	if pending {
		s.pendingPolls--
	}
	s.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "transaction_not_found", "unknown hash")
		return
	}
	if pending {
		writeJSON(w, http.StatusOK, map[string]any{"type": "pending_transaction", "hash": hash})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (s *Server) pathAddress(w http.ResponseWriter, r *http.Request) (types.Address, bool) {
	addr, err := types.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return types.Address{}, false
	}
	return addr, true
}

func txnHash(signatureHex string) string {
	sum := sha3.Sum256([]byte(signatureHex))
	return hexutil.Encode(sum[:])
}

func nowMicros() int64 { return time.Now().UnixMicro() }

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("ledgertest: marshal fixture: %w", err))
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error_code": code, "message": message})
}
