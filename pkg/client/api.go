package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/laminarhq/laminar-go/pkg/types"
)

// Node wire shapes. Every u64 travels as a decimal string.

type nodeError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

type indexData struct {
	ChainId         uint8        `json:"chain_id"`
	LedgerVersion   types.Uint64 `json:"ledger_version"`
	LedgerTimestamp types.Uint64 `json:"ledger_timestamp"`
}

type accountData struct {
	SequenceNumber    types.Uint64 `json:"sequence_number"`
	AuthenticationKey string       `json:"authentication_key"`
}

type resourceData struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type rawEvent struct {
	Version types.Uint64    `json:"version"`
	Data    json.RawMessage `json:"data"`
}

type txEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type pendingData struct {
	Hash string `json:"hash"`
}

// TransactionInfo is the execution record of a finalized transaction.
type TransactionInfo struct {
	Hash     string       `json:"hash"`
	Version  types.Uint64 `json:"version"`
	GasUsed  types.Uint64 `json:"gas_used"`
	Success  bool         `json:"success"`
	VMStatus string       `json:"vm_status"`
}

// TransactionPayload is the JSON form of an entry-function call:
// fully qualified function name, coin type arguments, and the
// canonical-encoded arguments as hex strings.
type TransactionPayload struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []string `json:"arguments"`
}

// TransactionSignature carries the ed25519 signature over the raw
// transaction signing message.
type TransactionSignature struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// TransactionRequest is the signed submission as sent to the node.
type TransactionRequest struct {
	Sender         string               `json:"sender"`
	SequenceNumber types.Uint64         `json:"sequence_number"`
	MaxGasAmount   types.Uint64         `json:"max_gas_amount"`
	ChainId        uint8                `json:"chain_id"`
	Payload        TransactionPayload   `json:"payload"`
	Signature      TransactionSignature `json:"signature"`
}

// txnResponse is a transaction as returned by the node. Pending
// transactions carry only type and hash; finalized user transactions
// flatten info, request, events and timestamp.
type txnResponse struct {
	Type string `json:"type"`
	TransactionInfo
	TransactionRequest
	Events    []txEvent    `json:"events"`
	Timestamp types.Uint64 `json:"timestamp"`
}

const (
	txnTypePending = "pending_transaction"
	txnTypeUser    = "user_transaction"
)

// apiError is a non-2xx node response before classification.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("node responded %d (%s): %s", e.status, e.code, e.message)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		var ne nodeError
		if err := json.Unmarshal(raw, &ne); err != nil || ne.ErrorCode == "" {
			ne.Message = string(raw)
		}
		return &apiError{status: resp.StatusCode, code: ne.ErrorCode, message: ne.Message}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// accountResource fetches the raw snapshot stored under addr by
// resource type name. Absence is not an error: found=false.
func (c *Client) accountResource(ctx context.Context, addr types.Address, typeName string) (*resourceData, bool, error) {
	path := fmt.Sprintf("/accounts/%s/resource/%s", addr.Hex(), url.PathEscape(typeName))
	var rd resourceData
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &rd); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.status == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &rd, true, nil
}

// accountInfo fetches the on-ledger account record (sequence number,
// auth key).
func (c *Client) accountInfo(ctx context.Context, addr types.Address) (*accountData, error) {
	var ad accountData
	path := fmt.Sprintf("/accounts/%s", addr.Hex())
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &ad); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.status == http.StatusNotFound {
			return nil, fmt.Errorf("account %s: %w", addr.ShortHex(), ErrNotFound)
		}
		return nil, err
	}
	return &ad, nil
}

// rawEvents fetches the entire named event-log field of this client's
// account event store. No pagination: cost is O(total events ever
// logged for the account).
func (c *Client) rawEvents(ctx context.Context, field string) ([]rawEvent, error) {
	handle := fmt.Sprintf("%s::book::OrderBookStore", c.laminar.ShortHex())
	path := fmt.Sprintf("/accounts/%s/events/%s/%s",
		c.address.Hex(), url.PathEscape(handle), field)
	var events []rawEvent
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &events); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return events, nil
}
