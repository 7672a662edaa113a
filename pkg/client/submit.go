package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/laminarhq/laminar-go/pkg/bcs"
	"github.com/laminarhq/laminar-go/pkg/crypto"
	"github.com/laminarhq/laminar-go/pkg/types"
)

// Transaction is the decoded result of one accepted submission. Events
// is already filtered to the events emitted by the contract address.
type Transaction struct {
	Info      TransactionInfo
	Request   TransactionRequest
	Events    []types.Event
	Timestamp types.Uint64
}

// Submit builds, signs and submits an entry-function call, retrying
// under sequence-number contention.
//
// One attempt walks Building -> Signed -> Submitted -> Accepted or
// Rejected. A rejection the node classifies as stale-sequence,
// invalid-update or contract-execution-error triggers a resync (local
// counter becomes max(authoritative, local+1), never regressing below
// local+1 so an in-flight number is not reused) and a fresh attempt.
// Any other failure is returned immediately. The budget is
// SubmitAttempts total attempts; on exhaustion the last attempt's
// error is returned verbatim.
//
// The ledger enforces strict per-account sequence ordering, so at most
// one attempt in the series can be accepted.
func (c *Client) Submit(ctx context.Context, entry EntryFunction) (*Transaction, error) {
	for attempt := 0; attempt < SubmitAttempts; attempt++ {
		txn, err := c.submitOnce(ctx, entry)
		if err == nil {
			return txn, nil
		}
		if attempt == SubmitAttempts-1 {
			return nil, err
		}
		var rejected *RejectedError
		if !errors.As(err, &rejected) || !rejected.Retryable() {
			return nil, err
		}
		c.log.Debug("submission rejected, retrying",
			zap.Int("attempt", attempt+1),
			zap.String("code", rejected.Code),
			zap.Uint64("sequence_number", c.seqNum))
	}
	// Unreachable while the loop above returns on the final attempt;
	// kept as a guard against that invariant silently breaking.
	return nil, ErrSubmitFallthrough
}

// submitOnce performs one full attempt at the current local sequence
// number.
func (c *Client) submitOnce(ctx context.Context, entry EntryFunction) (*Transaction, error) {
	request := c.signRequest(entry, c.seqNum)

	var pending pendingData
	if err := c.doJSON(ctx, http.MethodPost, "/transactions", request, &pending); err != nil {
		return nil, c.classifyRejection(ctx, err)
	}

	finalized, err := c.waitForTransaction(ctx, pending.Hash)
	if err != nil {
		return nil, err
	}
	if finalized.Type != txnTypeUser {
		return nil, &UnexpectedResponseError{Got: finalized.Type}
	}

	events, err := c.contractEvents(finalized.Events)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Info:      finalized.TransactionInfo,
		Request:   finalized.TransactionRequest,
		Events:    events,
		Timestamp: finalized.Timestamp,
	}, nil
}

// signRequest builds and signs the submission for one attempt. The
// signature covers the canonical raw-transaction bytes under the
// domain-separation salt.
func (c *Client) signRequest(entry EntryFunction, seqNum uint64) TransactionRequest {
	raw := rawTransactionBytes(c.address, seqNum, entry, maxGasAmount, c.chainID)
	signature := c.signer.Sign(crypto.TransactionSigningMessage(raw))

	args := make([]string, len(entry.Args))
	for i, a := range entry.Args {
		args[i] = hexutil.Encode(a)
	}
	typeArgs := entry.TypeArgs
	if typeArgs == nil {
		typeArgs = []string{}
	}
	return TransactionRequest{
		Sender:         c.address.Hex(),
		SequenceNumber: types.Uint64(seqNum),
		MaxGasAmount:   types.Uint64(maxGasAmount),
		ChainId:        c.chainID,
		Payload: TransactionPayload{
			Type:          "entry_function_payload",
			Function:      entry.FunctionID(),
			TypeArguments: typeArgs,
			Arguments:     args,
		},
		Signature: TransactionSignature{
			Type:      "ed25519_signature",
			PublicKey: c.signer.PublicKeyHex(),
			Signature: hexutil.Encode(signature),
		},
	}
}

// rawTransactionBytes is the canonical signing encoding of a call:
// sender, sequence number, entry function, gas ceiling, chain id, in
// fixed order with no padding.
func rawTransactionBytes(sender types.Address, seqNum uint64, entry EntryFunction, maxGas uint64, chainID uint8) []byte {
	enc := bcs.NewEncoder().
		Address(sender).
		U64(seqNum).
		Address(entry.ModuleAddress).
		String(entry.ModuleName).
		String(entry.Function).
		Uleb128(uint64(len(entry.TypeArgs)))
	for _, t := range entry.TypeArgs {
		enc.String(t)
	}
	enc.Uleb128(uint64(len(entry.Args)))
	for _, a := range entry.Args {
		enc.Bytes(a)
	}
	return enc.U64(maxGas).U8(chainID).Finish()
}

// SigningMessage reconstructs the exact bytes a request's signature
// must cover, from the request's wire form. Verifiers (and the test
// ledger double) use it to check submissions without trusting the
// submitter's encoding.
func SigningMessage(req TransactionRequest) ([]byte, error) {
	sender, err := types.ParseAddress(req.Sender)
	if err != nil {
		return nil, fmt.Errorf("request sender: %w", err)
	}
	parts := strings.SplitN(req.Payload.Function, "::", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("request function %q: want <addr>::<module>::<name>", req.Payload.Function)
	}
	moduleAddr, err := types.ParseAddress(parts[0])
	if err != nil {
		return nil, fmt.Errorf("request function %q: %w", req.Payload.Function, err)
	}
	args := make([][]byte, len(req.Payload.Arguments))
	for i, a := range req.Payload.Arguments {
		if args[i], err = hexutil.Decode(a); err != nil {
			return nil, fmt.Errorf("request argument %d: %w", i, err)
		}
	}
	entry := EntryFunction{
		ModuleAddress: moduleAddr,
		ModuleName:    parts[1],
		Function:      parts[2],
		TypeArgs:      req.Payload.TypeArguments,
		Args:          args,
	}
	raw := rawTransactionBytes(sender, uint64(req.SequenceNumber), entry, uint64(req.MaxGasAmount), req.ChainId)
	return crypto.TransactionSigningMessage(raw), nil
}

// classifyRejection turns a node error into a RejectedError and, for
// recoverable rejections, resynchronizes the local sequence
// counter so the next attempt uses a fresh number. A resync is not
// rolled back if the surrounding attempt is later canceled.
func (c *Client) classifyRejection(ctx context.Context, err error) error {
	var ae *apiError
	if !errors.As(err, &ae) {
		return err
	}
	rejected := &RejectedError{Code: ae.code, Message: ae.message, Status: ae.status}
	if !rejected.Retryable() {
		return rejected
	}

	authoritative, seqErr := c.SequenceNumber(ctx)
	if seqErr != nil {
		return fmt.Errorf("resync sequence number: %w", seqErr)
	}
	next := c.seqNum + 1
	if authoritative > next {
		next = authoritative
	}
	c.log.Debug("resynced sequence number",
		zap.Uint64("local", c.seqNum),
		zap.Uint64("authoritative", authoritative),
		zap.Uint64("next", next))
	c.seqNum = next
	return rejected
}

// waitForTransaction polls until the submitted hash leaves the pending
// state.
func (c *Client) waitForTransaction(ctx context.Context, hash string) (*txnResponse, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		var txn txnResponse
		err := c.doJSON(ctx, http.MethodGet, "/transactions/by_hash/"+hash, nil, &txn)
		if err == nil && txn.Type != txnTypePending {
			return &txn, nil
		}
		if err != nil {
			var ae *apiError
			if !errors.As(err, &ae) || ae.status != http.StatusNotFound {
				return nil, err
			}
			// Not indexed yet; keep polling.
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// contractEvents keeps only the log entries emitted by the contract
// address and decodes them into the event union.
func (c *Client) contractEvents(raw []txEvent) ([]types.Event, error) {
	events := make([]types.Event, 0, len(raw))
	for _, e := range raw {
		// Generic event types carry their parameters after the struct
		// name; the tag address and struct name are what matter here.
		tag := e.Type
		if i := strings.Index(tag, "<"); i >= 0 {
			tag = tag[:i]
		}
		info, err := types.ParseTypeInfo(tag)
		if err != nil {
			return nil, &types.DecodeError{What: "event type tag", Err: err}
		}
		if info.AccountAddress != c.laminar {
			continue
		}
		decoded, err := types.DecodeEvent(info.StructName, e.Data)
		if err != nil {
			return nil, err
		}
		events = append(events, decoded)
	}
	return events, nil
}
