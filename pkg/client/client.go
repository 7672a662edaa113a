// Package client implements the Laminar trading client: order book
// snapshot decoding, order state projection from the per-account event
// log, and resilient signed submission of contract calls.
//
// A Client is not safe for concurrent use. It holds one mutable
// sequence-number counter with no internal locking; two in-flight
// submissions would read-then-bump it non-atomically. Serialize
// submissions on one Client, or use independent Clients bound to
// independent accounts.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/laminarhq/laminar-go/pkg/crypto"
	"github.com/laminarhq/laminar-go/pkg/types"
)

// SubmitAttempts is the total attempt budget for one logical
// submission, including the first try.
const SubmitAttempts = 10

// maxGasAmount is the fixed resource budget ceiling attached to every
// call.
const maxGasAmount = 1_000_000

// defaultPollInterval paces finality polling.
const defaultPollInterval = 100 * time.Millisecond

type Client struct {
	laminar types.Address // account that holds the contract modules
	baseURL string
	http    *http.Client
	chainID uint8
	signer  *crypto.Signer
	address types.Address
	log     *zap.Logger

	// seqNum is the local sequence-number counter. Mutated only by
	// rejection resync; see package doc for the concurrency contract.
	seqNum uint64

	pollInterval time.Duration

	// fullRemainingOnNoFills switches the projector's remaining-size
	// default for orders with zero fills from the ledger-compatible 0
	// to the order's current size. See Order.
	fullRemainingOnNoFills bool
}

// Option configures a Client at connect time.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP transport.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger attaches a structured logger. Default is a nop logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithPollInterval sets the finality polling interval.
func WithPollInterval(d time.Duration) Option { return func(c *Client) { c.pollInterval = d } }

// WithFullRemainingOnNoFills makes the projector report an unfilled
// order's full size as remaining instead of the ledger-compatible 0.
// See the note on Order.
func WithFullRemainingOnNoFills() Option {
	return func(c *Client) { c.fullRemainingOnNoFills = true }
}

// Connect dials a ledger node, reads the chain id, and synchronizes
// the local sequence-number counter with the account's on-ledger
// value.
func Connect(ctx context.Context, nodeURL string, laminar types.Address, signer *crypto.Signer, opts ...Option) (*Client, error) {
	c := &Client{
		laminar:      laminar,
		baseURL:      strings.TrimRight(nodeURL, "/") + "/v1",
		http:         http.DefaultClient,
		signer:       signer,
		address:      signer.Address(),
		log:          zap.NewNop(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	var index indexData
	if err := c.doJSON(ctx, http.MethodGet, "", nil, &index); err != nil {
		return nil, fmt.Errorf("connect %s: %w", nodeURL, err)
	}
	c.chainID = index.ChainId

	account, err := c.accountInfo(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", nodeURL, err)
	}
	c.seqNum = uint64(account.SequenceNumber)

	c.log.Info("connected to ledger node",
		zap.String("node", nodeURL),
		zap.Uint8("chain_id", c.chainID),
		zap.String("account", c.address.ShortHex()),
		zap.Uint64("sequence_number", c.seqNum))
	return c, nil
}

// ConnectWithStrings is Connect with hex-literal contract address and
// private key strings.
func ConnectWithStrings(ctx context.Context, nodeURL, laminarAddr, privateKey string, opts ...Option) (*Client, error) {
	laminar, err := types.ParseAddress(laminarAddr)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}
	signer, err := crypto.FromPrivateKeyHex(privateKey)
	if err != nil {
		return nil, err
	}
	return Connect(ctx, nodeURL, laminar, signer, opts...)
}

// Contract returns the address holding the contract modules.
func (c *Client) Contract() types.Address { return c.laminar }

// Address returns this client's account address.
func (c *Client) Address() types.Address { return c.address }

// LocalSequenceNumber returns the local counter without a network
// round trip.
func (c *Client) LocalSequenceNumber() uint64 { return c.seqNum }

// SequenceNumber fetches the authoritative sequence number from the
// ledger.
func (c *Client) SequenceNumber(ctx context.Context) (uint64, error) {
	account, err := c.accountInfo(ctx, c.address)
	if err != nil {
		return 0, err
	}
	return uint64(account.SequenceNumber), nil
}

// UpdateChainID re-reads the chain id from the node. Needed when the
// node operator redeploys under a new chain id.
func (c *Client) UpdateChainID(ctx context.Context) error {
	var index indexData
	if err := c.doJSON(ctx, http.MethodGet, "", nil, &index); err != nil {
		return err
	}
	c.chainID = index.ChainId
	return nil
}

// DoesCoinExist reports whether a coin type is published on the
// ledger.
func (c *Client) DoesCoinExist(ctx context.Context, coinType string) (bool, error) {
	_, found, err := c.accountResource(ctx, c.address, fmt.Sprintf("0x1::coin::CoinInfo<%s>", coinType))
	return found, err
}

// IsRegisteredForCoin reports whether this account can hold the coin.
func (c *Client) IsRegisteredForCoin(ctx context.Context, coinType string) (bool, error) {
	_, found, err := c.accountResource(ctx, c.address, fmt.Sprintf("0x1::coin::CoinStore<%s>", coinType))
	return found, err
}

// CoinBalance returns this account's balance of the coin.
func (c *Client) CoinBalance(ctx context.Context, coinType string) (uint64, error) {
	rd, found, err := c.accountResource(ctx, c.address, fmt.Sprintf("0x1::coin::CoinStore<%s>", coinType))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("coin store %s: %w", coinType, ErrNotFound)
	}
	var store struct {
		Coin struct {
			Value types.Uint64 `json:"value"`
		} `json:"coin"`
	}
	if err := json.Unmarshal(rd.Data, &store); err != nil {
		return 0, &types.DecodeError{What: "coin store", Err: err}
	}
	return uint64(store.Coin.Value), nil
}

// IsUserRegistered reports whether this account holds an
// OrderBookStore and is therefore eligible to trade.
func (c *Client) IsUserRegistered(ctx context.Context) (bool, error) {
	storeType := fmt.Sprintf("%s::book::OrderBookStore", c.laminar.ShortHex())
	_, found, err := c.accountResource(ctx, c.address, storeType)
	return found, err
}
