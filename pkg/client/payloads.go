package client

import (
	"fmt"

	"github.com/laminarhq/laminar-go/pkg/bcs"
	"github.com/laminarhq/laminar-go/pkg/types"
)

// EntryFunction is one typed contract call: target function, coin
// type arguments, and the canonical-encoded arguments, one byte string
// per argument.
type EntryFunction struct {
	ModuleAddress types.Address
	ModuleName    string
	Function      string
	TypeArgs      []string
	Args          [][]byte
}

// FunctionID returns the fully qualified function name.
func (e EntryFunction) FunctionID() string {
	return fmt.Sprintf("%s::%s::%s", e.ModuleAddress.ShortHex(), e.ModuleName, e.Function)
}

func (c *Client) bookEntry(function string, typeArgs []string, args [][]byte) EntryFunction {
	return EntryFunction{
		ModuleAddress: c.laminar,
		ModuleName:    "book",
		Function:      function,
		TypeArgs:      typeArgs,
		Args:          args,
	}
}

// RegisterUserPayload registers this client's account for trading.
func (c *Client) RegisterUserPayload() EntryFunction {
	return c.bookEntry("register_user", nil, nil)
}

// RegisterForCoinPayload registers this account to hold a coin type.
func RegisterForCoinPayload(coinType string) EntryFunction {
	return EntryFunction{
		ModuleAddress: types.MustParseAddress("0x1"),
		ModuleName:    "managed_coin",
		Function:      "register",
		TypeArgs:      []string{coinType},
	}
}

// CreateOrderBookPayload creates a new book for the base/quote pair.
// minSizeAmount is the minimum resting order size in lots.
func (c *Client) CreateOrderBookPayload(base, quote string, priceDecimals, sizeDecimals uint8, minSizeAmount uint64) EntryFunction {
	return c.bookEntry("create_orderbook",
		[]string{base, quote},
		[][]byte{
			bcs.U8(priceDecimals),
			bcs.U8(sizeDecimals),
			bcs.U64(minSizeAmount),
		})
}

// PlaceLimitOrderPayload places a limit order on bookOwner's book.
func (c *Client) PlaceLimitOrderPayload(base, quote string, bookOwner types.Address, side types.Side, price, size uint64, tif types.TimeInForce, postOnly bool) EntryFunction {
	return c.bookEntry("place_limit_order",
		[]string{base, quote},
		[][]byte{
			bcs.Address(bookOwner),
			bcs.U8(uint8(side)),
			bcs.U64(price),
			bcs.U64(size),
			bcs.U8(uint8(tif)),
			bcs.Bool(postOnly),
		})
}

// PlaceMarketOrderPayload places a market order on bookOwner's book.
func (c *Client) PlaceMarketOrderPayload(base, quote string, bookOwner types.Address, side types.Side, size uint64) EntryFunction {
	return c.bookEntry("place_market_order",
		[]string{base, quote},
		[][]byte{
			bcs.Address(bookOwner),
			bcs.U8(uint8(side)),
			bcs.U64(size),
		})
}

// AmendOrderPayload changes an order's price and size. Pass the
// current values for fields that should not change.
func (c *Client) AmendOrderPayload(base, quote string, bookOwner types.Address, orderID types.Id, side types.Side, price, size uint64) EntryFunction {
	return c.bookEntry("amend_order",
		[]string{base, quote},
		[][]byte{
			bcs.Address(bookOwner),
			bcs.U64(uint64(orderID.CreationNum)),
			bcs.U8(uint8(side)),
			bcs.U64(price),
			bcs.U64(size),
		})
}

// CancelOrderPayload cancels a resting order.
func (c *Client) CancelOrderPayload(base, quote string, bookOwner types.Address, orderID types.Id, side types.Side) EntryFunction {
	return c.bookEntry("cancel_order",
		[]string{base, quote},
		[][]byte{
			bcs.Address(bookOwner),
			bcs.U64(uint64(orderID.CreationNum)),
			bcs.U8(uint8(side)),
		})
}
