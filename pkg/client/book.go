package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/laminarhq/laminar-go/pkg/types"
)

func (c *Client) bidsResourceType(base, quote string) string {
	return fmt.Sprintf("%s::book::OrderBookBids<%s, %s>", c.laminar.ShortHex(), base, quote)
}

func (c *Client) asksResourceType(base, quote string) string {
	return fmt.Sprintf("%s::book::OrderBookAsks<%s, %s>", c.laminar.ShortHex(), base, quote)
}

// OrderBook fetches and decodes both sides of a book owned by
// bookOwner. Either side's snapshot may be absent (that side is
// empty); both absent means the book does not exist: ErrNotFound.
// Book id and instrument are read from whichever snapshot is present.
func (c *Client) OrderBook(ctx context.Context, base, quote string, bookOwner types.Address) (*types.OrderBook, error) {
	bids, bidsFound, err := c.fetchBookSide(ctx, c.bidsResourceType(base, quote), bookOwner)
	if err != nil {
		return nil, err
	}
	asks, asksFound, err := c.fetchBookSide(ctx, c.asksResourceType(base, quote), bookOwner)
	if err != nil {
		return nil, err
	}
	if !bidsFound && !asksFound {
		return nil, fmt.Errorf("order book %s/%s at %s: %w", base, quote, bookOwner.ShortHex(), ErrNotFound)
	}

	book := bids
	if book == nil {
		book = asks
	} else if asks != nil {
		book.Asks = asks.Asks
	}
	return book, nil
}

// fetchBookSide fetches one side's snapshot resource and decodes it.
// The decoded book carries the side the resource holds; the other side
// map is empty.
func (c *Client) fetchBookSide(ctx context.Context, resourceType string, bookOwner types.Address) (*types.OrderBook, bool, error) {
	rd, found, err := c.accountResource(ctx, bookOwner, resourceType)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	book, err := types.DecodeOrderBook(rd.Data)
	if err != nil {
		return nil, false, err
	}
	book.CoinTypes = coinTypeParams(rd.Type)
	return book, true, nil
}

// coinTypeParams extracts the generic type parameters from a resource
// type name like "0x42::book::OrderBookBids<0x1::a::A, 0x1::b::B>".
func coinTypeParams(resourceType string) []string {
	open := strings.Index(resourceType, "<")
	close := strings.LastIndex(resourceType, ">")
	if open < 0 || close <= open {
		return nil
	}
	parts := strings.Split(resourceType[open+1:close], ",")
	params := make([]string, 0, len(parts))
	for _, p := range parts {
		params = append(params, strings.TrimSpace(p))
	}
	return params
}
