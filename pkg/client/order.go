package client

import (
	"context"

	"github.com/laminarhq/laminar-go/pkg/types"
)

// Order projects an order's current state from its event history. The
// projection is a pure function of four event lists, recomputed from
// scratch on every call:
//
//   - price and size come from the last amend event, or the place
//     event when the order was never amended;
//   - remaining size comes from the last fill event. With zero fills
//     the default is 0, matching the ledger contract's own view; that
//     zero reads oddly for a fresh order (nothing filled, yet nothing
//     remaining) but changing it silently would break compatibility
//     testing against the contract. WithFullRemainingOnNoFills opts
//     into reporting the order's full size instead.
//   - state is Closed when remaining size is 0 or a cancel exists,
//     PartiallyFilled when any fill exists, Open otherwise. Closed is
//     terminal.
//
// The order id not having a place event is ErrNotFound.
func (c *Client) Order(ctx context.Context, orderID types.Id) (*types.Order, error) {
	place, err := c.PlaceEvent(ctx, orderID)
	if err != nil {
		return nil, err
	}
	amends, err := c.amendEventsFor(ctx, orderID)
	if err != nil {
		return nil, err
	}
	cancel, err := c.CancelEventForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	fills, err := c.fillEventsFor(ctx, orderID)
	if err != nil {
		return nil, err
	}

	price, size := place.Price, place.Size
	if len(amends) > 0 {
		last := amends[len(amends)-1]
		price, size = last.Price, last.Size
	}

	var remaining types.Uint64
	switch {
	case len(fills) > 0:
		remaining = fills[len(fills)-1].RemainingSize
	case c.fullRemainingOnNoFills:
		remaining = size
	}

	state := types.Open
	switch {
	case remaining == 0 || cancel != nil:
		state = types.Closed
	case len(fills) > 0:
		state = types.PartiallyFilled
	}

	return &types.Order{
		Id:            orderID,
		Side:          place.Side,
		Price:         price,
		Size:          size,
		PostOnly:      place.PostOnly,
		RemainingSize: remaining,
		State:         state,
		Fills:         fills,
	}, nil
}
