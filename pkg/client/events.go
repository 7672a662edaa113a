package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/laminarhq/laminar-go/pkg/types"
)

// fetchEvents retrieves and decodes the entire named event-log field
// for this client's account.
func fetchEvents[E any](ctx context.Context, c *Client, field string) ([]E, error) {
	raws, err := c.rawEvents(ctx, field)
	if err != nil {
		return nil, err
	}
	events := make([]E, 0, len(raws))
	for _, raw := range raws {
		var e E
		if err := json.Unmarshal(raw.Data, &e); err != nil {
			return nil, &types.DecodeError{What: field + " entry", Err: err}
		}
		events = append(events, e)
	}
	return events, nil
}

// filteredEvents returns the entries matching the predicate, in
// emission order. Earlier revisions evaluated the predicate but
// returned the unfiltered set; that was a defect and the filtered
// subset is the supported behavior.
func filteredEvents[E any](ctx context.Context, c *Client, field string, pred func(*E) bool) ([]E, error) {
	events, err := fetchEvents[E](ctx, c, field)
	if err != nil {
		return nil, err
	}
	matched := make([]E, 0, len(events))
	for i := range events {
		if pred(&events[i]) {
			matched = append(matched, events[i])
		}
	}
	return matched, nil
}

// OrderBooks fetches every book-creation event logged for this
// account.
func (c *Client) OrderBooks(ctx context.Context) ([]types.CreateOrderBookEvent, error) {
	return fetchEvents[types.CreateOrderBookEvent](ctx, c, types.CreateOrderBookField)
}

// PlaceEvents fetches this account's place events for one book.
func (c *Client) PlaceEvents(ctx context.Context, bookID types.Id) ([]types.PlaceOrderEvent, error) {
	return filteredEvents(ctx, c, types.PlaceOrderField,
		func(e *types.PlaceOrderEvent) bool { return e.BookId == bookID })
}

// PlaceEvent fetches the single place event for an order id. Its
// absence means the order does not exist: ErrNotFound.
func (c *Client) PlaceEvent(ctx context.Context, orderID types.Id) (*types.PlaceOrderEvent, error) {
	events, err := fetchEvents[types.PlaceOrderEvent](ctx, c, types.PlaceOrderField)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].OrderId == orderID {
			return &events[i], nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
}

// AmendEvents fetches this account's amend events for one book.
func (c *Client) AmendEvents(ctx context.Context, bookID types.Id) ([]types.AmendOrderEvent, error) {
	return filteredEvents(ctx, c, types.AmendOrderField,
		func(e *types.AmendOrderEvent) bool { return e.BookId == bookID })
}

// AmendEventsForOrder fetches the amend history of one order, oldest
// first. ErrNotFound if the order was never placed.
func (c *Client) AmendEventsForOrder(ctx context.Context, orderID types.Id) ([]types.AmendOrderEvent, error) {
	if _, err := c.PlaceEvent(ctx, orderID); err != nil {
		return nil, err
	}
	return c.amendEventsFor(ctx, orderID)
}

func (c *Client) amendEventsFor(ctx context.Context, orderID types.Id) ([]types.AmendOrderEvent, error) {
	return filteredEvents(ctx, c, types.AmendOrderField,
		func(e *types.AmendOrderEvent) bool { return e.OrderId == orderID })
}

// CancelEvents fetches this account's cancel events for one book.
func (c *Client) CancelEvents(ctx context.Context, bookID types.Id) ([]types.CancelOrderEvent, error) {
	return filteredEvents(ctx, c, types.CancelOrderField,
		func(e *types.CancelOrderEvent) bool { return e.BookId == bookID })
}

// CancelEventForOrder fetches the cancel event for an order, or nil if
// the order has not been canceled.
func (c *Client) CancelEventForOrder(ctx context.Context, orderID types.Id) (*types.CancelOrderEvent, error) {
	events, err := fetchEvents[types.CancelOrderEvent](ctx, c, types.CancelOrderField)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].OrderId == orderID {
			return &events[i], nil
		}
	}
	return nil, nil
}

// FillEvents fetches this account's fill events for one book.
func (c *Client) FillEvents(ctx context.Context, bookID types.Id) ([]types.FillEvent, error) {
	return filteredEvents(ctx, c, types.FillField,
		func(e *types.FillEvent) bool { return e.BookId == bookID })
}

// FillEventsForOrder fetches the fill history of one order, oldest
// first. ErrNotFound if the order was never placed.
func (c *Client) FillEventsForOrder(ctx context.Context, orderID types.Id) ([]types.FillEvent, error) {
	if _, err := c.PlaceEvent(ctx, orderID); err != nil {
		return nil, err
	}
	return c.fillEventsFor(ctx, orderID)
}

func (c *Client) fillEventsFor(ctx context.Context, orderID types.Id) ([]types.FillEvent, error) {
	return filteredEvents(ctx, c, types.FillField,
		func(e *types.FillEvent) bool { return e.OrderId == orderID })
}
