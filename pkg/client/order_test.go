package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/laminarhq/laminar-go/pkg/client"
	"github.com/laminarhq/laminar-go/pkg/types"
)

func TestOrderProjection(t *testing.T) {
	e := newEnv(t, 0)
	me := e.client.Address()
	ctx := context.Background()

	// Placed 10 at 100, one fill of 6 leaving 4.
	e.ledger.AppendEvent(me, types.PlaceOrderField, placeFixture(3, 10, types.Bid, 100, 10))
	e.ledger.AppendEvent(me, types.FillField, fillFixture(3, 10, 100, 6, 4))

	order, err := e.client.Order(ctx, orderId(10))
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if order.Side != types.Bid || uint64(order.Price) != 100 || uint64(order.Size) != 10 {
		t.Errorf("static fields: %+v", order)
	}
	if uint64(order.RemainingSize) != 4 {
		t.Errorf("remaining: got %d, want 4", uint64(order.RemainingSize))
	}
	if order.State != types.PartiallyFilled {
		t.Errorf("state: got %s, want partially_filled", order.State)
	}
	if len(order.Fills) != 1 {
		t.Errorf("fills: got %d, want 1", len(order.Fills))
	}
}

func TestOrderLastAmendWins(t *testing.T) {
	e := newEnv(t, 0)
	me := e.client.Address()

	e.ledger.AppendEvent(me, types.PlaceOrderField, placeFixture(3, 10, types.Ask, 100, 10))
	e.ledger.AppendEvent(me, types.AmendOrderField, types.AmendOrderEvent{
		BookId: bookId(3), OrderId: orderId(10), AmendId: orderId(50), Price: 120, Size: 8})
	e.ledger.AppendEvent(me, types.AmendOrderField, types.AmendOrderEvent{
		BookId: bookId(3), OrderId: orderId(10), AmendId: orderId(51), Price: 115, Size: 12})
	e.ledger.AppendEvent(me, types.FillField, fillFixture(3, 10, 115, 3, 9))

	order, err := e.client.Order(context.Background(), orderId(10))
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if uint64(order.Price) != 115 || uint64(order.Size) != 12 {
		t.Errorf("last amend not applied: price %d size %d", uint64(order.Price), uint64(order.Size))
	}
	if uint64(order.RemainingSize) != 9 || order.State != types.PartiallyFilled {
		t.Errorf("remaining/state: %+v", order)
	}
}

func TestOrderCanceledNoFills(t *testing.T) {
	e := newEnv(t, 0)
	me := e.client.Address()

	e.ledger.AppendEvent(me, types.PlaceOrderField, placeFixture(3, 10, types.Bid, 100, 10))
	e.ledger.AppendEvent(me, types.CancelOrderField, types.CancelOrderEvent{
		BookId: bookId(3), OrderId: orderId(10), CancelId: orderId(60)})

	order, err := e.client.Order(context.Background(), orderId(10))
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if order.State != types.Closed {
		t.Errorf("state: got %s, want closed", order.State)
	}
	// No fills: remaining defaults to 0 to match the contract's view.
	if uint64(order.RemainingSize) != 0 {
		t.Errorf("remaining: got %d, want 0", uint64(order.RemainingSize))
	}
}

func TestOrderFullRemainingOption(t *testing.T) {
	e := newEnv(t, 0, client.WithFullRemainingOnNoFills())
	me := e.client.Address()
	ctx := context.Background()

	e.ledger.AppendEvent(me, types.PlaceOrderField, placeFixture(3, 10, types.Bid, 100, 10))

	order, err := e.client.Order(ctx, orderId(10))
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if uint64(order.RemainingSize) != 10 {
		t.Errorf("remaining with option: got %d, want 10", uint64(order.RemainingSize))
	}
	if order.State != types.Open {
		t.Errorf("state with option: got %s, want open", order.State)
	}

	// Cancel still closes regardless of the remaining-size default.
	e.ledger.AppendEvent(me, types.CancelOrderField, types.CancelOrderEvent{
		BookId: bookId(3), OrderId: orderId(10), CancelId: orderId(60)})
	order, err = e.client.Order(ctx, orderId(10))
	if err != nil {
		t.Fatalf("Order after cancel: %v", err)
	}
	if order.State != types.Closed || uint64(order.RemainingSize) != 10 {
		t.Errorf("canceled with option: %+v", order)
	}
}

// Without the option a fresh unfilled order projects remaining 0 and
// therefore Closed. That mirrors the ledger contract's own view.
func TestOrderFreshDefaultIsClosed(t *testing.T) {
	e := newEnv(t, 0)
	me := e.client.Address()
	e.ledger.AppendEvent(me, types.PlaceOrderField, placeFixture(3, 10, types.Bid, 100, 10))

	order, err := e.client.Order(context.Background(), orderId(10))
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if uint64(order.RemainingSize) != 0 || order.State != types.Closed {
		t.Errorf("fresh order default: %+v", order)
	}
}

func TestOrderClosedIsTerminal(t *testing.T) {
	e := newEnv(t, 0)
	me := e.client.Address()
	ctx := context.Background()

	e.ledger.AppendEvent(me, types.PlaceOrderField, placeFixture(3, 10, types.Bid, 100, 10))
	e.ledger.AppendEvent(me, types.FillField, fillFixture(3, 10, 100, 10, 0))

	order, err := e.client.Order(ctx, orderId(10))
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if order.State != types.Closed || uint64(order.RemainingSize) != 0 {
		t.Errorf("fully filled: %+v", order)
	}

	// A late cancel record must not reopen anything.
	e.ledger.AppendEvent(me, types.CancelOrderField, types.CancelOrderEvent{
		BookId: bookId(3), OrderId: orderId(10), CancelId: orderId(61)})
	order, err = e.client.Order(ctx, orderId(10))
	if err != nil {
		t.Fatalf("Order after late cancel: %v", err)
	}
	if order.State != types.Closed {
		t.Errorf("closed not terminal: %+v", order)
	}
}

// Remaining size tracks the latest fill and never increases as fills
// accumulate.
func TestOrderFillMonotonicity(t *testing.T) {
	e := newEnv(t, 0)
	me := e.client.Address()
	ctx := context.Background()

	e.ledger.AppendEvent(me, types.PlaceOrderField, placeFixture(3, 10, types.Bid, 100, 10))

	prev := uint64(10)
	for _, remaining := range []uint64{8, 5, 5, 1, 0} {
		e.ledger.AppendEvent(me, types.FillField, fillFixture(3, 10, 100, prev-remaining, remaining))
		order, err := e.client.Order(ctx, orderId(10))
		if err != nil {
			t.Fatalf("Order: %v", err)
		}
		if got := uint64(order.RemainingSize); got != remaining {
			t.Fatalf("remaining after fill to %d: got %d", remaining, got)
		}
		if uint64(order.RemainingSize) > prev {
			t.Fatalf("remaining increased: %d -> %d", prev, uint64(order.RemainingSize))
		}
		prev = remaining
	}

	order, err := e.client.Order(ctx, orderId(10))
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if order.State != types.Closed {
		t.Errorf("fully consumed order: got %s, want closed", order.State)
	}
	if len(order.Fills) != 5 {
		t.Errorf("fill history: got %d, want 5", len(order.Fills))
	}
}

func TestOrderNotFound(t *testing.T) {
	e := newEnv(t, 0)
	_, err := e.client.Order(context.Background(), orderId(404))
	if !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("unknown order: got %v, want ErrNotFound", err)
	}
}
