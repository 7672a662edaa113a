package types

import (
	"encoding/json"
	"sort"
	"strconv"
)

// sentinelIdx terminates a price level's linked order queue.
const sentinelIdx = ^uint64(0)

// Order is a client-side view of one resting order. It is recomputed
// fresh on every query from snapshot or event data and never mutated
// in place.
type Order struct {
	Id            Id     `json:"id"`
	Side          Side   `json:"side"`
	Price         Uint64 `json:"price"`
	Size          Uint64 `json:"size"`
	PostOnly      bool   `json:"post_only"`
	RemainingSize Uint64 `json:"remaining_size"`

	// Derived, absent from snapshots.
	State State       `json:"-"`
	Fills []FillEvent `json:"-"`
}

// PriceLevel is one price point and its resting queue, oldest first.
type PriceLevel struct {
	Price  uint64
	Orders []Order
}

// OrderBook is an ephemeral projection of one book's resting state.
// Queue order within a level is FIFO arrival order (price-time
// priority) exactly as stored on the ledger.
type OrderBook struct {
	Id         Id
	Instrument Instrument
	Bids       map[uint64][]Order
	Asks       map[uint64][]Order

	// CoinTypes carries the book's base and quote coin type names as
	// read from the snapshot resource type, for later payload
	// construction.
	CoinTypes []string
}

// BidLevels returns the bid side ascending by price.
func (b *OrderBook) BidLevels() []PriceLevel { return sortedLevels(b.Bids) }

// AskLevels returns the ask side ascending by price.
func (b *OrderBook) AskLevels() []PriceLevel { return sortedLevels(b.Asks) }

// BestBid returns the highest bid price, or false on an empty side.
func (b *OrderBook) BestBid() (uint64, bool) {
	best, ok := uint64(0), false
	for p := range b.Bids {
		if !ok || p > best {
			best, ok = p, true
		}
	}
	return best, ok
}

// BestAsk returns the lowest ask price, or false on an empty side.
func (b *OrderBook) BestAsk() (uint64, bool) {
	best, ok := uint64(0), false
	for p := range b.Asks {
		if !ok || p < best {
			best, ok = p, true
		}
	}
	return best, ok
}

func sortedLevels(side map[uint64][]Order) []PriceLevel {
	levels := make([]PriceLevel, 0, len(side))
	for price, orders := range side {
		levels = append(levels, PriceLevel{Price: price, Orders: orders})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })
	return levels
}

// Snapshot wire layout. The on-chain side structure is a splay tree of
// price nodes over an arena: a node array plus a tombstone index set,
// with each node holding a singly linked FIFO queue of option-wrapped
// orders. Tree bookkeeping fields (root, min, max, left/right links)
// are ignored; only the arena and the queues matter here.
type guardedIdx struct {
	Value Uint64 `json:"value"`
}

type orderSlot struct {
	Vec []Order `json:"vec"`
}

type queueEntry struct {
	Next  guardedIdx `json:"next"`
	Value *orderSlot `json:"value"`
}

type orderQueue struct {
	Head  guardedIdx   `json:"head"`
	Nodes []queueEntry `json:"nodes"`
}

type priceNode struct {
	Key   *string     `json:"key"`
	Value *orderQueue `json:"value"`
}

type sideSnapshot struct {
	Nodes        []priceNode `json:"nodes"`
	RemovedNodes []string    `json:"removed_nodes"`
}

// orders resolves the level's FIFO queue by walking head-to-sentinel.
// Traversal order is arrival order and must not be re-sorted. The walk
// is bounded by the entry count; exceeding it means the next pointers
// form a cycle.
func (q *orderQueue) orders() ([]Order, error) {
	orders := []Order{}
	cur := uint64(q.Head.Value)
	for steps := 0; cur != sentinelIdx; steps++ {
		if steps >= len(q.Nodes) {
			return nil, &DecodeError{What: "order queue", Err: ErrQueueCycle}
		}
		if cur >= uint64(len(q.Nodes)) {
			return nil, &DecodeError{What: "order queue: entry index " + strconv.FormatUint(cur, 10) + " out of range"}
		}
		entry := q.Nodes[cur]
		if entry.Value == nil || len(entry.Value.Vec) == 0 {
			return nil, &DecodeError{What: "order queue", Err: ErrEmptyOrderSlot}
		}
		orders = append(orders, entry.Value.Vec[0])
		cur = uint64(entry.Next.Value)
	}
	return orders, nil
}

// levels discards tombstoned arena positions, then resolves each
// surviving node into price -> FIFO orders. Decoding a side is
// all-or-nothing: the first malformed node fails the whole side.
func (s *sideSnapshot) levels() (map[uint64][]Order, error) {
	removed := make(map[uint64]struct{}, len(s.RemovedNodes))
	for _, tomb := range s.RemovedNodes {
		idx, err := strconv.ParseUint(tomb, 10, 64)
		if err != nil {
			return nil, &DecodeError{What: "tombstone index", Err: err}
		}
		removed[idx] = struct{}{}
	}

	side := make(map[uint64][]Order, len(s.Nodes))
	for i, node := range s.Nodes {
		if _, dead := removed[uint64(i)]; dead {
			continue
		}
		if node.Key == nil {
			return nil, &DecodeError{What: "price node: missing key"}
		}
		price, err := strconv.ParseUint(*node.Key, 10, 64)
		if err != nil {
			return nil, &DecodeError{What: "price key", Err: err}
		}
		if node.Value == nil {
			return nil, &DecodeError{What: "price node: missing queue"}
		}
		orders, err := node.Value.orders()
		if err != nil {
			return nil, err
		}
		side[price] = orders
	}
	return side, nil
}

type bookWire struct {
	Id         *Id           `json:"id"`
	Instrument *Instrument   `json:"instrument"`
	Bids       *sideSnapshot `json:"bids"`
	Asks       *sideSnapshot `json:"asks"`
}

// DecodeOrderBook parses one book snapshot resource. A snapshot
// carries the bid side, the ask side, or both; at least one must be
// present. The missing side decodes to an empty map.
func DecodeOrderBook(raw json.RawMessage) (*OrderBook, error) {
	var w bookWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &DecodeError{What: "order book snapshot", Err: err}
	}
	if w.Id == nil {
		return nil, &DecodeError{What: "order book snapshot: missing id"}
	}
	if w.Instrument == nil {
		return nil, &DecodeError{What: "order book snapshot: missing instrument"}
	}
	if w.Bids == nil && w.Asks == nil {
		return nil, &DecodeError{What: "order book snapshot: neither bids nor asks present"}
	}

	book := &OrderBook{
		Id:         *w.Id,
		Instrument: *w.Instrument,
		Bids:       map[uint64][]Order{},
		Asks:       map[uint64][]Order{},
	}
	var err error
	if w.Bids != nil {
		if book.Bids, err = w.Bids.levels(); err != nil {
			return nil, err
		}
	}
	if w.Asks != nil {
		if book.Asks, err = w.Asks.levels(); err != nil {
			return nil, err
		}
	}
	return book, nil
}
