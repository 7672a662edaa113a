package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Event store field names. The contract logs each event kind into a
// fixed, stably named field of the per-account OrderBookStore.
const (
	CreateOrderBookField = "create_orderbook_events"
	PlaceOrderField      = "place_order_events"
	AmendOrderField      = "amend_order_events"
	CancelOrderField     = "cancel_order_events"
	FillField            = "fill_events"
)

// EventKind discriminates the members of the Event union.
type EventKind string

const (
	KindCreateOrderBook EventKind = "create_orderbook"
	KindPlaceOrder      EventKind = "place_order"
	KindAmendOrder      EventKind = "amend_order"
	KindCancelOrder     EventKind = "cancel_order"
	KindFill            EventKind = "fill"
)

// Event is one decoded contract event. The concrete type is one of
// CreateOrderBookEvent, PlaceOrderEvent, AmendOrderEvent,
// CancelOrderEvent or FillEvent.
type Event interface {
	Kind() EventKind
}

// TypeInfo names a contract struct: address, module and struct name.
// The node hex-encodes the module and struct name bytes on the wire.
type TypeInfo struct {
	AccountAddress Address
	ModuleName     string
	StructName     string
}

func (t TypeInfo) String() string {
	return fmt.Sprintf("%s::%s::%s", t.AccountAddress.ShortHex(), t.ModuleName, t.StructName)
}

// ParseTypeInfo parses "<addr>::<module>::<struct>".
func ParseTypeInfo(s string) (TypeInfo, error) {
	parts := strings.SplitN(s, "::", 3)
	if len(parts) != 3 {
		return TypeInfo{}, fmt.Errorf("type info %q: want <addr>::<module>::<struct>", s)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return TypeInfo{}, fmt.Errorf("type info %q: %w", s, err)
	}
	return TypeInfo{AccountAddress: addr, ModuleName: parts[1], StructName: parts[2]}, nil
}

type typeInfoWire struct {
	AccountAddress Address `json:"account_address"`
	ModuleName     string  `json:"module_name"`
	StructName     string  `json:"struct_name"`
}

func (t TypeInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(typeInfoWire{
		AccountAddress: t.AccountAddress,
		ModuleName:     hexutil.Encode([]byte(t.ModuleName)),
		StructName:     hexutil.Encode([]byte(t.StructName)),
	})
}

func (t *TypeInfo) UnmarshalJSON(b []byte) error {
	var w typeInfoWire
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("type info: %w", err)
	}
	module, err := decodeHexName(w.ModuleName)
	if err != nil {
		return fmt.Errorf("type info module_name: %w", err)
	}
	structName, err := decodeHexName(w.StructName)
	if err != nil {
		return fmt.Errorf("type info struct_name: %w", err)
	}
	t.AccountAddress = w.AccountAddress
	t.ModuleName = module
	t.StructName = structName
	return nil
}

func decodeHexName(s string) (string, error) {
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// CreateOrderBookEvent is logged once when a book is created.
type CreateOrderBookEvent struct {
	BookId        Id       `json:"book_id"`
	Creator       Address  `json:"creator"`
	Base          TypeInfo `json:"base"`
	Quote         TypeInfo `json:"quote"`
	PriceDecimals uint8    `json:"price_decimals"`
	SizeDecimals  uint8    `json:"size_decimals"`
	MinSizeAmount Uint64   `json:"min_size_amount"`
	BaseDecimals  uint8    `json:"base_decimals"`
	QuoteDecimals uint8    `json:"quote_decimals"`
	Time          Uint64   `json:"time"`
}

func (CreateOrderBookEvent) Kind() EventKind { return KindCreateOrderBook }

// PlaceOrderEvent is logged when an order enters the book. There is
// exactly one per order id.
type PlaceOrderEvent struct {
	BookId      Id          `json:"book_id"`
	OrderId     Id          `json:"order_id"`
	Side        Side        `json:"side"`
	Price       Uint64      `json:"price"`
	Size        Uint64      `json:"size"`
	TimeInForce TimeInForce `json:"time_in_force"`
	PostOnly    bool        `json:"post_only"`
	Time        Uint64      `json:"time"`
}

func (PlaceOrderEvent) Kind() EventKind { return KindPlaceOrder }

// AmendOrderEvent is logged for each price/size amendment, in emission
// order.
type AmendOrderEvent struct {
	BookId  Id     `json:"book_id"`
	OrderId Id     `json:"order_id"`
	AmendId Id     `json:"amend_id"`
	Side    Side   `json:"side"`
	Price   Uint64 `json:"price"`
	Size    Uint64 `json:"size"`
	Time    Uint64 `json:"time"`
}

func (AmendOrderEvent) Kind() EventKind { return KindAmendOrder }

// CancelOrderEvent is logged at most once per order.
type CancelOrderEvent struct {
	BookId   Id     `json:"book_id"`
	OrderId  Id     `json:"order_id"`
	CancelId Id     `json:"cancel_id"`
	Side     Side   `json:"side"`
	Reason   uint8  `json:"reason"`
	Time     Uint64 `json:"time"`
}

func (CancelOrderEvent) Kind() EventKind { return KindCancelOrder }

// FillEvent is logged for each execution against the order, in
// emission order. RemainingSize is the size still resting after this
// fill.
type FillEvent struct {
	BookId        Id     `json:"book_id"`
	OrderId       Id     `json:"order_id"`
	Side          Side   `json:"side"`
	Price         Uint64 `json:"price"`
	FillSize      Uint64 `json:"fill_size"`
	Fee           Uint64 `json:"fee"`
	FeeRate       Uint64 `json:"fee_rate"`
	Time          Uint64 `json:"time"`
	RemainingSize Uint64 `json:"remaining_size"`
	IsMaker       bool   `json:"is_maker"`
}

func (FillEvent) Kind() EventKind { return KindFill }

// DecodeEvent decodes one raw event payload into the Event union,
// dispatching on the struct name of its type tag.
func DecodeEvent(structName string, data json.RawMessage) (Event, error) {
	switch structName {
	case "CreateOrderBookEvent":
		var e CreateOrderBookEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, &DecodeError{What: "create_orderbook event", Err: err}
		}
		return e, nil
	case "PlaceOrderEvent":
		var e PlaceOrderEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, &DecodeError{What: "place_order event", Err: err}
		}
		return e, nil
	case "AmendOrderEvent":
		var e AmendOrderEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, &DecodeError{What: "amend_order event", Err: err}
		}
		return e, nil
	case "CancelOrderEvent":
		var e CancelOrderEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, &DecodeError{What: "cancel_order event", Err: err}
		}
		return e, nil
	case "FillEvent":
		var e FillEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, &DecodeError{What: "fill event", Err: err}
		}
		return e, nil
	default:
		return nil, &DecodeError{What: fmt.Sprintf("unknown event struct %q", structName)}
	}
}
