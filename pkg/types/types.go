// Package types holds the domain model exposed by the Laminar ledger
// contract: account addresses, order and book views, and the event
// records logged per account. Wire decoding follows the node API
// conventions: every u64 travels as a decimal string, enums travel as
// either a bare number or a numeric string.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Uint64 is a u64 that is transport-encoded as a decimal string.
// The node API never emits native JSON numbers for 64-bit fields.
type Uint64 uint64

func (u Uint64) String() string { return strconv.FormatUint(uint64(u), 10) }

func (u Uint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("u64: expected decimal string, got %s", b)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("u64: %q is not a valid unsigned integer", s)
	}
	*u = Uint64(n)
	return nil
}

// Id uniquely identifies an order or book within its creating account.
// Equality is structural; Id values are minted by the ledger contract,
// never by the client.
type Id struct {
	CreationNum Uint64  `json:"creation_num"`
	Addr        Address `json:"addr"`
}

// String renders the id as "<addr>:<creation_num>".
func (id Id) String() string {
	return fmt.Sprintf("%s:%d", id.Addr.ShortHex(), uint64(id.CreationNum))
}

// ParseId is the inverse of String.
func ParseId(s string) (Id, error) {
	addr, num, ok := strings.Cut(s, ":")
	if !ok {
		return Id{}, fmt.Errorf("id %q: want <addr>:<creation_num>", s)
	}
	a, err := ParseAddress(addr)
	if err != nil {
		return Id{}, fmt.Errorf("id %q: %w", s, err)
	}
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return Id{}, fmt.Errorf("id %q: bad creation number: %w", s, err)
	}
	return Id{CreationNum: Uint64(n), Addr: a}, nil
}

// Side is the book side an order rests on.
type Side uint8

const (
	Bid Side = 0
	Ask Side = 1
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

func (s Side) MarshalJSON() ([]byte, error) { return enumMarshal(uint8(s)) }

func (s *Side) UnmarshalJSON(b []byte) error {
	n, err := enumUnmarshal(b)
	if err != nil {
		return fmt.Errorf("side: %w", err)
	}
	if n > uint64(Ask) {
		return fmt.Errorf("side: want bid=0 or ask=1, got %d", n)
	}
	*s = Side(n)
	return nil
}

// TimeInForce is recorded at placement and immutable thereafter.
type TimeInForce uint8

const (
	GoodTillCanceled  TimeInForce = 0
	ImmediateOrCancel TimeInForce = 1
	FillOrKill        TimeInForce = 2
)

func (t TimeInForce) String() string {
	switch t {
	case GoodTillCanceled:
		return "GTC"
	case ImmediateOrCancel:
		return "IOC"
	case FillOrKill:
		return "FOK"
	default:
		return fmt.Sprintf("tif(%d)", uint8(t))
	}
}

func (t TimeInForce) MarshalJSON() ([]byte, error) { return enumMarshal(uint8(t)) }

func (t *TimeInForce) UnmarshalJSON(b []byte) error {
	n, err := enumUnmarshal(b)
	if err != nil {
		return fmt.Errorf("time_in_force: %w", err)
	}
	if n > uint64(FillOrKill) {
		return fmt.Errorf("time_in_force: want GTC=0, IOC=1 or FOK=2, got %d", n)
	}
	*t = TimeInForce(n)
	return nil
}

// State is an order's derived lifecycle state. It is recomputed from
// event evidence on every query, never persisted, and Closed is
// terminal.
type State uint8

const (
	Open            State = 0
	PartiallyFilled State = 1
	Closed          State = 2
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case PartiallyFilled:
		return "partially_filled"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

func (s State) MarshalJSON() ([]byte, error) { return enumMarshal(uint8(s)) }

func (s *State) UnmarshalJSON(b []byte) error {
	n, err := enumUnmarshal(b)
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	if n > uint64(Closed) {
		return fmt.Errorf("state: want open=0, partially_filled=1 or closed=2, got %d", n)
	}
	*s = State(n)
	return nil
}

// enumUnmarshal accepts the two encodings the node emits for small
// enums: a bare JSON number or a numeric string.
func enumUnmarshal(b []byte) (uint64, error) {
	var n uint64
	if err := json.Unmarshal(b, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return 0, fmt.Errorf("expected number or numeric string, got %s", b)
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid enum value", s)
	}
	return n, nil
}

func enumMarshal(v uint8) ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(v), 10)), nil
}
