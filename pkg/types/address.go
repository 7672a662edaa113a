package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the byte length of a ledger account address.
const AddressLength = 32

// Address is a 32-byte account address. The zero value is the null address.
type Address [AddressLength]byte

// ParseAddress parses a hex-literal address string ("0x1", "0xab3f...").
// Short literals are left-padded with zeros, matching the ledger's
// canonical short form for well-known addresses.
func ParseAddress(s string) (Address, error) {
	var a Address
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return a, fmt.Errorf("address %q: missing 0x prefix", s)
	}
	body := s[2:]
	if len(body) == 0 || len(body) > 2*AddressLength {
		return a, fmt.Errorf("address %q: invalid length", s)
	}
	if len(body)%2 == 1 {
		body = "0" + body
	}
	raw, err := hexutil.Decode("0x" + body)
	if err != nil {
		return a, fmt.Errorf("address %q: %w", s, err)
	}
	copy(a[AddressLength-len(raw):], raw)
	return a, nil
}

// MustParseAddress is ParseAddress that panics on malformed input.
// Intended for well-known constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Hex returns the full-width hex literal, e.g. "0x0000...0001".
func (a Address) Hex() string {
	return hexutil.Encode(a[:])
}

// ShortHex returns the hex literal with leading zeros trimmed ("0x1").
func (a Address) ShortHex() string {
	trimmed := strings.TrimLeft(a.Hex()[2:], "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return "0x" + trimmed
}

func (a Address) String() string { return a.Hex() }

// IsZero reports whether the address is the null address.
func (a Address) IsZero() bool { return a == Address{} }

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

func (a *Address) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("address: %w", err)
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
