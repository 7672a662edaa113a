package bcs

import (
	"bytes"
	"testing"

	"github.com/laminarhq/laminar-go/pkg/types"
)

func TestU64LittleEndian(t *testing.T) {
	tests := []struct {
		in   uint64
		want []byte
	}{
		{in: 0, want: []byte{0, 0, 0, 0, 0, 0, 0, 0}},
		{in: 1, want: []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{in: 0x0102030405060708, want: []byte{8, 7, 6, 5, 4, 3, 2, 1}},
		{in: ^uint64(0), want: bytes.Repeat([]byte{0xff}, 8)},
	}
	for _, tt := range tests {
		if got := U64(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("U64(%d): got %x, want %x", tt.in, got, tt.want)
		}
	}
}

func TestUleb128(t *testing.T) {
	tests := []struct {
		in   uint64
		want []byte
	}{
		{in: 0, want: []byte{0x00}},
		{in: 1, want: []byte{0x01}},
		{in: 127, want: []byte{0x7f}},
		{in: 128, want: []byte{0x80, 0x01}},
		{in: 300, want: []byte{0xac, 0x02}},
		{in: 16384, want: []byte{0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		got := NewEncoder().Uleb128(tt.in).Finish()
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Uleb128(%d): got %x, want %x", tt.in, got, tt.want)
		}
	}
}

func TestBool(t *testing.T) {
	if got := Bool(true); !bytes.Equal(got, []byte{1}) {
		t.Errorf("Bool(true): got %x", got)
	}
	if got := Bool(false); !bytes.Equal(got, []byte{0}) {
		t.Errorf("Bool(false): got %x", got)
	}
}

func TestString(t *testing.T) {
	got := NewEncoder().String("book").Finish()
	want := []byte{0x04, 'b', 'o', 'o', 'k'}
	if !bytes.Equal(got, want) {
		t.Errorf("String(book): got %x, want %x", got, want)
	}
	if got := NewEncoder().String("").Finish(); !bytes.Equal(got, []byte{0x00}) {
		t.Errorf("String(empty): got %x", got)
	}
}

func TestAddressRaw(t *testing.T) {
	a := types.MustParseAddress("0x42")
	got := Address(a)
	if len(got) != 32 {
		t.Fatalf("address width: got %d, want 32", len(got))
	}
	if got[31] != 0x42 {
		t.Errorf("last byte: got %x, want 42", got[31])
	}
	for _, b := range got[:31] {
		if b != 0 {
			t.Fatalf("short address not left padded: %x", got)
		}
	}
}

func TestChainedEncoding(t *testing.T) {
	got := NewEncoder().
		U8(0x07).
		U64(5).
		String("hi").
		Bool(true).
		Finish()
	want := []byte{0x07, 5, 0, 0, 0, 0, 0, 0, 0, 0x02, 'h', 'i', 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("chained: got %x, want %x", got, want)
	}
	if NewEncoder().U64(1).Len() != 8 {
		t.Error("Len after U64: want 8")
	}
}
