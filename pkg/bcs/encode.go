// Package bcs implements the canonical binary serialization used for
// entry-function arguments and raw transaction signing bytes: fixed
// field order, little-endian fixed-width integers, uleb128 length
// prefixes, no padding. The remote contract decodes arguments
// byte-for-byte, so this encoding must stay byte-exact.
package bcs

import (
	"bytes"
	"encoding/binary"

	"github.com/laminarhq/laminar-go/pkg/types"
)

// Encoder accumulates a canonical byte string.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder { return &Encoder{} }

func (e *Encoder) U8(v uint8) *Encoder {
	e.buf.WriteByte(v)
	return e
}

func (e *Encoder) U64(v uint64) *Encoder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
	return e
}

func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
	return e
}

// Uleb128 writes an unsigned LEB128 varint, used for all sequence
// length prefixes.
func (e *Encoder) Uleb128(v uint64) *Encoder {
	for v >= 0x80 {
		e.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	e.buf.WriteByte(byte(v))
	return e
}

// Bytes writes a length-prefixed byte string.
func (e *Encoder) Bytes(b []byte) *Encoder {
	e.Uleb128(uint64(len(b)))
	e.buf.Write(b)
	return e
}

// String writes a length-prefixed utf-8 string.
func (e *Encoder) String(s string) *Encoder {
	return e.Bytes([]byte(s))
}

// FixedBytes writes raw bytes with no length prefix, for fields whose
// width is fixed by the schema.
func (e *Encoder) FixedBytes(b []byte) *Encoder {
	e.buf.Write(b)
	return e
}

// Address writes the 32 raw address bytes.
func (e *Encoder) Address(a types.Address) *Encoder {
	return e.FixedBytes(a[:])
}

func (e *Encoder) Len() int      { return e.buf.Len() }
func (e *Encoder) Finish() []byte { return e.buf.Bytes() }

// Single-value helpers for encoding one entry-function argument each.

func U8(v uint8) []byte   { return NewEncoder().U8(v).Finish() }
func U64(v uint64) []byte { return NewEncoder().U64(v).Finish() }
func Bool(v bool) []byte  { return NewEncoder().Bool(v).Finish() }

func Address(a types.Address) []byte { return NewEncoder().Address(a).Finish() }
