package types

import (
	"errors"
	"fmt"
)

// Corruption sentinels surfaced by the snapshot decoder. Wrap inside
// DecodeError so callers can match either the class or the cause.
var (
	// ErrEmptyOrderSlot: a queue entry's order container held zero
	// orders. Every live entry must hold exactly one.
	ErrEmptyOrderSlot = errors.New("order slot holds no order")

	// ErrQueueCycle: queue traversal visited more entries than the
	// level contains without reaching the sentinel index.
	ErrQueueCycle = errors.New("order queue never reached sentinel")
)

// DecodeError reports malformed remote state: a missing field, a
// corrupt queue, a bad tombstone index, or an unparseable integer
// string. Decode errors are never retried; they indicate the remote
// snapshot or event cannot be trusted.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s", e.What)
	}
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
