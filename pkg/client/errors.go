package client

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an absent remote resource or order id. Never
// retried.
var ErrNotFound = errors.New("not found")

// ErrSubmitFallthrough is the defensive fallback for the retry loop
// completing without producing either a transaction or an error. It
// should be unreachable while the resync logic is correct; returning
// it instead of panicking documents the assumed-impossible state.
var ErrSubmitFallthrough = errors.New("submission failed")

// Rejection codes the node returns for submissions that fail
// validation or execution. The first three are recoverable by
// resynchronizing the sequence number; everything else is terminal.
const (
	CodeSequenceNumberTooOld     = "sequence_number_too_old"
	CodeInvalidTransactionUpdate = "invalid_transaction_update"
	CodeVMError                  = "vm_error"
)

// RejectedError is a ledger-side validation or execution failure.
type RejectedError struct {
	Code    string
	Message string
	Status  int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected (%s): %s", e.Code, e.Message)
}

// Retryable reports whether the rejection is recoverable by fetching
// the authoritative sequence number and retrying.
func (e *RejectedError) Retryable() bool {
	switch e.Code {
	case CodeSequenceNumberTooOld, CodeInvalidTransactionUpdate, CodeVMError:
		return true
	}
	return false
}

// UnexpectedResponseError reports a finalized transaction of the wrong
// kind, e.g. the node returning something other than a user
// transaction for a hash the client submitted.
type UnexpectedResponseError struct {
	Got string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response shape: got %q transaction", e.Got)
}
