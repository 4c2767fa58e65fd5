package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that abort a whole import.
type ErrorKind string

const (
	KindRead             ErrorKind = "read"
	KindInsufficientRows ErrorKind = "insufficient_rows"
	KindHeaderMismatch   ErrorKind = "header_mismatch"
	KindGateway          ErrorKind = "gateway"
)

// User-visible messages of top-level failures.
const (
	MsgReadFailed       = "Failed to process file"
	MsgInsufficientRows = "File must contain at least a header row and one data row"
	MsgGatewayFailed    = "Failed to fetch available products for validation"
)

// Row-level diagnostics.
const (
	msgLengthMismatch   = "Product IDs, names, prices, and quantities must have the same number of items when separated by |"
	msgOrderIDRequired  = "Order ID is required"
	msgCustomerRequired = "Customer Name is required"
)

// ImportError is a top-level import failure. Row problems are never
// reported through ImportError; they are recorded on the OrderRecord.
type ImportError struct {
	Kind    ErrorKind
	Message string // Shown to the user as ImportResult.Message
	Err     error  // Underlying cause, for logs
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is matches another *ImportError of the same kind, so callers can test
// against the sentinel values below with errors.Is.
func (e *ImportError) Is(target error) bool {
	t, ok := target.(*ImportError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrRead             = &ImportError{Kind: KindRead}
	ErrInsufficientRows = &ImportError{Kind: KindInsufficientRows}
	ErrHeaderMismatch   = &ImportError{Kind: KindHeaderMismatch}
	ErrGateway          = &ImportError{Kind: KindGateway}
)

func newReadError(err error) *ImportError {
	return &ImportError{Kind: KindRead, Message: MsgReadFailed, Err: err}
}

func newGatewayError(err error) *ImportError {
	return &ImportError{Kind: KindGateway, Message: MsgGatewayFailed, Err: err}
}

// KindOf returns the kind of a top-level import error, or "" when err is not
// an ImportError.
func KindOf(err error) ErrorKind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}
