// Package repository is the datastore gateway.  Every backend reports
// failures as a *StoreError carrying one of a small set of kinds so that
// higher layers such as handlers can translate them into HTTP responses
// without knowing which driver produced them.
package repository

import (
	"context" // context carries deadlines and cancellation
	"errors"  // errors defines the kind sentinels
	"fmt"     // fmt renders StoreError messages
	"net"     // net exposes net.Error
)

// Kind classifies a datastore failure.
type Kind int

const (
	// KindUnknown is anything the backend could not classify. Handlers
	// translate it into an HTTP 500 response.
	KindUnknown Kind = iota
	// KindConnection means the datastore could not be reached or the
	// connection broke mid-call. Handlers translate it into 503.
	KindConnection
	// KindValidation means the caller supplied something the datastore
	// cannot accept, such as an unknown order field. Handlers answer 400.
	KindValidation
	// KindNotFound means the database, table or record does not exist.
	// Handlers answer 404.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "notFound"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against a *StoreError of the same kind.
var (
	ErrConnection = errors.New("datastore unreachable")
	ErrValidation = errors.New("invalid datastore input")
	ErrNotFound   = errors.New("not found in datastore")
)

// StoreError is the single error type returned by WordStore implementations.
type StoreError struct {
	Kind Kind   // failure category
	Op   string // gateway operation, e.g. "insert"
	Err  error  // underlying driver error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrConnection:
		return e.Kind == KindConnection
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

// KindOf returns the kind of the first *StoreError in err's chain, or
// KindUnknown when there is none.
func KindOf(err error) Kind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op string, err error) error {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

// wrap classifies err with classify unless it already is a *StoreError.
func wrap(op string, err error, classify func(error) Kind) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return newError(classify(err), op, err)
}

// isConnectionError covers failures common to every network driver: socket
// errors and the caller's deadline running out while waiting on the server.
func isConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
