// Package errors provides the typed error taxonomy used across the hedging
// engine: Config, MarketData, Calculation, InvalidState, Network.
package errors

import (
	"fmt"
	"runtime"
	"time"
)

// Kind classifies a HedgeError into one of the five taxonomy buckets.
type Kind string

const (
	KindConfig      Kind = "CONFIG"
	KindMarketData  Kind = "MARKET_DATA"
	KindCalculation Kind = "CALCULATION"
	KindInvalidState Kind = "INVALID_STATE"
	KindNetwork     Kind = "NETWORK"
)

// HedgeError is the structured error type returned by this module's public
// APIs. Construction-time Config errors are fatal to the engine instance
// that raised them; the other kinds are informational (see the propagation
// policy documented on HedgeConfig.Validate and the engine constructors).
type HedgeError struct {
	Kind      Kind
	Message   string
	Cause     error
	Timestamp time.Time
	File      string
	Line      int
}

func (e *HedgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *HedgeError) Unwrap() error {
	return e.Cause
}

// New creates a HedgeError of the given kind.
func New(kind Kind, message string) *HedgeError {
	_, file, line, _ := runtime.Caller(1)
	return &HedgeError{Kind: kind, Message: message, Timestamp: time.Now(), File: file, Line: line}
}

// Newf creates a HedgeError with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *HedgeError {
	_, file, line, _ := runtime.Caller(1)
	return &HedgeError{Kind: kind, Message: fmt.Sprintf(format, args...), Timestamp: time.Now(), File: file, Line: line}
}

// Wrap attaches a kind and message to an existing error. Returns nil if err
// is nil.
func Wrap(err error, kind Kind, message string) *HedgeError {
	if err == nil {
		return nil
	}
	_, file, line, _ := runtime.Caller(1)
	return &HedgeError{Kind: kind, Message: message, Cause: err, Timestamp: time.Now(), File: file, Line: line}
}

// Is reports whether err is a HedgeError of the given kind.
func Is(err error, kind Kind) bool {
	var he *HedgeError
	if As(err, &he) {
		return he.Kind == kind
	}
	return false
}

// As finds the first HedgeError in err's chain and assigns it to target.
func As(err error, target **HedgeError) bool {
	if err == nil {
		return false
	}
	if he, ok := err.(*HedgeError); ok {
		*target = he
		return true
	}
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return As(unwrapper.Unwrap(), target)
	}
	return false
}

// GetKind extracts the Kind from an error, or "" if it is not a HedgeError.
func GetKind(err error) Kind {
	var he *HedgeError
	if As(err, &he) {
		return he.Kind
	}
	return ""
}
