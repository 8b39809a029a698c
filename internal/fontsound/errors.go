package fontsound

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Domain errors for the fontsound package.
//
// Every operation wraps one of these, so callers can match with errors.Is():
//
//	if errors.Is(err, fontsound.ErrInvalidName) {
//	    // unknown handle
//	}
var (
	// ErrInvalidValue is returned when an argument is outside its domain
	// (negative count, out-of-range attribute, unresolvable link target).
	ErrInvalidValue = errors.New("fontsound: invalid value")

	// ErrInvalidName is returned when a handle does not resolve to a live fontsound.
	ErrInvalidName = errors.New("fontsound: invalid name")

	// ErrInvalidOperation is returned when a referenced fontsound is mutated or deleted.
	ErrInvalidOperation = errors.New("fontsound: invalid operation")

	// ErrInvalidEnum is returned when a parameter tag is not recognised for the call.
	ErrInvalidEnum = errors.New("fontsound: invalid enum")

	// ErrOutOfMemory is returned when identifiers or table slots are exhausted.
	ErrOutOfMemory = errors.New("fontsound: out of memory")
)

// ErrorCode is the numeric error kind latched by a Device, using the
// values of the AL error enumeration.
type ErrorCode int32

// Error codes.
const (
	NoError          ErrorCode = 0
	InvalidName      ErrorCode = 0xA001
	InvalidEnum      ErrorCode = 0xA002
	InvalidValue     ErrorCode = 0xA003
	InvalidOperation ErrorCode = 0xA004
	OutOfMemory      ErrorCode = 0xA005
)

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "no_error"
	case InvalidName:
		return "invalid_name"
	case InvalidEnum:
		return "invalid_enum"
	case InvalidValue:
		return "invalid_value"
	case InvalidOperation:
		return "invalid_operation"
	case OutOfMemory:
		return "out_of_memory"
	default:
		return fmt.Sprintf("error_code(0x%04X)", int32(c))
	}
}

// CodeOf maps an error returned by this package to its ErrorCode.
// A nil error maps to NoError; an unrelated error maps to InvalidOperation.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return NoError
	case errors.Is(err, ErrInvalidName):
		return InvalidName
	case errors.Is(err, ErrInvalidEnum):
		return InvalidEnum
	case errors.Is(err, ErrInvalidValue):
		return InvalidValue
	case errors.Is(err, ErrOutOfMemory):
		return OutOfMemory
	default:
		return InvalidOperation
	}
}

// errorLatch holds the first error code raised since it was last read.
type errorLatch struct {
	code atomic.Int32
}

// set records err unless an earlier error is still pending.
// It returns err unchanged so callers can write `return d.fail(err)`.
func (l *errorLatch) set(err error) error {
	if err == nil {
		return nil
	}
	l.code.CompareAndSwap(int32(NoError), int32(CodeOf(err)))
	return err
}

// take returns and clears the pending code.
func (l *errorLatch) take() ErrorCode {
	return ErrorCode(l.code.Swap(int32(NoError)))
}
