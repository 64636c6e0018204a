package lookup

import (
	"errors"
	"fmt"
)

// Class is the failure category of a lookup error.
//
// The class decides how callers react: STARTUP and CONFIG are fatal for the
// affected backend configuration, IO and TIMEOUT fail the batch that hit them.
type Class string

const (
	ClassStartup Class = "STARTUP"
	ClassIO      Class = "IO"
	ClassTimeout Class = "TIMEOUT"
	ClassConfig  Class = "CONFIG"
)

// ErrPoolClosed is returned by Checkout after Close.
var ErrPoolClosed = errors.New("lookup: pool closed")

// Error is the structured error type for all lookup failures.
type Error struct {
	Class   Class
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg = msg + ": " + e.Cause.Error()
		}
	}
	if e.Op != "" {
		return fmt.Sprintf("lookup %s (%s): %s", e.Class, e.Op, msg)
	}
	return fmt.Sprintf("lookup %s: %s", e.Class, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// IsClass reports whether err carries a lookup Error of the given class.
func IsClass(err error, class Class) bool {
	var le *Error
	if errors.As(err, &le) && le != nil {
		return le.Class == class
	}
	return false
}

func startupErrorf(op string, cause error, format string, args ...any) error {
	return &Error{Class: ClassStartup, Op: op, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func ioError(op string, cause error, message string) error {
	return &Error{Class: ClassIO, Op: op, Message: message, Cause: cause}
}

func timeoutErrorf(op string, format string, args ...any) error {
	return &Error{Class: ClassTimeout, Op: op, Message: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) error {
	return &Error{Class: ClassConfig, Message: fmt.Sprintf(format, args...)}
}
