package runtime

import "fmt"

// BadParameters is returned synchronously from a protocol constructor when
// the caller's arguments are invalid before any message could possibly be
// exchanged (spec.md §7 "InitializationError::BadParameters").
type BadParameters struct {
	Msg string
}

func (e *BadParameters) Error() string { return "bad parameters: " + e.Msg }

// NewBadParameters constructs a BadParameters error.
func NewBadParameters(format string, args ...interface{}) *BadParameters {
	return &BadParameters{Msg: fmt.Sprintf(format, args...)}
}

// AssertionFailed is returned from Poke when a cryptographic integrity
// check fails: a commitment failed to open, a sigma proof failed to
// verify, an equation did not hold, or a participant fell outside the
// expected set (spec.md §7 "ProtocolError::AssertionFailed").
type AssertionFailed struct {
	Msg string
}

func (e *AssertionFailed) Error() string { return "assertion failed: " + e.Msg }

// NewAssertionFailed constructs an AssertionFailed error.
func NewAssertionFailed(format string, args ...interface{}) *AssertionFailed {
	return &AssertionFailed{Msg: fmt.Sprintf(format, args...)}
}

// Other wraps a decode failure or other transport-adjacent error
// (spec.md §7 "ProtocolError::Other").
type Other struct {
	Err error
}

func (e *Other) Error() string { return "protocol error: " + e.Err.Error() }
func (e *Other) Unwrap() error { return e.Err }

// WrapOther wraps err as an Other protocol error, unless it is already a
// BadParameters/AssertionFailed/Other.
func WrapOther(err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *BadParameters, *AssertionFailed, *Other:
		return err
	}
	return &Other{Err: err}
}
