package ratbag

import "fmt"

// ErrorCode is the numeric bus-return-code taxonomy from the error
// handling design: zero means success, everything else is a distinct
// failure family a client can branch on without parsing strings.
type ErrorCode int32

const (
	// ErrCodeSuccess indicates the operation completed.
	ErrCodeSuccess ErrorCode = iota
	// ErrCodeDevice indicates communication with the hardware failed
	// or the device is unsupported.
	ErrCodeDevice
	// ErrCodeCapability indicates the entity does not support the
	// requested operation.
	ErrCodeCapability
	// ErrCodeInvalidValue indicates the input is out of range or
	// would violate an invariant.
	ErrCodeInvalidValue
	// ErrCodeSystem indicates a low-level I/O failure, e.g. opening
	// the hidraw node.
	ErrCodeSystem
	// ErrCodeImplementation indicates a programmer bug: a capability
	// claimed without a matching driver callback.
	ErrCodeImplementation
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeSuccess:
		return "success"
	case ErrCodeDevice:
		return "device"
	case ErrCodeCapability:
		return "capability"
	case ErrCodeInvalidValue:
		return "invalid-value"
	case ErrCodeSystem:
		return "system"
	case ErrCodeImplementation:
		return "implementation"
	default:
		return "unknown"
	}
}

// Error is the error type every mutator and driver callback in this
// package returns. It carries the taxonomy code so bus-facing code can
// translate it to the numeric wire value without string matching.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// NewError builds an *Error with the given code and formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// ErrCapability is returned by a setter when the entity's capability
// set does not include the requested operation.
func ErrCapability(what string) *Error {
	return NewError(ErrCodeCapability, "%s not supported by this entity", what)
}

// ErrInvalidValue is returned by a setter when the value is out of
// range or would violate an object-model invariant.
func ErrInvalidValue(format string, args ...any) *Error {
	return NewError(ErrCodeInvalidValue, format, args...)
}

// ErrDevice is returned when a wire transaction with the hardware
// fails or the device no longer matches a known descriptor.
func ErrDevice(format string, args ...any) *Error {
	return NewError(ErrCodeDevice, format, args...)
}

// ErrSystem is returned for low-level I/O failures such as being
// unable to open a hidraw node.
func ErrSystem(format string, args ...any) *Error {
	return NewError(ErrCodeSystem, format, args...)
}

// ErrImplementation is returned when a capability is declared without
// a matching driver callback; it always indicates a driver bug.
func ErrImplementation(format string, args ...any) *Error {
	return NewError(ErrCodeImplementation, format, args...)
}

// AsError unwraps a generic error into the package's *Error, if it is
// one, reporting ok=false for any other error (including nil).
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	e, ok := err.(*Error)
	return e, ok
}
