package wifi

import (
	"errors"
	"fmt"
)

var (
	ErrNotSupported     = errors.New("not supported")
	ErrNotFound         = errors.New("not found")
	ErrNotAvailable     = errors.New("not available")
	ErrOperationFailed  = errors.New("operation failed")
	ErrMissingField     = errors.New("missing field")
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrUnencodable      = errors.New("value cannot be encoded")
	ErrUnknownInterface = errors.New("unknown interface")
	ErrRejected         = errors.New("rejected by service")
	ErrTransport        = errors.New("transport failure")
)

// MissingFieldError is returned when a required key is absent from a QR payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field: %s", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// ServiceError describes a failed call to the network management service.
//
// Kind is one of ErrUnknownInterface, ErrRejected or ErrTransport. Err is the
// underlying error from the transport, if any. Both match with errors.Is.
type ServiceError struct {
	Op     string
	Kind   error
	Detail string
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Detail)
}

func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
