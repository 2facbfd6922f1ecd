package harvest

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid harvest request")
	ErrResolution     = errors.New("channel could not be resolved")
	ErrAccess         = errors.New("no access to channel participants")
	ErrExport         = errors.New("artifact could not be written")
	ErrUnexpected     = errors.New("unexpected harvest failure")
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindInvalidRequest
	KindResolution
	KindAccess
	KindExport
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidRequest:
		return ErrInvalidRequest
	case KindResolution:
		return ErrResolution
	case KindAccess:
		return ErrAccess
	case KindExport:
		return ErrExport
	default:
		return ErrUnexpected
	}
}

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindResolution:
		return "resolution"
	case KindAccess:
		return "access"
	case KindExport:
		return "export"
	default:
		return "unexpected"
	}
}

// Error is the failure of one harvest invocation. errors.Is matches both
// the kind sentinel and the underlying cause.
type Error struct {
	Kind    Kind
	Channel string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("harvest of channel %s failed: %v: %v", e.Channel, e.Kind.sentinel(), e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

func newError(kind Kind, channel string, err error) *Error {
	return &Error{Kind: kind, Channel: channel, Err: err}
}

// KindOf reports the Kind of a harvest error, or KindUnexpected.
func KindOf(err error) Kind {
	var herr *Error
	if errors.As(err, &herr) {
		return herr.Kind
	}
	return KindUnexpected
}
