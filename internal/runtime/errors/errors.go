package errors

import (
	"context"
	sterrors "errors"
	"fmt"
)

var (
	ErrCatalogRequired  = sterrors.New("mediacatalog: catalog is required")
	ErrLoggerRequired   = sterrors.New("mediacatalog: logger is required")
	ErrConfigRequired   = sterrors.New("mediacatalog: configuration is required")
	ErrDatasetRequired  = sterrors.New("mediacatalog: dataset directory is required")
	ErrUnknownProvider  = sterrors.New("mediacatalog: unknown provider")
	ErrProviderRequired = sterrors.New("mediacatalog: provider name is required")
	ErrStreamTruncated  = sterrors.New("mediacatalog: remote stream ended without a terminal event")
)

// ConfigValidationError wraps the joined validation failures of a Config.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("mediacatalog: invalid configuration: %v", e.Err)
}

func (e ConfigValidationError) Unwrap() error { return e.Err }

// NewConfigValidationError returns nil when err is nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}

// ProviderUnavailableError reports that the backing store or remote service
// could not be reached. The message of the cause is surfaced verbatim to clients.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s unavailable", e.Provider)
	}
	return e.Err.Error()
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// Unavailable wraps err as a ProviderUnavailableError, leaving nil untouched.
func Unavailable(provider string, err error) error {
	if err == nil {
		return nil
	}
	var existing *ProviderUnavailableError
	if sterrors.As(err, &existing) {
		return err
	}
	return &ProviderUnavailableError{Provider: provider, Err: err}
}

// MalformedRequestError reports a request parameter that could not be parsed,
// for example a non-numeric season.
type MalformedRequestError struct {
	Param string
	Value string
	Err   error
}

func (e *MalformedRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Param, e.Value)
}

func (e *MalformedRequestError) Unwrap() error { return e.Err }

// RemoteStreamError carries the failure reported by a remote catalog. Message
// is the remote cause text; Kind is the classification the remote reported,
// when its protocol carries one.
type RemoteStreamError struct {
	Message string
	Kind    Kind
}

func (e *RemoteStreamError) Error() string { return e.Message }

// Kind classifies err into the categories transports care about.
type Kind int

const (
	KindInternal Kind = iota
	KindUnavailable
	KindMalformed
	KindCanceled
	KindDeadline
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindMalformed:
		return "malformed"
	case KindCanceled:
		return "canceled"
	case KindDeadline:
		return "deadline"
	}
	return "internal"
}

// Classify reports the Kind of err.
func Classify(err error) Kind {
	var (
		unavailable *ProviderUnavailableError
		malformed   *MalformedRequestError
		remote      *RemoteStreamError
	)
	switch {
	case sterrors.As(err, &malformed):
		return KindMalformed
	case sterrors.Is(err, context.DeadlineExceeded):
		return KindDeadline
	case sterrors.Is(err, context.Canceled):
		return KindCanceled
	case sterrors.As(err, &unavailable):
		return KindUnavailable
	case sterrors.As(err, &remote):
		return remote.Kind
	}
	return KindInternal
}
