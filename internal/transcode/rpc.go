package transcode

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/stream"
)

// Sender is the sending half of a server-streaming RPC.
type Sender[W any] interface {
	Send(*W) error
}

// SendAll writes one wire message per item of s. It returns nil when the
// stream completes, which ends the RPC with an OK status, and a status error
// carrying the cause text otherwise. Nothing is sent in-band on failure.
func SendAll[T, W any](s stream.Stream[T], out Sender[W], convert func(T) *W, logger logging.ServiceLogger) error {
	lc := NewLifecycle(nil)
	defer lc.Close()
	lc.Start()

	var sinkErr error
	err := stream.Each(s, func(item T) error {
		if err := out.Send(convert(item)); err != nil {
			sinkErr = err
			return err
		}
		return nil
	})
	lc.Finish(err)

	switch {
	case sinkErr != nil:
		logger.Debug("RPC client went away", logging.LogFields{"error": sinkErr.Error()})
		return sinkErr
	case err != nil:
		logger.Error("An error occurred. Terminating stream.", err, nil)
		return StatusError(err)
	}
	return nil
}

// StatusError converts a terminal error into a gRPC status error. The message
// is the cause text verbatim; errors that already carry a status keep it.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	var withStatus interface{ GRPCStatus() *status.Status }
	if errors.As(err, &withStatus) {
		return err
	}
	return status.Error(Code(err), err.Error())
}

// Code maps an error onto the gRPC code clients see.
func Code(err error) codes.Code {
	switch rterrors.Classify(err) {
	case rterrors.KindUnavailable:
		return codes.Unavailable
	case rterrors.KindMalformed:
		return codes.InvalidArgument
	case rterrors.KindCanceled:
		return codes.Canceled
	case rterrors.KindDeadline:
		return codes.DeadlineExceeded
	}
	return codes.Internal
}

// FromStatus converts a status error received from a remote catalog back into
// a local error that classifies the same way. Other errors pass through.
func FromStatus(provider string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	msg := st.Message()
	switch st.Code() {
	case codes.OK:
		return nil
	case codes.Unavailable:
		return rterrors.Unavailable(provider, errors.New(msg))
	case codes.InvalidArgument:
		return &rterrors.RemoteStreamError{Message: msg, Kind: rterrors.KindMalformed}
	case codes.Canceled:
		return &contextError{msg: msg, cause: context.Canceled}
	case codes.DeadlineExceeded:
		return &contextError{msg: msg, cause: context.DeadlineExceeded}
	}
	return &rterrors.RemoteStreamError{Message: msg, Kind: rterrors.KindInternal}
}

// contextError keeps the remote message while matching the context error.
type contextError struct {
	msg   string
	cause error
}

func (e *contextError) Error() string { return e.msg }
func (e *contextError) Unwrap() error { return e.cause }
