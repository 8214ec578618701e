package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/stream"
)

// Outcome is how a catalog call ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeError     Outcome = "error"
	OutcomeCancelled Outcome = "cancelled"
)

// OutcomeOf maps a stream's terminal error onto an Outcome. A consumer closing
// early, or its context being cancelled, is not a failure of the provider.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, stream.ErrClosed), errors.Is(err, context.Canceled):
		return OutcomeCancelled
	}
	return OutcomeError
}

// CallContext describes one catalog invocation to hooks.
type CallContext struct {
	Provider  string
	Operation Operation
	StreamID  string
	// Args holds the operation parameters (text, album, series, season).
	Args      logging.LogFields
	Context   context.Context
	StartedAt time.Time
	// Duration, Items and Outcome are only set in OnCallDone and OnCallError.
	Duration time.Duration
	Items    int
	Outcome  Outcome
}

// CallHooks are optional callbacks around each catalog call. OnCallDone fires
// for success and cancellation, OnCallError for failures; exactly one of the two
// fires per call.
type CallHooks struct {
	OnCallStart func(call CallContext)
	OnCallDone  func(call CallContext)
	OnCallError func(call CallContext, err error)
}

// Merge returns hooks that run h first and then other.
func (h CallHooks) Merge(other CallHooks) CallHooks {
	return CallHooks{
		OnCallStart: chain(h.OnCallStart, other.OnCallStart),
		OnCallDone:  chain(h.OnCallDone, other.OnCallDone),
		OnCallError: chainErr(h.OnCallError, other.OnCallError),
	}
}

func chain(a, b func(CallContext)) func(CallContext) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(call CallContext) {
		a(call)
		b(call)
	}
}

func chainErr(a, b func(CallContext, error)) func(CallContext, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(call CallContext, err error) {
		a(call, err)
		b(call, err)
	}
}

func (h CallHooks) start(call CallContext) {
	if h.OnCallStart != nil {
		h.OnCallStart(call)
	}
}

func (h CallHooks) finish(call CallContext, err error) {
	if call.Outcome == OutcomeError {
		if h.OnCallError != nil {
			h.OnCallError(call, err)
		}
		return
	}
	if h.OnCallDone != nil {
		h.OnCallDone(call)
	}
}

func callFields(call CallContext) logging.LogFields {
	return logging.Merge(logging.LogFields{
		"provider":  call.Provider,
		"operation": call.Operation.String(),
		"stream_id": call.StreamID,
	}, call.Args)
}

// LoggingHooks logs entry and exit at debug level and failures at error level.
func LoggingHooks(logger logging.ServiceLogger) CallHooks {
	return CallHooks{
		OnCallStart: func(call CallContext) {
			logger.Debug("Catalog call started", callFields(call))
		},
		OnCallDone: func(call CallContext) {
			logger.Debug("Catalog call finished", logging.Merge(callFields(call), logging.LogFields{
				"outcome":     string(call.Outcome),
				"items":       call.Items,
				"duration_ms": call.Duration.Milliseconds(),
			}))
		},
		OnCallError: func(call CallContext, err error) {
			logger.Error("Catalog call failed", err, logging.Merge(callFields(call), logging.LogFields{
				"items":       call.Items,
				"duration_ms": call.Duration.Milliseconds(),
			}))
		},
	}
}

// RecorderHooks feeds a Recorder. Every call produces exactly one
// CallFinished.
func RecorderHooks(rec Recorder) CallHooks {
	return CallHooks{
		OnCallStart: func(call CallContext) {
			rec.CallStarted(call.Provider, call.Operation)
		},
		OnCallDone: func(call CallContext) {
			rec.CallFinished(call.Provider, call.Operation, call.Outcome, call.Items, call.Duration)
		},
		OnCallError: func(call CallContext, _ error) {
			rec.CallFinished(call.Provider, call.Operation, call.Outcome, call.Items, call.Duration)
		},
	}
}
