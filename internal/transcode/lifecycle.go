// Package transcode turns catalog streams into transport responses: a buffered
// JSON list, Server-Sent Events, or a server-streaming RPC.
//
// Every transcoder drives the same Lifecycle so that a response sees exactly
// one terminal signal and its sink is released exactly once on every exit path.
package transcode

import (
	"fmt"
	"sync"
)

// State is a position in the transcoder lifecycle:
//
//	Idle -> Streaming -> Completed | Errored -> Closed
//
// Closed is reachable from every state and is terminal.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateErrored
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Lifecycle guards one response. Transitions that are not allowed from the
// current state are refused rather than applied, which is what keeps the
// terminal signal unique.
type Lifecycle struct {
	mu      sync.Mutex
	state   State
	release func() error
}

// NewLifecycle returns an idle lifecycle. release, if not nil, runs on the
// first Close.
func NewLifecycle(release func() error) *Lifecycle {
	return &Lifecycle{release: release}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start moves Idle to Streaming.
func (l *Lifecycle) Start() bool {
	return l.transition(StateIdle, StateStreaming)
}

// Finish moves Streaming to Completed when err is nil and to Errored
// otherwise. It reports false when the response already ended or was closed,
// in which case the caller must not emit a terminal signal.
func (l *Lifecycle) Finish(err error) bool {
	to := StateCompleted
	if err != nil {
		to = StateErrored
	}
	return l.transition(StateStreaming, to)
}

func (l *Lifecycle) transition(from, to State) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != from {
		return false
	}
	l.state = to
	return true
}

// Close moves any state to Closed and runs release the first time only.
func (l *Lifecycle) Close() error {
	l.mu.Lock()
	if l.state == StateClosed {
		l.mu.Unlock()
		return nil
	}
	l.state = StateClosed
	release := l.release
	l.mu.Unlock()

	if release == nil {
		return nil
	}
	return release()
}
