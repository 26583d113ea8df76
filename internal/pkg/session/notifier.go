// Package session carries session-transition events from the authentication
// layer to interested listeners without running them inside the triggering
// call stack.
package session

import (
	"sync"

	"github.com/emre/assigntrack/internal/pkg/logger"
)

// EventKind classifies a session transition.
type EventKind string

const (
	// SignedIn is published when credentials are exchanged for a new session.
	SignedIn EventKind = "signed_in"
	// Refreshed is published when a refresh token is rotated into a new session.
	Refreshed EventKind = "refreshed"
	// SignedOut is published when a session is explicitly terminated.
	SignedOut EventKind = "signed_out"
)

// Event describes one session transition. SessionID identifies the concrete
// session (the refresh token value), so listeners can act at most once per
// session-become-active transition.
type Event struct {
	Kind      EventKind
	UserID    int64
	SessionID string
}

// Listener consumes session events. Listeners run on the notifier's own
// goroutine, strictly after the publishing call has returned its event.
type Listener func(Event)

// Notifier delivers session events to a single active listener. Subscribing
// again replaces the previous listener; logical subscribers fan out through
// the one registered function.
type Notifier struct {
	mu       sync.RWMutex
	listener Listener
	events   chan Event
	done     chan struct{}
	closed   bool
}

// NewNotifier creates a notifier and starts its dispatch goroutine.
func NewNotifier(buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 64
	}
	n := &Notifier{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go n.dispatch()
	return n
}

// Subscribe registers the active listener, replacing any previous one.
func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	n.listener = l
	n.mu.Unlock()
}

// Publish enqueues an event for asynchronous delivery. It never blocks the
// caller: when the queue is full the event is dropped with a warning, which
// degrades to "no role yet" rather than stalling authentication.
func (n *Notifier) Publish(ev Event) {
	// The lock is held across the send so Close cannot close the channel
	// between the closed check and the send.
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}

	select {
	case n.events <- ev:
	default:
		logger.Warn().
			Str("kind", string(ev.Kind)).
			Int64("userId", ev.UserID).
			Msg("Session event queue full, dropping event")
	}
}

// Close stops the dispatch goroutine after draining queued events. Publish
// remains safe to call concurrently with and after Close.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.events)
	n.mu.Unlock()

	<-n.done
}

func (n *Notifier) dispatch() {
	defer close(n.done)
	for ev := range n.events {
		n.mu.RLock()
		l := n.listener
		n.mu.RUnlock()
		if l != nil {
			l(ev)
		}
	}
}
