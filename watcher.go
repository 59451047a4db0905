package identity

import (
	"sync"
)

// SessionWatcher is the single owner of the process-wide Session. It
// subscribes to the provider's session-change stream on construction,
// replaces the current session wholesale on every notification, and fans
// the new value out to subscribers in arrival order.
//
// Until the first notification arrives the watcher reports itself as
// loading; callers must not assume "signed out" during that window.
type SessionWatcher struct {
	logger Logger

	// dispatchMu serializes apply+fanout so notifications are observed in
	// the exact order the provider emitted them.
	dispatchMu sync.Mutex

	mu      sync.RWMutex
	current *Session
	ready   bool
	closed  bool
	subs    []*watcherSub
	nextSub uint64
	detach  Unsubscribe
}

type watcherSub struct {
	id      uint64
	fn      func(*Session)
	removed bool
}

type SessionWatcherOption func(*SessionWatcher)

// WithWatcherLogger overrides the default logger.
func WithWatcherLogger(logger Logger) SessionWatcherOption {
	return func(w *SessionWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewSessionWatcher attaches to the provider's session-change stream and
// returns the watcher. Close must be called to detach.
func NewSessionWatcher(provider Provider, opts ...SessionWatcherOption) *SessionWatcher {
	w := &SessionWatcher{
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	w.detach = provider.OnSessionChange(w.apply)

	return w
}

// Current returns the session (nil when signed out) and whether the first
// provider notification has arrived. (nil, false) means still loading.
func (w *SessionWatcher) Current() (*Session, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current, w.ready
}

// Loading reports whether the watcher is still waiting for the first
// provider notification.
func (w *SessionWatcher) Loading() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return !w.ready
}

// Subscribe registers fn to be invoked with the new session value on every
// change. Delivery is synchronous with respect to the provider notification
// and preserves arrival order. The returned Unsubscribe stops delivery.
func (w *SessionWatcher) Subscribe(fn func(*Session)) Unsubscribe {
	if fn == nil {
		return func() {}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return func() {}
	}

	w.nextSub++
	sub := &watcherSub{id: w.nextSub, fn: fn}
	w.subs = append(w.subs, sub)

	id := sub.id
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, s := range w.subs {
			if s.id == id {
				s.removed = true
				w.subs = append(w.subs[:i], w.subs[i+1:]...)
				break
			}
		}
	}
}

// Close detaches from the provider and forgets all subscribers. No further
// notifications are delivered afterwards. Safe to call more than once.
func (w *SessionWatcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.subs = nil
	detach := w.detach
	w.detach = nil
	w.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// apply is the provider callback. It is the only writer of the session.
func (w *SessionWatcher) apply(id Identity) {
	w.dispatchMu.Lock()
	defer w.dispatchMu.Unlock()

	next := NewSession(id)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.current = next
	w.ready = true
	subs := make([]*watcherSub, len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	if next == nil {
		w.logger.Debug("session change: signed out")
	} else {
		w.logger.Debug("session change: subject %s", next.SubjectID)
	}

	// Membership and closed state are re-checked per delivery so a Close or
	// unsubscribe issued mid-fanout (including from inside a callback) stops
	// the remaining deliveries of this notification. A callback already
	// executing when Unsubscribe returns from another goroutine may still
	// complete; delivery is never torn mid-call.
	for _, sub := range subs {
		w.mu.RLock()
		closed, removed := w.closed, sub.removed
		w.mu.RUnlock()
		if closed {
			return
		}
		if removed {
			continue
		}
		sub.fn(next)
	}
}
