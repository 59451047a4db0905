package identity

import (
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidTransition = "INVALID_AUTH_STATE_TRANSITION"
	textCodeAttemptInFlight   = "AUTH_ATTEMPT_IN_FLIGHT"
)

// ErrInvalidTransition is returned when a requested auth-state change is not
// part of the transition graph.
var ErrInvalidTransition = goerrors.New("invalid auth state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrAttemptInFlight is returned when a submission arrives while another one
// is still pending. The second attempt is refused, never raced.
var ErrAttemptInFlight = goerrors.New("an authentication attempt is already in flight", goerrors.CategoryConflict).
	WithTextCode(textCodeAttemptInFlight).
	WithCode(goerrors.CodeConflict)

// AuthState is the client-observed authentication state.
type AuthState string

const (
	StateUnauthenticated AuthState = "unauthenticated"
	StatePending         AuthState = "pending"
	StateAuthenticated   AuthState = "authenticated"
)

// FlowHook runs after every applied transition. The cause is non-nil only
// for failure transitions.
type FlowHook func(from, to AuthState, cause *Error)

type AuthFlowOption func(*AuthFlow)

// WithFlowHook appends a hook invoked after each transition.
func WithFlowHook(h FlowHook) AuthFlowOption {
	return func(f *AuthFlow) {
		if h != nil {
			f.hooks = append(f.hooks, h)
		}
	}
}

// WithFlowLogger overrides the default logger.
func WithFlowLogger(logger Logger) AuthFlowOption {
	return func(f *AuthFlow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// AuthFlow guards the client auth lifecycle:
//
//	unauthenticated --submit--> pending --success--> authenticated
//	pending --failure--> unauthenticated (with the Error attached)
//	authenticated --logout / provider invalidation--> unauthenticated
//
// Pending is never entered twice concurrently for the same form.
type AuthFlow struct {
	mu          sync.Mutex
	state       AuthState
	lastErr     *Error
	hooks       []FlowHook
	logger      Logger
	transitions map[AuthState]map[AuthState]struct{}
}

// NewAuthFlow returns a flow starting in StateUnauthenticated.
func NewAuthFlow(opts ...AuthFlowOption) *AuthFlow {
	f := &AuthFlow{
		state:  StateUnauthenticated,
		logger: defLogger{},
		transitions: map[AuthState]map[AuthState]struct{}{
			StateUnauthenticated: {
				StatePending: {},
			},
			StatePending: {
				StateAuthenticated:   {},
				StateUnauthenticated: {},
			},
			StateAuthenticated: {
				StateUnauthenticated: {},
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// State returns the current auth state.
func (f *AuthFlow) State() AuthState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError returns the Error attached by the most recent failed attempt,
// cleared on the next successful transition.
func (f *AuthFlow) LastError() *Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Begin marks a submission in flight. A second Begin while pending returns
// ErrAttemptInFlight; Begin while authenticated is an invalid transition.
func (f *AuthFlow) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StatePending {
		return ErrAttemptInFlight
	}
	return f.applyLocked(StatePending, nil)
}

// Succeed completes the pending attempt.
func (f *AuthFlow) Succeed() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyLocked(StateAuthenticated, nil)
}

// Fail aborts the pending attempt, attaching cause for display.
func (f *AuthFlow) Fail(cause *Error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyLocked(StateUnauthenticated, cause)
}

// SignOut leaves the authenticated state. Signing out while already
// unauthenticated is a no-op, mirroring the proxy's idempotent logout.
func (f *AuthFlow) SignOut() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateUnauthenticated {
		return nil
	}
	return f.applyLocked(StateUnauthenticated, nil)
}

// Invalidate handles an unsolicited provider-side revocation. Unlike
// SignOut it may arrive in any state and always lands unauthenticated.
func (f *AuthFlow) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateUnauthenticated {
		return
	}

	from := f.state
	f.state = StateUnauthenticated
	f.notifyLocked(from, StateUnauthenticated, nil)
}

// BindWatcher drives the flow from watcher notifications: a session means
// authenticated, no session while authenticated means revoked. The
// notification is authoritative for session state, so transitions here
// bypass the pending edge.
func (f *AuthFlow) BindWatcher(w *SessionWatcher) Unsubscribe {
	return w.Subscribe(func(s *Session) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if s != nil {
			if f.state == StateAuthenticated {
				return
			}
			from := f.state
			f.state = StateAuthenticated
			f.lastErr = nil
			f.notifyLocked(from, StateAuthenticated, nil)
			return
		}

		if f.state == StateAuthenticated {
			f.state = StateUnauthenticated
			f.notifyLocked(StateAuthenticated, StateUnauthenticated, nil)
		}
	})
}

func (f *AuthFlow) applyLocked(target AuthState, cause *Error) error {
	from := f.state

	if _, ok := f.transitions[from][target]; !ok {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": string(from),
			"to":   string(target),
		})
	}

	f.state = target
	if target == StateAuthenticated {
		f.lastErr = nil
	}
	if cause != nil {
		f.lastErr = cause
	}

	f.notifyLocked(from, target, cause)
	return nil
}

func (f *AuthFlow) notifyLocked(from, to AuthState, cause *Error) {
	f.logger.Debug("auth state %s -> %s", from, to)
	for _, hook := range f.hooks {
		hook(from, to, cause)
	}
}
