package identity

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes the provider reports for a subject
type Identity interface {
	Subject() string
	DisplayName() string
	Email() string
}

// Unsubscribe detaches a previously registered session-change callback.
type Unsubscribe func()

// Provider is the narrow surface of the external identity provider. It is
// consumed, never reimplemented; implementations hold the privileged
// credentials and live behind the SessionProxy.
type Provider interface {
	// CreateAccount registers a new identity with the provider.
	CreateAccount(ctx context.Context, email, password string) (Identity, error)

	// Authenticate verifies an email/password pair and returns the identity.
	Authenticate(ctx context.Context, email, password string) (Identity, error)

	// InvalidateSession signs out the current session. Calling it with no
	// active session is not an error.
	InvalidateSession(ctx context.Context) error

	// UpdateDisplayName sets the display name on an existing identity.
	UpdateDisplayName(ctx context.Context, identity Identity, name string) error

	// RequestPasswordReset asks the provider to send a reset message.
	RequestPasswordReset(ctx context.Context, email string) error

	// OnSessionChange registers a callback invoked with the new identity on
	// every session change, or nil when the subject signs out. Callbacks are
	// delivered in the order the provider emits them.
	OnSessionChange(fn func(Identity)) Unsubscribe
}

// ProviderError is a provider failure carrying the provider's stable string
// code (e.g. "user-not-found", "wrong-password"). The error taxonomy mapper
// is the only consumer of these codes.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error [%s]: %s", e.Code, e.Message)
}

// ProfileStore persists membership profiles keyed by the provider subject.
// It is a collaborator distinct from the identity provider's own records.
type ProfileStore interface {
	WriteProfile(ctx context.Context, profile *UserProfile) (*UserProfile, error)
	ReadProfile(ctx context.Context, subjectID string) (*UserProfile, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
