package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/sync/singleflight"
)

// RegisterResult is the success payload for a registration. Warning is set
// when the identity account was created but the membership profile write
// failed; the account is never rolled back in that case.
type RegisterResult struct {
	Session *Session     `json:"session"`
	Profile *UserProfile `json:"profile,omitempty"`
	Warning *Error       `json:"warning,omitempty"`
}

type SessionProxyOption func(*SessionProxy)

// WithProxyLogger overrides the default logger.
func WithProxyLogger(logger Logger) SessionProxyOption {
	return func(p *SessionProxy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// SessionProxy performs the privileged account operations on behalf of
// clients. It is the only code path allowed to hold or use the provider's
// elevated credentials; every operation normalizes and validates its input
// before touching the network and returns taxonomy errors only.
//
// No operation retries automatically; a failed attempt requires explicit
// user resubmission.
type SessionProxy struct {
	provider Provider
	profiles ProfileStore
	logger   Logger
	group    singleflight.Group
}

// NewSessionProxy returns a proxy over the given provider and profile store.
func NewSessionProxy(provider Provider, profiles ProfileStore, opts ...SessionProxyOption) *SessionProxy {
	p := &SessionProxy{
		provider: provider,
		profiles: profiles,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// Register creates the identity-provider account, sets its display name,
// then writes the initial membership profile. Profile-write failure is
// reported as a non-fatal ProfileWriteFailed warning on an otherwise
// successful result: the account is usable and profile data is recoverable,
// while re-registration at the provider is not idempotent.
func (p *SessionProxy) Register(ctx context.Context, creds Credentials) (*RegisterResult, error) {
	creds = creds.Normalize()
	if verr := creds.ValidateRegistration(); verr != nil {
		return nil, verr
	}

	id, err := p.provider.CreateAccount(ctx, creds.Email, creds.Password)
	if err != nil {
		mapped := MapProviderError(err).WithAttemptedEmail(creds.Email)
		p.logger.Error("register create account: %s", err)
		return nil, mapped
	}

	if err := p.provider.UpdateDisplayName(ctx, id, creds.DisplayName); err != nil {
		// The account exists and the name is recoverable; keep going.
		p.logger.Warn("register set display name: %s", err)
	}

	session := NewSession(id)
	// The identity snapshot predates the name update above.
	session.DisplayName = creds.DisplayName
	result := &RegisterResult{Session: session}

	profile, err := p.profiles.WriteProfile(ctx, NewUserProfile(id.Subject(), creds.DisplayName, creds.Email))
	if err != nil {
		wrapped := goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write membership profile")
		p.logger.Error("register profile write: %s", wrapped)
		result.Warning = errProfileWriteFailed(wrapped)
		return result, nil
	}

	result.Profile = profile
	p.logger.Info("registered subject %s", id.Subject())
	return result, nil
}

// loginKey collapses only identical submissions: the digest covers the full
// credential pair, so a wrong-password attempt for the same email never
// rides along with an in-flight correct one.
func loginKey(creds Credentials) string {
	sum := sha256.Sum256([]byte(creds.Email + "\x00" + creds.Password))
	return "login:" + hex.EncodeToString(sum[:])
}

// Login authenticates against the provider. Concurrent submissions with the
// same credentials are collapsed into a single provider call so only one
// session transition is ever applied.
func (p *SessionProxy) Login(ctx context.Context, creds Credentials) (*Session, error) {
	creds = creds.Normalize()
	if verr := creds.ValidateLogin(); verr != nil {
		return nil, verr
	}

	v, err, _ := p.group.Do(loginKey(creds), func() (any, error) {
		id, err := p.provider.Authenticate(ctx, creds.Email, creds.Password)
		if err != nil {
			return nil, MapProviderError(err).WithAttemptedEmail(creds.Email)
		}
		return NewSession(id), nil
	})
	if err != nil {
		p.logger.Error("login %s: %s", creds.Email, err)
		return nil, err
	}

	session := v.(*Session)
	p.logger.Info("login subject %s", session.SubjectID)
	return session, nil
}

// Logout invalidates the current provider session. Calling it with no
// active session is success, not an error.
func (p *SessionProxy) Logout(ctx context.Context) error {
	if err := p.provider.InvalidateSession(ctx); err != nil {
		mapped := MapProviderError(err)
		p.logger.Error("logout: %s", err)
		return mapped
	}
	return nil
}

// ResetPassword requests a password-reset message. Whether the email is
// registered is never revealed: provider "user not found" responses are
// swallowed so the operation cannot be used for account enumeration. Only
// transport-level failures surface, as KindUnknown.
func (p *SessionProxy) ResetPassword(ctx context.Context, creds Credentials) error {
	creds = creds.Normalize()
	if verr := creds.ValidateReset(); verr != nil {
		return verr
	}

	if err := p.provider.RequestPasswordReset(ctx, creds.Email); err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) && perr.Code == CodeUserNotFound {
			p.logger.Debug("reset for unregistered email suppressed")
			return nil
		}
		mapped := MapProviderError(err)
		p.logger.Error("reset password: %s", err)
		return mapped
	}

	return nil
}
