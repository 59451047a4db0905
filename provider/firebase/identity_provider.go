package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-identity"
)

// IdentityProvider implements identity.Provider over the Identity Toolkit
// REST API.
type IdentityProvider struct {
	config Config
	client *http.Client
	base   string

	// emitMu serializes session-change fanout so subscribers observe
	// lifecycle events in completion order.
	emitMu sync.Mutex

	mu      sync.Mutex
	current *firebaseIdentity
	subs    []*sessionSub
	nextSub uint64
}

type sessionSub struct {
	id uint64
	fn func(identity.Identity)
}

var _ identity.Provider = (*IdentityProvider)(nil)

// New creates a Firebase-backed identity provider.
func New(cfg Config) (*IdentityProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("firebase: API key is required")
	}

	return &IdentityProvider{
		config: cfg,
		client: cfg.httpClient(),
		base:   strings.TrimSuffix(cfg.endpoint(), "/"),
	}, nil
}

// firebaseIdentity is the provider-side identity snapshot.
type firebaseIdentity struct {
	localID      string
	email        string
	displayName  string
	idToken      string
	refreshToken string
	issuedAt     time.Time
}

func (i *firebaseIdentity) Subject() string     { return i.localID }
func (i *firebaseIdentity) Email() string       { return i.email }
func (i *firebaseIdentity) DisplayName() string { return i.displayName }

// IssuedAt reports when the underlying ID token was minted.
func (i *firebaseIdentity) IssuedAt() time.Time { return i.issuedAt }

// IDToken exposes the raw Firebase ID token for downstream verification.
func (i *firebaseIdentity) IDToken() string { return i.idToken }

type accountResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// CreateAccount implements identity.Provider.
func (p *IdentityProvider) CreateAccount(ctx context.Context, email, password string) (identity.Identity, error) {
	var resp accountResponse
	err := p.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	id := p.identityFromAccount(resp)
	p.setCurrent(id)
	return id, nil
}

// Authenticate implements identity.Provider.
func (p *IdentityProvider) Authenticate(ctx context.Context, email, password string) (identity.Identity, error) {
	var resp accountResponse
	err := p.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	id := p.identityFromAccount(resp)
	p.setCurrent(id)
	return id, nil
}

// InvalidateSession implements identity.Provider. With no active session it
// is a no-op; there is nothing to enumerate or fail.
func (p *IdentityProvider) InvalidateSession(ctx context.Context) error {
	p.mu.Lock()
	had := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if had {
		p.emit(nil)
	}
	return nil
}

// UpdateDisplayName implements identity.Provider.
func (p *IdentityProvider) UpdateDisplayName(ctx context.Context, id identity.Identity, name string) error {
	fid, ok := id.(*firebaseIdentity)
	if !ok || fid.idToken == "" {
		return &identity.ProviderError{
			Code:    identity.CodeInvalidCredential,
			Message: "identity does not carry a Firebase token",
		}
	}

	var resp accountResponse
	err := p.post(ctx, "accounts:update", map[string]any{
		"idToken":           fid.idToken,
		"displayName":       name,
		"returnSecureToken": false,
	}, &resp)
	if err != nil {
		return err
	}

	fid.displayName = name
	return nil
}

// RequestPasswordReset implements identity.Provider.
func (p *IdentityProvider) RequestPasswordReset(ctx context.Context, email string) error {
	var resp struct {
		Email string `json:"email"`
	}
	return p.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, &resp)
}

// OnSessionChange implements identity.Provider.
func (p *IdentityProvider) OnSessionChange(fn func(identity.Identity)) identity.Unsubscribe {
	if fn == nil {
		return func() {}
	}

	p.mu.Lock()
	p.nextSub++
	sub := &sessionSub{id: p.nextSub, fn: fn}
	p.subs = append(p.subs, sub)
	id := sub.id
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				break
			}
		}
	}
}

func (p *IdentityProvider) identityFromAccount(resp accountResponse) *firebaseIdentity {
	return &firebaseIdentity{
		localID:      resp.LocalID,
		email:        resp.Email,
		displayName:  resp.DisplayName,
		idToken:      resp.IDToken,
		refreshToken: resp.RefreshToken,
		issuedAt:     tokenIssuedAt(resp.IDToken),
	}
}

func (p *IdentityProvider) setCurrent(id *firebaseIdentity) {
	p.mu.Lock()
	p.current = id
	p.mu.Unlock()
	p.emit(id)
}

func (p *IdentityProvider) emit(id *firebaseIdentity) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.mu.Lock()
	subs := make([]*sessionSub, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, sub := range subs {
		if id == nil {
			sub.fn(nil)
		} else {
			sub.fn(id)
		}
	}
}

// post failures stay plain wrapped errors: their Error() text is what the
// taxonomy mapper surfaces verbatim under the Unknown kind, so the raw
// diagnostic must survive the trip.
func (p *IdentityProvider) post(ctx context.Context, action string, payload map[string]any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode identity toolkit request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", p.base, action, p.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build identity toolkit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity toolkit unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope restError
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Message == "" {
			return fmt.Errorf("identity toolkit returned status %d with no parseable error", resp.StatusCode)
		}
		return mapStatus(envelope.Error.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed identity toolkit response: %w", err)
	}
	return nil
}

// tokenIssuedAt extracts iat from the ID token without verifying it; the
// token came off our own TLS call and verification is TokenValidator's job.
func tokenIssuedAt(idToken string) time.Time {
	if idToken == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return time.Time{}
	}

	issued, err := claims.GetIssuedAt()
	if err != nil || issued == nil {
		return time.Time{}
	}
	return issued.Time
}
