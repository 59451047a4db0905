package firebase

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-identity"
)

// TokenValidator verifies Firebase-issued ID tokens against Google's
// securetoken JWKS.
type TokenValidator struct {
	config Config
	jwks   *keyfunc.JWKS
}

// NewTokenValidator creates a validator for the configured project. Close
// must be called to stop the background JWKS refresh.
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firebase: project id is required for token validation")
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	jwks, err := keyfunc.Get(cfg.jwksURL(), keyfunc.Options{
		RefreshInterval: cacheTTL,
		RefreshErrorHandler: func(err error) {
			// Keep serving cached keys; the next refresh retries.
		},
	})
	if err != nil {
		return nil, fmt.Errorf("firebase: failed to load securetoken JWKS: %w", err)
	}

	return &TokenValidator{config: cfg, jwks: jwks}, nil
}

// tokenIdentity is the verified-claims view of a subject.
type tokenIdentity struct {
	subject     string
	email       string
	displayName string
	issuedAt    time.Time
}

func (t *tokenIdentity) Subject() string     { return t.subject }
func (t *tokenIdentity) Email() string       { return t.email }
func (t *tokenIdentity) DisplayName() string { return t.displayName }
func (t *tokenIdentity) IssuedAt() time.Time { return t.issuedAt }

// Validate checks signature, issuer, and audience, and returns the subject
// identity carried by the token.
func (v *TokenValidator) Validate(tokenString string) (identity.Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer("https://securetoken.google.com/"+v.config.ProjectID),
		jwt.WithAudience(v.config.ProjectID),
	)
	if err != nil {
		return nil, &identity.ProviderError{
			Code:    identity.CodeInvalidCredential,
			Message: fmt.Sprintf("invalid ID token: %s", err),
		}
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, &identity.ProviderError{
			Code:    identity.CodeInvalidCredential,
			Message: "ID token carries no subject",
		}
	}

	id := &tokenIdentity{subject: subject}
	if email, ok := claims["email"].(string); ok {
		id.email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.displayName = name
	}
	if issued, err := claims.GetIssuedAt(); err == nil && issued != nil {
		id.issuedAt = issued.Time
	}

	return id, nil
}

// Close stops the background JWKS refresh.
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
