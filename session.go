package identity

import (
	"fmt"
	"time"
)

// Session is the process's current authenticated-identity record. Exactly
// one Session (or none) exists at any time; the SessionWatcher owns it and
// replaces it wholesale on every provider notification.
type Session struct {
	SubjectID   string    `json:"subjectId"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// issuedAtCarrier lets provider identities report when their credential was
// minted; identities that don't implement it get the observation time.
type issuedAtCarrier interface {
	IssuedAt() time.Time
}

// NewSession builds a Session from a provider identity.
func NewSession(id Identity) *Session {
	if id == nil {
		return nil
	}

	issuedAt := time.Now()
	if carrier, ok := id.(issuedAtCarrier); ok {
		if at := carrier.IssuedAt(); !at.IsZero() {
			issuedAt = at
		}
	}

	return &Session{
		SubjectID:   id.Subject(),
		DisplayName: id.DisplayName(),
		Email:       id.Email(),
		IssuedAt:    issuedAt,
	}
}

func (s *Session) String() string {
	if s == nil {
		return "session=<none>"
	}
	return fmt.Sprintf(
		"subject=%s email=%s name=%q iat=%s",
		s.SubjectID,
		s.Email,
		s.DisplayName,
		s.IssuedAt.Format(time.RFC1123),
	)
}
