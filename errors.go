package identity

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the closed error taxonomy surfaced to callers.
// Validation kinds are resolved locally and never reach the network layer;
// the rest originate at the identity provider.
type ErrorKind string

const (
	KindMissingFields       ErrorKind = "MissingFields"
	KindInvalidName         ErrorKind = "InvalidName"
	KindInvalidEmail        ErrorKind = "InvalidEmail"
	KindWeakPassword        ErrorKind = "WeakPassword"
	KindAccountNotFound     ErrorKind = "AccountNotFound"
	KindWrongPassword       ErrorKind = "WrongPassword"
	KindInvalidCredential   ErrorKind = "InvalidCredential"
	KindEmailAlreadyInUse   ErrorKind = "EmailAlreadyInUse"
	KindTooManyRequests     ErrorKind = "TooManyRequests"
	KindOperationNotAllowed ErrorKind = "OperationNotAllowed"
	// KindProfileWriteFailed is a non-fatal warning: the identity account
	// exists, only the membership profile write failed.
	KindProfileWriteFailed ErrorKind = "ProfileWriteFailed"
	// KindUnknown preserves the raw provider diagnostic verbatim.
	KindUnknown ErrorKind = "Unknown"
)

// Stable provider error codes. Providers translate their native failures
// into these before the taxonomy mapper ever sees them.
const (
	CodeUserNotFound        = "user-not-found"
	CodeWrongPassword       = "wrong-password"
	CodeInvalidEmail        = "invalid-email"
	CodeTooManyRequests     = "too-many-requests"
	CodeEmailAlreadyInUse   = "email-already-in-use"
	CodeWeakPassword        = "weak-password"
	CodeOperationNotAllowed = "operation-not-allowed"
	CodeInvalidCredential   = "invalid-credential"
)

// Recovery actions a client can offer after a failure.
const (
	ActionOfferSignup = "offer-signup"
	ActionOfferLogin  = "offer-login"
)

// RecoveryAction suggests the next step a client can present, with the
// attempted email pre-filled so the user does not retype it.
type RecoveryAction struct {
	Action string `json:"action"`
	Email  string `json:"email,omitempty"`
}

// Error is the single error type surfaced outside this package. It is only
// constructed by the credential validator and the provider-code mapper;
// nothing else builds taxonomy errors ad hoc.
type Error struct {
	Kind     ErrorKind       `json:"errorKind"`
	Message  string          `json:"message"`
	Recovery *RecoveryAction `json:"recoveryAction,omitempty"`
	cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithAttemptedEmail fills the recovery prompt with the email the user just
// tried, when the error carries a recovery action.
func (e *Error) WithAttemptedEmail(email string) *Error {
	if e != nil && e.Recovery != nil {
		e.Recovery.Email = email
	}
	return e
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// AsError coerces any error into the taxonomy, falling back to KindUnknown
// with the raw diagnostic preserved.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnknown, Message: err.Error(), cause: err}
}

// MapProviderError is the single translation point from provider failures
// into the closed taxonomy. Provider codes outside the known set map to
// KindUnknown carrying the provider message verbatim.
func MapProviderError(err error) *Error {
	if err == nil {
		return nil
	}

	var mapped *Error
	if errors.As(err, &mapped) {
		return mapped
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		// Transport failure or malformed response. Preserve the diagnostic
		// for logging and surface it, never crash.
		return &Error{Kind: KindUnknown, Message: err.Error(), cause: err}
	}

	switch perr.Code {
	case CodeUserNotFound:
		return &Error{
			Kind:     KindAccountNotFound,
			Message:  "No account exists with this email. Would you like to create one?",
			Recovery: &RecoveryAction{Action: ActionOfferSignup},
			cause:    perr,
		}
	case CodeWrongPassword:
		return &Error{
			Kind:    KindWrongPassword,
			Message: "The password you entered is incorrect. Please try again.",
			cause:   perr,
		}
	case CodeInvalidEmail:
		return &Error{
			Kind:    KindInvalidEmail,
			Message: "Please enter a valid email address.",
			cause:   perr,
		}
	case CodeInvalidCredential:
		return &Error{
			Kind:    KindInvalidCredential,
			Message: "Invalid email or password. Please check your credentials and try again.",
			cause:   perr,
		}
	case CodeTooManyRequests:
		return &Error{
			Kind:    KindTooManyRequests,
			Message: "Account temporarily disabled due to many failed attempts. Try again later.",
			cause:   perr,
		}
	case CodeEmailAlreadyInUse:
		return &Error{
			Kind:     KindEmailAlreadyInUse,
			Message:  "An account with this email already exists. Would you like to login instead?",
			Recovery: &RecoveryAction{Action: ActionOfferLogin},
			cause:    perr,
		}
	case CodeWeakPassword:
		return &Error{
			Kind:    KindWeakPassword,
			Message: "Please use a stronger password with at least 6 characters.",
			cause:   perr,
		}
	case CodeOperationNotAllowed:
		return &Error{
			Kind:    KindOperationNotAllowed,
			Message: "Email/password accounts are not enabled. Please contact support.",
			cause:   perr,
		}
	}

	return &Error{Kind: KindUnknown, Message: perr.Message, cause: perr}
}

func errProfileWriteFailed(cause error) *Error {
	return &Error{
		Kind:    KindProfileWriteFailed,
		Message: "Your account was created, but the membership profile could not be saved.",
		cause:   cause,
	}
}
