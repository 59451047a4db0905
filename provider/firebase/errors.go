package firebase

import (
	"strings"

	"github.com/goliatone/go-identity"
)

// restError is the error envelope Identity Toolkit returns.
type restError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// codeMap translates Identity Toolkit status strings into the stable
// provider codes the taxonomy mapper understands.
var codeMap = map[string]string{
	"EMAIL_NOT_FOUND":             identity.CodeUserNotFound,
	"USER_NOT_FOUND":              identity.CodeUserNotFound,
	"INVALID_PASSWORD":            identity.CodeWrongPassword,
	"INVALID_EMAIL":               identity.CodeInvalidEmail,
	"MISSING_EMAIL":               identity.CodeInvalidEmail,
	"EMAIL_EXISTS":                identity.CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               identity.CodeWeakPassword,
	"TOO_MANY_ATTEMPTS_TRY_LATER": identity.CodeTooManyRequests,
	"OPERATION_NOT_ALLOWED":       identity.CodeOperationNotAllowed,
	"INVALID_LOGIN_CREDENTIALS":   identity.CodeInvalidCredential,
	"USER_DISABLED":               identity.CodeOperationNotAllowed,
}

// mapStatus builds the ProviderError for a REST status message. Messages
// arrive as "STATUS" or "STATUS : human readable detail"; unknown statuses
// keep the raw message so nothing is silently dropped.
func mapStatus(message string) *identity.ProviderError {
	status := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	if code, ok := codeMap[status]; ok {
		return &identity.ProviderError{Code: code, Message: message}
	}
	return &identity.ProviderError{Code: status, Message: message}
}
