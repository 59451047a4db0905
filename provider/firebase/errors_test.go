package firebase

import (
	"testing"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		status string
		code   string
	}{
		{status: "EMAIL_NOT_FOUND", code: identity.CodeUserNotFound},
		{status: "USER_NOT_FOUND", code: identity.CodeUserNotFound},
		{status: "INVALID_PASSWORD", code: identity.CodeWrongPassword},
		{status: "INVALID_EMAIL", code: identity.CodeInvalidEmail},
		{status: "MISSING_EMAIL", code: identity.CodeInvalidEmail},
		{status: "EMAIL_EXISTS", code: identity.CodeEmailAlreadyInUse},
		{status: "WEAK_PASSWORD", code: identity.CodeWeakPassword},
		{status: "TOO_MANY_ATTEMPTS_TRY_LATER", code: identity.CodeTooManyRequests},
		{status: "OPERATION_NOT_ALLOWED", code: identity.CodeOperationNotAllowed},
		{status: "USER_DISABLED", code: identity.CodeOperationNotAllowed},
		{status: "INVALID_LOGIN_CREDENTIALS", code: identity.CodeInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			perr := mapStatus(tt.status)
			require.NotNil(t, perr)
			assert.Equal(t, tt.code, perr.Code)
			assert.Equal(t, tt.status, perr.Message)
		})
	}
}

func TestMapStatusWithDetailSuffix(t *testing.T) {
	message := "WEAK_PASSWORD : Password should be at least 6 characters"
	perr := mapStatus(message)

	assert.Equal(t, identity.CodeWeakPassword, perr.Code)
	assert.Equal(t, message, perr.Message)
}

func TestMapStatusUnknownPassesThrough(t *testing.T) {
	perr := mapStatus("QUOTA_EXCEEDED : daily limit reached")

	assert.Equal(t, "QUOTA_EXCEEDED", perr.Code)
	assert.Equal(t, "QUOTA_EXCEEDED : daily limit reached", perr.Message)
}
