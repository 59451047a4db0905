package identity_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApp(provider *MockProvider, profiles *MockProfileStore) *fiber.App {
	app := fiber.New()
	identity.RegisterAuthRoutes(app,
		identity.WithControllerProxy(identity.NewSessionProxy(provider, profiles)),
	)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) identity.ErrorResponse {
	t.Helper()

	var envelope identity.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestRegisterEndpoint(t *testing.T) {
	provider := new(MockProvider)
	profiles := new(MockProfileStore)

	id := TestIdentity{subject: "sub-1", email: "member@dojang.kr"}
	provider.On("CreateAccount", mock.Anything, "member@dojang.kr", "secret123").Return(id, nil).Once()
	provider.On("UpdateDisplayName", mock.Anything, id, "Kim Minjun").Return(nil).Once()
	profiles.On("WriteProfile", mock.Anything, mock.Anything).
		Return(identity.NewUserProfile("sub-1", "Kim Minjun", "member@dojang.kr"), nil).Once()

	app := newTestApp(provider, profiles)

	resp := postJSON(t, app, "/api/register", fiber.Map{
		"name":     "Kim Minjun",
		"email":    "member@dojang.kr",
		"password": "secret123",
	})

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result identity.RegisterResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotNil(t, result.Session)
	assert.Equal(t, "sub-1", result.Session.SubjectID)
	assert.Equal(t, "Kim Minjun", result.Session.DisplayName)
	require.NotNil(t, result.Profile)
	assert.Equal(t, identity.DefaultBeltRank, result.Profile.BeltRank)
}

func TestRegisterEndpointValidation(t *testing.T) {
	app := newTestApp(new(MockProvider), new(MockProfileStore))

	resp := postJSON(t, app, "/api/register", fiber.Map{
		"email":    "member@dojang.kr",
		"password": "secret123",
	})

	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	envelope := decodeError(t, resp)
	assert.Equal(t, string(identity.KindMissingFields), envelope.ErrorKind)
	assert.Equal(t, "Please fill in all fields.", envelope.Message)
}

func TestRegisterEndpointDuplicateEmail(t *testing.T) {
	provider := new(MockProvider)
	provider.On("CreateAccount", mock.Anything, "member@dojang.kr", "secret123").
		Return(nil, &identity.ProviderError{Code: identity.CodeEmailAlreadyInUse}).Once()

	app := newTestApp(provider, new(MockProfileStore))

	resp := postJSON(t, app, "/api/register", fiber.Map{
		"name":     "Kim Minjun",
		"email":    "member@dojang.kr",
		"password": "secret123",
	})

	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	envelope := decodeError(t, resp)
	assert.Equal(t, string(identity.KindEmailAlreadyInUse), envelope.ErrorKind)
	require.NotNil(t, envelope.Recovery)
	assert.Equal(t, identity.ActionOfferLogin, envelope.Recovery.Action)
	assert.Equal(t, "member@dojang.kr", envelope.Recovery.Email)
}

func TestLoginEndpoint(t *testing.T) {
	provider := new(MockProvider)
	id := TestIdentity{subject: "sub-1", name: "Kim Minjun", email: "member@dojang.kr"}
	provider.On("Authenticate", mock.Anything, "member@dojang.kr", "secret123").Return(id, nil).Once()

	app := newTestApp(provider, new(MockProfileStore))

	resp := postJSON(t, app, "/api/login", fiber.Map{
		"email":    "member@dojang.kr",
		"password": "secret123",
	})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var session identity.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.Equal(t, "sub-1", session.SubjectID)
	assert.False(t, session.IssuedAt.IsZero())
}

func TestLoginEndpointStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		status int
		kind   identity.ErrorKind
	}{
		{name: "wrong password", code: identity.CodeWrongPassword, status: fiber.StatusUnauthorized, kind: identity.KindWrongPassword},
		{name: "invalid credential", code: identity.CodeInvalidCredential, status: fiber.StatusUnauthorized, kind: identity.KindInvalidCredential},
		{name: "unknown account", code: identity.CodeUserNotFound, status: fiber.StatusNotFound, kind: identity.KindAccountNotFound},
		{name: "rate limited", code: identity.CodeTooManyRequests, status: fiber.StatusTooManyRequests, kind: identity.KindTooManyRequests},
		{name: "password auth disabled", code: identity.CodeOperationNotAllowed, status: fiber.StatusForbidden, kind: identity.KindOperationNotAllowed},
		{name: "unrecognized provider code", code: "internal-error", status: fiber.StatusBadGateway, kind: identity.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockProvider)
			provider.On("Authenticate", mock.Anything, "member@dojang.kr", "secret123").
				Return(nil, &identity.ProviderError{Code: tt.code, Message: "provider detail"}).Once()

			app := newTestApp(provider, new(MockProfileStore))

			resp := postJSON(t, app, "/api/login", fiber.Map{
				"email":    "member@dojang.kr",
				"password": "secret123",
			})

			require.Equal(t, tt.status, resp.StatusCode)
			envelope := decodeError(t, resp)
			assert.Equal(t, string(tt.kind), envelope.ErrorKind)
		})
	}
}

func TestLogoutEndpoint(t *testing.T) {
	provider := new(MockProvider)
	provider.On("InvalidateSession", mock.Anything).Return(nil).Once()

	app := newTestApp(provider, new(MockProfileStore))

	resp := postJSON(t, app, "/api/logout", fiber.Map{})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true}`, string(body))
}

func TestPasswordResetEndpoint(t *testing.T) {
	provider := new(MockProvider)
	provider.On("RequestPasswordReset", mock.Anything, "member@dojang.kr").Return(nil).Once()

	app := newTestApp(provider, new(MockProfileStore))

	resp := postJSON(t, app, "/api/reset-password", fiber.Map{"email": "member@dojang.kr"})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true}`, string(body))
}

func TestPasswordResetEndpointUnknownEmail(t *testing.T) {
	provider := new(MockProvider)
	provider.On("RequestPasswordReset", mock.Anything, "ghost@dojang.kr").
		Return(&identity.ProviderError{Code: identity.CodeUserNotFound}).Once()

	app := newTestApp(provider, new(MockProfileStore))

	// Unknown emails are indistinguishable from registered ones.
	resp := postJSON(t, app, "/api/reset-password", fiber.Map{"email": "ghost@dojang.kr"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMalformedBodyReturnsBadRequest(t *testing.T) {
	app := newTestApp(new(MockProvider), new(MockProfileStore))

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	envelope := decodeError(t, resp)
	assert.Equal(t, string(identity.KindUnknown), envelope.ErrorKind)
	assert.Contains(t, envelope.Message, "Error parsing body")
}

func TestNewAuthControllerRequiresProxy(t *testing.T) {
	assert.Panics(t, func() {
		identity.NewAuthController()
	})
}

func TestDefaultRoutes(t *testing.T) {
	provider := new(MockProvider)
	provider.On("InvalidateSession", mock.Anything).Return(nil).Once()

	app := fiber.New()
	controller := identity.RegisterAuthRoutes(app,
		identity.WithControllerProxy(identity.NewSessionProxy(provider, new(MockProfileStore))),
	)
	assert.Equal(t, "/api/register", controller.Routes.Register)

	resp := postJSON(t, app, "/api/logout", fiber.Map{})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
