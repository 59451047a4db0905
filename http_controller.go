package identity

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// ProxyService is the operation surface the controller exposes over HTTP.
// *SessionProxy is the production implementation.
type ProxyService interface {
	Register(ctx context.Context, creds Credentials) (*RegisterResult, error)
	Login(ctx context.Context, creds Credentials) (*Session, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, creds Credentials) error
}

var _ ProxyService = (*SessionProxy)(nil)

// AuthControllerRoutes holds the route paths, overridable per deployment.
type AuthControllerRoutes struct {
	Register      string
	Login         string
	Logout        string
	PasswordReset string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Proxy  ProxyService
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerProxy sets the proxy backing the routes.
func WithControllerProxy(proxy ProxyService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Proxy = proxy
		return c
	}
}

// WithControllerLogger overrides the default logger.
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerDebug enables request/response payload dumps.
func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Register:      "/api/register",
			Login:         "/api/login",
			Logout:        "/api/logout",
			PasswordReset: "/api/reset-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Proxy == nil {
		panic("Missing ProxyService in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the four proxy operations on app.
func RegisterAuthRoutes(app *fiber.App, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegisterPost).Name("register.post")
	app.Post(controller.Routes.Login, controller.LoginPost).Name("login.post")
	app.Post(controller.Routes.Logout, controller.LogoutPost).Name("logout.post")
	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).Name("pwd-reset.post")

	return controller
}

// ErrorResponse is the wire error envelope.
type ErrorResponse struct {
	ErrorKind string          `json:"errorKind"`
	Message   string          `json:"message"`
	Recovery  *RecoveryAction `json:"recoveryAction,omitempty"`
}

// RegisterPayload is the signup request body.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p RegisterPayload) credentials() Credentials {
	return Credentials{Email: p.Email, Password: p.Password, DisplayName: p.Name}
}

// LoginPayload is the login request body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p LoginPayload) credentials() Credentials {
	return Credentials{Email: p.Email, Password: p.Password}
}

// ResetPasswordPayload is the reset request body.
type ResetPasswordPayload struct {
	Email string `json:"email"`
}

func (p ResetPasswordPayload) credentials() Credentials {
	return Credentials{Email: p.Email}
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: %s", err)
		return a.renderParseError(c, err)
	}

	if a.Debug {
		a.Logger.Debug("register payload:\n%s", print.MaybePrettyJSON(payload))
	}

	result, err := a.Proxy.Register(c.UserContext(), payload.credentials())
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %s", err)
		return a.renderParseError(c, err)
	}

	session, err := a.Proxy.Login(c.UserContext(), payload.credentials())
	if err != nil {
		return a.renderError(c, err)
	}

	if a.Debug {
		a.Logger.Debug("login session:\n%s", print.MaybePrettyJSON(session))
	}

	return c.JSON(session)
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	if err := a.Proxy.Logout(c.UserContext()); err != nil {
		return a.renderError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (a *AuthController) PasswordResetPost(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("reset parse payload: %s", err)
		return a.renderParseError(c, err)
	}

	if err := a.Proxy.ResetPassword(c.UserContext(), payload.credentials()); err != nil {
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	e := AsError(err)
	return c.Status(statusForKind(e.Kind)).JSON(ErrorResponse{
		ErrorKind: string(e.Kind),
		Message:   e.Message,
		Recovery:  e.Recovery,
	})
}

func (a *AuthController) renderParseError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		ErrorKind: string(KindUnknown),
		Message:   "Error parsing body: " + err.Error(),
	})
}

func statusForKind(kind ErrorKind) int {
	switch kind {
	case KindMissingFields, KindInvalidName, KindInvalidEmail, KindWeakPassword:
		return fiber.StatusBadRequest
	case KindWrongPassword, KindInvalidCredential:
		return fiber.StatusUnauthorized
	case KindAccountNotFound:
		return fiber.StatusNotFound
	case KindEmailAlreadyInUse:
		return fiber.StatusConflict
	case KindTooManyRequests:
		return fiber.StatusTooManyRequests
	case KindOperationNotAllowed:
		return fiber.StatusForbidden
	default:
		return fiber.StatusBadGateway
	}
}
