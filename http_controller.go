package console

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// RegisterAuthRoutes mounts the auth endpoints on the given router group.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegistrationCreate)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.Logout, controller.LogoutPost)

	return controller
}

type AuthControllerRoutes struct {
	Login    string
	Logout   string
	Register string
	Me       string
}

// AuthController is the JSON transport for registration and sessions.
type AuthController struct {
	Logger Logger
	Repo   RepositoryManager
	Routes *AuthControllerRoutes
	Auther *RouteAuthenticator
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *RouteAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			Logout:   "/logout",
			Register: "/register",
			Me:       "/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// GetUsername returns the username
func (r LoginRequest) GetUsername() string {
	return r.Username
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 60)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RegistrationCreate handles POST /register: validate the payload, hash, and
// insert. The created account serializes without the password hash.
func (a *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: %v", err)
		return jsonMessage(c, fiber.StatusBadRequest, "failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":    "invalid registration payload",
			"validation": err,
		})
	}

	handler := NewRegisterAdminHandler(a.Repo)
	admin, err := handler.Execute(c.UserContext(), RegisterAdminMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		a.Logger.Error("register execute: %v", err)
		return a.errorResponse(c, err)
	}

	return c.JSON(admin.Public())
}

// LoginPost handles POST /login: verify credentials, set the session cookie,
// and return the token for bearer clients.
func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return jsonMessage(c, fiber.StatusBadRequest, "failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":    "invalid login payload",
			"validation": err,
		})
	}

	token, identity, err := a.Auther.Login(c, payload)
	if err != nil {
		return a.errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"admin": fiber.Map{
			"id":       identity.ID(),
			"username": identity.Username(),
			"email":    identity.Email(),
		},
	})
}

// LogoutPost handles POST /logout. Clearing the cookie needs no valid token,
// so logging out twice succeeds both times.
func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return jsonMessage(c, fiber.StatusOK, "Logged out successfully")
}

// Me handles GET /me behind the access gate, echoing the identity the gate
// decoded from the session token.
func (a *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := ClaimsFromFiber(c, a.Auther.cfg.GetContextKey())
	if !ok {
		return jsonMessage(c, fiber.StatusUnauthorized, ErrAuthorizationRequired.Message)
	}

	return c.JSON(fiber.Map{
		"admin": fiber.Map{
			"id":       claims.UserID(),
			"username": claims.Username(),
			"email":    claims.Email(),
		},
	})
}

// errorResponse maps rich errors onto JSON responses: conflicts and bad
// credentials are 400 with their message, auth failures 401, everything else
// a generic 500 that leaks no internals.
func (a *AuthController) errorResponse(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		a.Logger.Error("unhandled error: %v", err)
		return jsonMessage(c, fiber.StatusInternalServerError, "internal server error")
	}

	switch richErr.Category {
	case goerrors.CategoryConflict, goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return jsonMessage(c, fiber.StatusBadRequest, richErr.Message)
	case goerrors.CategoryAuth:
		if richErr.Code == goerrors.CodeUnauthorized {
			return jsonMessage(c, fiber.StatusUnauthorized, richErr.Message)
		}
		return jsonMessage(c, fiber.StatusBadRequest, richErr.Message)
	default:
		a.Logger.Error("internal error: %v", richErr)
		return jsonMessage(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func jsonMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
	})
}
