package console

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/opspulse/console/middleware/tokenware"
)

// RouteAuthenticator binds the Authenticator to HTTP transport: it performs
// the login, places the session token in the response cookie, and clears it
// on logout. The cookie and a bearer header are interchangeable carriers of
// the same token.
type RouteAuthenticator struct {
	auth           Authenticator
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := time.Hour
	if cfg.GetTokenTTL() > 0 {
		cookieDuration = cfg.GetTokenTTL()
	}

	return &RouteAuthenticator{
		cfg:            cfg,
		auth:           auther,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

func (a *RouteAuthenticator) WithLogger(l Logger) *RouteAuthenticator {
	if l != nil {
		a.Logger = l
	}
	return a
}

// ProtectedRoute returns the access gate configured from cfg, validating
// against the authenticator's token chain and storing claims under the
// context key.
func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler fiber.ErrorHandler) fiber.Handler {
	return tokenware.New(tokenware.Config{
		ErrorHandler: errorHandler,
		SigningKey: tokenware.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: cfg.GetSigningMethod(),
		},
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		TokenValidator: sessionValidator{auth: a.auth},
		ContextEnricher: func(ctx context.Context, claims tokenware.AuthClaims) context.Context {
			return WithClaimsContext(ctx, claims)
		},
	})
}

// sessionValidator adapts the Authenticator to the gate's validator
// interface. The claim interfaces are structurally identical so the claims
// pass through untouched.
type sessionValidator struct {
	auth Authenticator
}

func (v sessionValidator) Validate(tokenString string) (tokenware.AuthClaims, error) {
	claims, err := v.auth.SessionFromToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Login verifies credentials and, on success, sets the session cookie. The
// token is returned so JSON responses can carry it for bearer clients too.
func (a *RouteAuthenticator) Login(c *fiber.Ctx, payload LoginPayload) (string, Identity, error) {
	token, identity, err := a.auth.Login(c.UserContext(), payload.GetUsername(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %v", err)
		return "", nil, err
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return token, identity, nil
}

// Logout clears the session cookie. Stateless tokens cannot be revoked, so
// this only removes the cookie copy; a held bearer token stays valid until
// it expires.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookieDel(c, a.cfg.GetContextKey())
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   a.cfg.IsProduction(),
		SameSite: "Strict",
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   a.cfg.IsProduction(),
		SameSite: "Strict",
	})
}
