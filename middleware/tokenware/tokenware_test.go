package tokenware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/opspulse/console/middleware/tokenware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("tokenware-test-key")

func signTestToken(t *testing.T, key []byte, expiresIn time.Duration) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "admin-1",
		"uid":      "admin-1",
		"username": "alice",
		"email":    "alice@example.com",
		"iat":      now.Unix(),
		"exp":      now.Add(expiresIn).Unix(),
	})

	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newGatedApp(cfg tokenware.Config) *fiber.App {
	app := fiber.New()
	app.Use(tokenware.New(cfg))
	app.Get("/protected", func(c *fiber.Ctx) error {
		claims, ok := c.Locals("token").(tokenware.AuthClaims)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"uid": claims.UserID()})
	})
	return app
}

func TestGateWithSigningKey(t *testing.T) {
	app := newGatedApp(tokenware.Config{
		SigningKey: tokenware.SigningKey{Key: testKey, JWTAlg: "HS256"},
	})

	t.Run("cookie token is accepted", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: signTestToken(t, testKey, time.Hour)})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("bearer token is accepted", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, testKey, time.Hour))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing token is a 401", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token is a 401", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: signTestToken(t, testKey, -time.Minute)})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another key is a 401", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: signTestToken(t, []byte("other-key"), time.Hour)})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong auth scheme falls through to missing", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic "+signTestToken(t, testKey, time.Hour))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGateFilter(t *testing.T) {
	app := fiber.New()
	app.Use(tokenware.New(tokenware.Config{
		SigningKey: tokenware.SigningKey{Key: testKey, JWTAlg: "HS256"},
		Filter: func(c *fiber.Ctx) bool {
			return c.Path() == "/open"
		},
	}))
	app.Get("/open", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/closed", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	t.Run("filtered route skips the gate", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/open", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("unfiltered route is still gated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/closed", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGateCustomValidator(t *testing.T) {
	calls := 0
	validator := validatorFunc(func(tokenString string) (tokenware.AuthClaims, error) {
		calls++
		if tokenString == "good" {
			return staticClaims{uid: "admin-1"}, nil
		}
		return nil, tokenware.ErrTokenInvalid
	})

	app := newGatedApp(tokenware.Config{TokenValidator: validator})

	t.Run("custom validator accepts", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "good"})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, calls)
	})

	t.Run("custom validator rejects", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "bad"})

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGetExtractors(t *testing.T) {
	t.Run("parses multiple sources in order", func(t *testing.T) {
		extractors := tokenware.GetExtractors("cookie:token,header:Authorization")
		assert.Len(t, extractors, 2)
	})

	t.Run("ignores malformed entries", func(t *testing.T) {
		extractors := tokenware.GetExtractors("cookie")
		assert.Len(t, extractors, 0)
	})
}

type validatorFunc func(string) (tokenware.AuthClaims, error)

func (f validatorFunc) Validate(tokenString string) (tokenware.AuthClaims, error) {
	return f(tokenString)
}

type staticClaims struct {
	uid string
}

func (s staticClaims) Subject() string     { return s.uid }
func (s staticClaims) UserID() string      { return s.uid }
func (s staticClaims) Username() string    { return "alice" }
func (s staticClaims) Email() string       { return "alice@example.com" }
func (s staticClaims) Expires() time.Time  { return time.Now().Add(time.Hour) }
func (s staticClaims) IssuedAt() time.Time { return time.Now() }
