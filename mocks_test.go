package console_test

import (
	"context"
	"time"

	console "github.com/opspulse/console"
	"github.com/stretchr/testify/mock"
)

// MockIdentity implements console.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

// MockLogger implements console.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockIdentityProvider implements console.IdentityProvider for testing
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, username, password string) (console.Identity, error) {
	args := m.Called(ctx, username, password)
	if identity := args.Get(0); identity != nil {
		return identity.(console.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (console.Identity, error) {
	args := m.Called(ctx, identifier)
	if identity := args.Get(0); identity != nil {
		return identity.(console.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

// staticIdentity is a plain value identity for tests that don't need call assertions
type staticIdentity struct {
	id       string
	username string
	email    string
}

func (s staticIdentity) ID() string       { return s.id }
func (s staticIdentity) Username() string { return s.username }
func (s staticIdentity) Email() string    { return s.email }

// testConfig implements console.Config
type testConfig struct {
	signingKey  string
	previousKey string
	contextKey  string
	tokenTTL    time.Duration
	tokenLookup string
	authScheme  string
	issuer      string
	audience    []string
	production  bool
}

func (c testConfig) GetSigningKey() string         { return c.signingKey }
func (c testConfig) GetPreviousSigningKey() string { return c.previousKey }
func (c testConfig) GetSigningMethod() string      { return "HS256" }

func (c testConfig) GetContextKey() string {
	if c.contextKey == "" {
		return "token"
	}
	return c.contextKey
}

func (c testConfig) GetTokenTTL() time.Duration {
	if c.tokenTTL == 0 {
		return time.Hour
	}
	return c.tokenTTL
}

func (c testConfig) GetTokenLookup() string {
	if c.tokenLookup == "" {
		return "cookie:token,header:Authorization"
	}
	return c.tokenLookup
}

func (c testConfig) GetAuthScheme() string {
	if c.authScheme == "" {
		return "Bearer"
	}
	return c.authScheme
}

func (c testConfig) GetIssuer() string     { return c.issuer }
func (c testConfig) GetAudience() []string { return c.audience }
func (c testConfig) IsProduction() bool    { return c.production }
