package console

import (
	"context"
	"reflect"

	"github.com/golang-jwt/jwt/v5"
)

// Auther implements the Authenticator interface on top of an identity
// provider and a token service.
type Auther struct {
	provider       IdentityProvider
	signingKey     []byte
	tokenService   TokenService
	tokenValidator TokenValidator
	logger         Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenTTL(),
		opts.GetIssuer(),
		jwt.ClaimStrings(opts.GetAudience()),
		defLogger{},
	)

	auther := &Auther{
		provider:     provider,
		signingKey:   []byte(opts.GetSigningKey()),
		tokenService: tokenService,
		logger:       defLogger{},
	}

	// during a secret rotation the previous key keeps validating
	// outstanding tokens until they expire on their own
	if prev := opts.GetPreviousSigningKey(); prev != "" {
		prevService := NewTokenService(
			[]byte(prev),
			opts.GetTokenTTL(),
			opts.GetIssuer(),
			jwt.ClaimStrings(opts.GetAudience()),
			defLogger{},
		)
		auther.tokenValidator = NewMultiTokenValidator(tokenService, prevService)
	}

	return auther
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenValidator sets a custom token validator, replacing the default
// signing-key validation chain.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credential pair and mints a signed session token. The
// returned identity is what the credentials resolved to; the token carries
// the same claims.
func (s *Auther) Login(ctx context.Context, username, password string) (string, Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, username, password)
	if err != nil {
		s.logger.Error("Login verify identity error: %v", err)
		return "", nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error: %v", err)
		return "", nil, err
	}

	return token, identity, nil
}

// SessionFromToken validates a raw token string and returns its claims.
func (s *Auther) SessionFromToken(raw string) (AuthClaims, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Debug("SessionFromToken validation failed: %v", err)
		return nil, err
	}

	return claims, nil
}

var _ Authenticator = (*Auther)(nil)
