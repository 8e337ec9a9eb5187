package config

import (
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// BaseConfig is the root configuration container. go-config hydrates it from
// defaults, config files, and environment variables in that order.
type BaseConfig struct {
	Env         string      `json:"env" koanf:"env"`
	Server      Server      `json:"server" koanf:"server"`
	Auth        Auth        `json:"auth" koanf:"auth"`
	Persistence Persistence `json:"persistence" koanf:"persistence"`
}

type Server struct {
	Addr         string `json:"addr" koanf:"addr"`
	ClientOrigin string `json:"client_origin" koanf:"client_origin"`
}

// Auth holds session-token options. TTLExpression is a duration expression
// like "1h" or "45m".
type Auth struct {
	SigningKey         string   `json:"signing_key" koanf:"signing_key"`
	PreviousSigningKey string   `json:"previous_signing_key" koanf:"previous_signing_key"`
	SigningMethod      string   `json:"signing_method" koanf:"signing_method"`
	ContextKey         string   `json:"context_key" koanf:"context_key"`
	TTLExpression      string   `json:"ttl" koanf:"ttl"`
	TokenLookup        string   `json:"token_lookup" koanf:"token_lookup"`
	AuthScheme         string   `json:"auth_scheme" koanf:"auth_scheme"`
	Issuer             string   `json:"issuer" koanf:"issuer"`
	Audience           []string `json:"audience" koanf:"audience"`
	Production         bool     `json:"production" koanf:"production"`
}

type Persistence struct {
	Driver string `json:"driver" koanf:"driver"`
	DSN    string `json:"dsn" koanf:"dsn"`
}

func (a BaseConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return goerrors.New("auth.signing_key is required", goerrors.CategoryValidation)
	}
	if a.Persistence.DSN == "" {
		return goerrors.New("persistence.dsn is required", goerrors.CategoryValidation)
	}
	return nil
}

func (a BaseConfig) GetServer() Server {
	return a.Server
}

func (a BaseConfig) GetAuth() Auth {
	return a.Auth
}

func (a BaseConfig) GetPersistence() Persistence {
	return a.Persistence
}

func (s Server) GetAddr() string {
	if s.Addr == "" {
		return ":8580"
	}
	return s.Addr
}

func (s Server) GetClientOrigin() string {
	if s.ClientOrigin == "" {
		return "http://localhost:3000"
	}
	return s.ClientOrigin
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetPreviousSigningKey() string {
	return a.PreviousSigningKey
}

func (a Auth) GetSigningMethod() string {
	if a.SigningMethod == "" {
		return "HS256"
	}
	return a.SigningMethod
}

func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "token"
	}
	return a.ContextKey
}

func (a Auth) GetTokenTTL() time.Duration {
	if a.TTLExpression == "" {
		return time.Hour
	}
	dur, err := time.ParseDuration(a.TTLExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", a.TTLExpression),
		)
	}
	return dur
}

func (a Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "cookie:token,header:Authorization"
	}
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a Auth) GetIssuer() string {
	return a.Issuer
}

func (a Auth) GetAudience() []string {
	return a.Audience
}

func (a Auth) IsProduction() bool {
	return a.Production
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p Persistence) GetDSN() string {
	return p.DSN
}
