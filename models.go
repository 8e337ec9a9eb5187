package console

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Admin is the dashboard operator account. Username and email are enforced
// unique by the store; the password hash never serializes into responses.
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:adm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PublicAdmin is the response view of an account: identity fields only.
type PublicAdmin struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Public strips the account down to its shareable fields.
func (a *Admin) Public() PublicAdmin {
	return PublicAdmin{
		ID:        a.ID.String(),
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// Normalize trims the username and lowercases the email, mirroring what the
// store indexes on. Runs before every insert.
func (a *Admin) Normalize() *Admin {
	a.Username = strings.TrimSpace(a.Username)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	return a
}

// Identity adapter over the stored record.

type adminIdentity struct {
	id       string
	username string
	email    string
}

func (a adminIdentity) ID() string       { return a.id }
func (a adminIdentity) Username() string { return a.username }
func (a adminIdentity) Email() string    { return a.email }

var _ Identity = adminIdentity{}

// IdentityFromAdmin exposes a stored account through the Identity interface.
func IdentityFromAdmin(a *Admin) Identity {
	return adminIdentity{
		id:       a.ID.String(),
		username: a.Username,
		email:    a.Email,
	}
}
