package console

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// AdminStore is the slice of the repository the provider needs.
type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Admin, error)
}

// AdminProvider resolves and verifies operator accounts against the store.
type AdminProvider struct {
	store  AdminStore
	logger Logger
}

// NewAdminProvider will create a new AdminProvider
func NewAdminProvider(store AdminStore) *AdminProvider {
	return &AdminProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (p *AdminProvider) WithLogger(l Logger) *AdminProvider {
	if l != nil {
		p.logger = l
	}
	return p
}

// VerifyIdentity finds the account, compares the password, and returns the
// identity. Unknown usernames and wrong passwords fail identically so the
// response never reveals whether an account exists. Internal store failures
// still surface as internal errors.
func (p *AdminProvider) VerifyIdentity(ctx context.Context, username, password string) (Identity, error) {
	admin, err := p.store.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if err := ComparePasswordAndHash(password, admin.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return IdentityFromAdmin(admin), nil
}

// FindIdentityByIdentifier resolves an account by id, email, or username.
func (p *AdminProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	admin, err := p.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return IdentityFromAdmin(admin), nil
}

var _ IdentityProvider = (*AdminProvider)(nil)
