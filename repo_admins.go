package console

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Admins is the persistence surface for operator accounts. Register enforces
// the dual uniqueness guarantee and reports which field collided.
type Admins interface {
	repository.Repository[*Admin]

	Register(ctx context.Context, admin *Admin) (*Admin, error)
	RegisterTx(ctx context.Context, tx bun.IDB, admin *Admin) (*Admin, error)
	Create(ctx context.Context, record *Admin, criteria ...repository.InsertCriteria) (*Admin, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Admin, criteria ...repository.InsertCriteria) (*Admin, error)
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Admin, error)
}

type admins struct {
	repository.Repository[*Admin]
	db *bun.DB
}

var (
	_ Admins                        = (*admins)(nil)
	_ repository.Repository[*Admin] = (*admins)(nil)
)

func NewAdminsRepository(db *bun.DB) Admins {
	repo := repository.NewRepository[*Admin](db, repository.ModelHandlers[*Admin]{
		NewRecord: func() *Admin { return &Admin{} },
		GetID: func(a *Admin) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Admin, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &admins{
		Repository: repo,
		db:         db,
	}
}

func (a *admins) Register(ctx context.Context, admin *Admin) (*Admin, error) {
	return a.RegisterTx(ctx, a.db, admin)
}

// RegisterTx inserts a new account. The store's unique indexes are the
// authority on duplicates: the insert races are settled there, and a
// violation comes back as a conflict error naming the colliding field.
func (a *admins) RegisterTx(ctx context.Context, tx bun.IDB, admin *Admin) (*Admin, error) {
	record, err := a.CreateTx(ctx, tx, admin)
	if err != nil {
		if field := uniqueViolationField(err); field != "" {
			return nil, NewConflictError(field)
		}
		return nil, err
	}
	return record, nil
}

func (a *admins) Create(ctx context.Context, record *Admin, criteria ...repository.InsertCriteria) (*Admin, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *admins) CreateTx(ctx context.Context, tx bun.IDB, record *Admin, criteria ...repository.InsertCriteria) (*Admin, error) {
	prepareAdminDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *admins) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *admins) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Admin, error) {
	record := &Admin{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", strings.TrimSpace(username)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"username": username,
				})
		}
		return nil, err
	}

	return record, nil
}

// GetByIdentifier resolves an account by id, email, or username, trying the
// interpretations the identifier plausibly matches.
func (a *admins) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Admin, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

func (a *admins) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Admin, error) {
	options := resolveAdminIdentifier(identifier)
	if len(options) == 0 {
		options = []identifierOption{
			{
				column: "id",
				value:  strings.TrimSpace(identifier),
			},
		}
	}

	for _, opt := range options {
		record := &Admin{}
		q := tx.NewSelect().Model(record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func prepareAdminDefaults(record *Admin) {
	if record == nil {
		return
	}

	record.Normalize()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

type identifierOption struct {
	column string
	value  string
}

func resolveAdminIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 3)

	if isUUID(trimmed) {
		options = append(options, identifierOption{
			column: "id",
			value:  trimmed,
		})
	}

	if isEmail(trimmed) {
		options = append(options, identifierOption{
			column: "email",
			value:  strings.ToLower(trimmed),
		})
	}

	options = append(options, identifierOption{
		column: "username",
		value:  trimmed,
	})

	return options
}

func isEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isUUID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}

// uniqueViolationField inspects a driver error for a unique index violation
// and returns the colliding column. The repository layer wraps driver errors
// in rich errors whose top-level message is generic, so every level of the
// unwrap chain gets probed. Covers sqlite ("UNIQUE constraint failed:
// admins.username") and postgres ("admins_username_key") phrasings.
func uniqueViolationField(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if !strings.Contains(msg, "UNIQUE constraint failed") &&
			!strings.Contains(msg, "duplicate key value violates unique constraint") {
			continue
		}

		for _, field := range []string{"username", "email"} {
			if strings.Contains(msg, "admins."+field) || strings.Contains(msg, "admins_"+field+"_key") {
				return field
			}
		}
	}

	return ""
}
