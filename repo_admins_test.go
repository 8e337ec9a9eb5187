package console_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-repository-bun"
	console "github.com/opspulse/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupAdminsRepo(t *testing.T) (console.Admins, *bun.DB, func()) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().
		Model((*console.Admin)(nil)).
		Exec(context.Background())
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
	}

	return console.NewAdminsRepository(bunDB), bunDB, cleanup
}

func newAdmin(username, email string) *console.Admin {
	return &console.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}
}

func TestAdminsRegister(t *testing.T) {
	repo, _, cleanup := setupAdminsRepo(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("inserts a new account with generated id", func(t *testing.T) {
		created, err := repo.Register(ctx, newAdmin("alice", "alice@example.com"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "alice", created.Username)
	})

	t.Run("duplicate username names the colliding field", func(t *testing.T) {
		_, err := repo.Register(ctx, newAdmin("alice", "alice2@example.com"))
		require.Error(t, err)
		assert.Equal(t, "username", console.ConflictField(err))
		assert.Contains(t, err.Error(), "username already exists")
	})

	t.Run("duplicate email names the colliding field", func(t *testing.T) {
		_, err := repo.Register(ctx, newAdmin("alice2", "alice@example.com"))
		require.Error(t, err)
		assert.Equal(t, "email", console.ConflictField(err))
		assert.Contains(t, err.Error(), "email already exists")
	})

	t.Run("normalizes username and email before insert", func(t *testing.T) {
		created, err := repo.Register(ctx, newAdmin("  bob  ", "  BOB@Example.COM "))
		require.NoError(t, err)
		assert.Equal(t, "bob", created.Username)
		assert.Equal(t, "bob@example.com", created.Email)
	})

	t.Run("uniqueness check is case and whitespace aware via normalization", func(t *testing.T) {
		_, err := repo.Register(ctx, newAdmin("bob2", "Bob@example.com "))
		require.Error(t, err)
		assert.Equal(t, "email", console.ConflictField(err))
	})
}

func TestAdminsGetByUsername(t *testing.T) {
	repo, _, cleanup := setupAdminsRepo(t)
	defer cleanup()

	ctx := context.Background()

	_, err := repo.Register(ctx, newAdmin("carol", "carol@example.com"))
	require.NoError(t, err)

	t.Run("finds existing account", func(t *testing.T) {
		found, err := repo.GetByUsername(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, "carol@example.com", found.Email)
	})

	t.Run("missing account is a not found error", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "nobody")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestAdminsGetByIdentifier(t *testing.T) {
	repo, _, cleanup := setupAdminsRepo(t)
	defer cleanup()

	ctx := context.Background()

	created, err := repo.Register(ctx, newAdmin("dave", "dave@example.com"))
	require.NoError(t, err)

	t.Run("resolves by username", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, "dave")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("resolves by email", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, "dave@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("resolves by id", func(t *testing.T) {
		found, err := repo.GetByIdentifier(ctx, created.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "dave", found.Username)
	})

	t.Run("unknown identifier is not found", func(t *testing.T) {
		_, err := repo.GetByIdentifier(ctx, "unknown@example.com")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestRepositoryManager(t *testing.T) {
	_, bunDB, cleanup := setupAdminsRepo(t)
	defer cleanup()

	manager := console.NewRepositoryManager(bunDB)

	assert.NoError(t, manager.Validate())
	assert.NotNil(t, manager.Admins())

	t.Run("runs transactions", func(t *testing.T) {
		ctx := context.Background()
		err := manager.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			_, err := manager.Admins().RegisterTx(ctx, tx, newAdmin("txuser", "tx@example.com"))
			return err
		})
		require.NoError(t, err)

		found, err := manager.Admins().GetByUsername(ctx, "txuser")
		require.NoError(t, err)
		assert.Equal(t, "tx@example.com", found.Email)
	})

	t.Run("cancelled context aborts the transaction", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := manager.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return nil
		})
		assert.Error(t, err)
	})
}
