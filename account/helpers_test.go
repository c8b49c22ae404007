package account_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"

	"github.com/chat-nexa/account-service/account"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// single connection keeps the in-memory database alive and shared
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []any{(*account.User)(nil), (*account.SessionToken)(nil)} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

type testEnv struct {
	db       *bun.DB
	users    *account.UsersRepository
	sessions *account.SessionsRepository
	tokens   *account.TokenService
	auth     *account.Authenticator
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	users := account.NewUsersRepository(db)
	sessions := account.NewSessionsRepository(db)
	tokens := account.NewTokenService([]byte("test-signing-key"), time.Hour, "accountd-test", nil)
	hasher := account.NewHasher(bcrypt.MinCost)

	return &testEnv{
		db:       db,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		auth:     account.NewAuthenticator(users, sessions, tokens, hasher, nil),
	}
}

func (e *testEnv) register(t *testing.T, name, email, password string) (*account.User, string) {
	t.Helper()

	user, token, err := e.auth.Register(context.Background(), account.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	return user, token
}

func (e *testEnv) makeAdmin(t *testing.T, user *account.User) {
	t.Helper()

	user.Role = account.RoleAdmin
	_, err := e.users.Update(context.Background(), user, "role")
	require.NoError(t, err)
}
