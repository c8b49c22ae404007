package authware_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"

	"github.com/chat-nexa/account-service/account"
	"github.com/chat-nexa/account-service/account/authware"
)

type guardEnv struct {
	app    *fiber.App
	auth   *account.Authenticator
	tokens *account.TokenService
}

func setupGuard(t *testing.T) *guardEnv {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, model := range []any{(*account.User)(nil), (*account.SessionToken)(nil)} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	users := account.NewUsersRepository(db)
	sessions := account.NewSessionsRepository(db)
	tokens := account.NewTokenService([]byte("test-signing-key"), time.Hour, "accountd-test", nil)
	auth := account.NewAuthenticator(users, sessions, tokens, account.NewHasher(bcrypt.MinCost), nil)

	app := fiber.New(fiber.Config{ErrorHandler: account.ErrorHandler(nil)})
	guard := authware.New(authware.Config{Validator: tokens, Resolver: auth})

	app.Get("/me", guard, func(c *fiber.Ctx) error {
		user := authware.UserFromCtx(c)
		return c.JSON(fiber.Map{"id": user.ID, "token": authware.TokenFromCtx(c)})
	})

	return &guardEnv{app: app, auth: auth, tokens: tokens}
}

func (e *guardEnv) get(t *testing.T, authorization string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}

	res, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func TestGuardRejectsMissingHeader(t *testing.T) {
	env := setupGuard(t)

	res := env.get(t, "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestGuardRejectsMalformedHeader(t *testing.T) {
	env := setupGuard(t)

	for _, header := range []string{"Bearer", "Bearer ", "Basic abc123", "token-without-scheme"} {
		res := env.get(t, header)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, "header %q", header)
	}
}

func TestGuardRejectsInvalidToken(t *testing.T) {
	env := setupGuard(t)

	res := env.get(t, "Bearer not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestGuardAcceptsRegisteredToken(t *testing.T) {
	env := setupGuard(t)
	ctx := context.Background()

	_, token, err := env.auth.Register(ctx, account.RegisterInput{
		Name: "Ada", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	res := env.get(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestGuardRejectsSignedOutToken(t *testing.T) {
	env := setupGuard(t)
	ctx := context.Background()

	user, token, err := env.auth.Register(ctx, account.RegisterInput{
		Name: "Ada", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	require.NoError(t, env.auth.Logout(ctx, user, token))

	// token still verifies in isolation but the registry check fails
	_, err = env.tokens.Validate(token)
	require.NoError(t, err)

	res := env.get(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestGuardRejectsDeletedAccountToken(t *testing.T) {
	env := setupGuard(t)
	ctx := context.Background()

	user, token, err := env.auth.Register(ctx, account.RegisterInput{
		Name: "Ada", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	require.NoError(t, env.auth.DeleteAccount(ctx, user))

	res := env.get(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
