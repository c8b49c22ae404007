// Package authware provides the bearer-token authentication middleware.
// A request passes only when its token verifies against the token service
// AND is still present in the account's session registry; any failure
// rejects the request before a handler runs.
package authware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/chat-nexa/account-service/account"
)

const (
	defaultUserKey  = "auth_user"
	defaultTokenKey = "auth_token"
	authScheme      = "Bearer"
)

// TokenValidator verifies signature and expiry of a raw token.
type TokenValidator interface {
	Validate(raw string) (*account.Claims, error)
}

// UserResolver loads the principal and cross-checks registry membership.
type UserResolver interface {
	ResolveWithToken(ctx context.Context, userID uuid.UUID, token string) (*account.User, error)
}

type Config struct {
	Validator TokenValidator
	Resolver  UserResolver

	// ContextUserKey and ContextTokenKey name the request locals the
	// resolved principal and raw token are stored under.
	ContextUserKey  string
	ContextTokenKey string
}

// New builds the middleware. The pipeline per request: extract bearer
// token, verify signature/expiry, require registry membership, attach the
// principal. Errors propagate to the app error handler.
func New(cfg Config) fiber.Handler {
	if cfg.Validator == nil {
		panic("authware: Config.Validator is required")
	}
	if cfg.Resolver == nil {
		panic("authware: Config.Resolver is required")
	}
	if cfg.ContextUserKey == "" {
		cfg.ContextUserKey = defaultUserKey
	}
	if cfg.ContextTokenKey == "" {
		cfg.ContextTokenKey = defaultTokenKey
	}

	return func(c *fiber.Ctx) error {
		raw, err := tokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		claims, err := cfg.Validator.Validate(raw)
		if err != nil {
			return account.ErrInvalidCredential.WithCause(err)
		}

		userID, err := uuid.Parse(claims.UserID())
		if err != nil {
			return account.ErrInvalidCredential.WithCause(err)
		}

		user, err := cfg.Resolver.ResolveWithToken(c.UserContext(), userID, raw)
		if err != nil {
			return err
		}

		c.Locals(cfg.ContextUserKey, user)
		c.Locals(cfg.ContextTokenKey, raw)

		return c.Next()
	}
}

// tokenFromHeader extracts the token from "Authorization: Bearer <token>".
func tokenFromHeader(header string) (string, error) {
	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		token := strings.TrimSpace(header[l:])
		if token != "" {
			return token, nil
		}
	}
	return "", account.ErrMissingCredential
}

// UserFromCtx returns the principal attached by the middleware.
func UserFromCtx(c *fiber.Ctx) *account.User {
	user, _ := c.Locals(defaultUserKey).(*account.User)
	return user
}

// TokenFromCtx returns the raw bearer token attached by the middleware.
func TokenFromCtx(c *fiber.Ctx) string {
	token, _ := c.Locals(defaultTokenKey).(string)
	return token
}
