package account

import (
	"context"
	"errors"
	"net/mail"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Authenticator composes the hasher, token service and repositories into
// the account lifecycle operations.
type Authenticator struct {
	users    *UsersRepository
	sessions *SessionsRepository
	tokens   *TokenService
	hasher   Hasher
	logger   *zap.Logger
}

func NewAuthenticator(users *UsersRepository, sessions *SessionsRepository, tokens *TokenService, hasher Hasher, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		logger:   logger,
	}
}

// RegisterInput is the validated signup payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an account and signs it in: hash the password, persist,
// issue a token and add it to the registry.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	email := NormalizeEmail(in.Email)

	if _, err := a.users.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &User{
		Name:            in.Name,
		Email:           email,
		PasswordHash:    hash,
		Role:            RoleUser,
		IsProfilePublic: true,
	}

	if user, err = a.users.Create(ctx, user); err != nil {
		a.logger.Error("register create account", zap.Error(err))
		return nil, "", err
	}

	token, err := a.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	a.logger.Info("account registered", zap.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login verifies credentials and issues a session token. Unknown email
// and password mismatch both surface as ErrInvalidCredentials so the
// response never discloses which check failed.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			a.logger.Warn("login unknown email")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	// OAuth-only accounts have no password to verify against
	if user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}

	if err := a.hasher.Compare(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			a.logger.Warn("login password mismatch", zap.String("user_id", user.ID.String()))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	token, err := a.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// ExternalIdentity is a verified identity vouched for by a third-party
// provider.
type ExternalIdentity struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// LoginExternal signs in a verified external identity, creating a local
// account bound to it on first visit. Such accounts have no password.
func (a *Authenticator) LoginExternal(ctx context.Context, identity ExternalIdentity) (*User, string, error) {
	if identity.ProviderID == "" {
		return nil, "", NewValidationError("external identity id is required")
	}

	user, err := a.users.GetByGoogleID(ctx, identity.ProviderID)
	if errors.Is(err, ErrNotFound) {
		user = &User{
			Name:            identity.Name,
			Email:           NormalizeEmail(identity.Email),
			AvatarURL:       identity.AvatarURL,
			Role:            RoleUser,
			IsProfilePublic: true,
			GoogleID:        identity.ProviderID,
		}
		if user, err = a.users.Create(ctx, user); err != nil {
			a.logger.Error("external login create account", zap.Error(err))
			return nil, "", err
		}
		a.logger.Info("account created from external identity",
			zap.String("provider", identity.Provider),
			zap.String("user_id", user.ID.String()))
	} else if err != nil {
		return nil, "", err
	}

	token, err := a.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Logout removes the current token from the registry. Idempotent.
func (a *Authenticator) Logout(ctx context.Context, user *User, token string) error {
	return a.sessions.Remove(ctx, user.ID, token)
}

// LogoutAll clears the whole registry for the account.
func (a *Authenticator) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return a.sessions.Clear(ctx, userID)
}

// ResetPassword overwrites the password, rehashing exactly once. Other
// sessions stay valid.
func (a *Authenticator) ResetPassword(ctx context.Context, user *User, newPassword string) error {
	if len(newPassword) < 6 {
		return NewValidationError("password must be at least 6 characters")
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if _, err := a.users.Update(ctx, user, "password_hash"); err != nil {
		return err
	}

	a.logger.Info("password reset", zap.String("user_id", user.ID.String()))
	return nil
}

// DeleteAccount removes the record and its registry. Outstanding tokens
// die with it: the middleware's registry check has nothing left to match.
func (a *Authenticator) DeleteAccount(ctx context.Context, user *User) error {
	if err := a.sessions.Clear(ctx, user.ID); err != nil {
		return err
	}
	if err := a.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	a.logger.Info("account deleted", zap.String("user_id", user.ID.String()))
	return nil
}

// UpdateProfile applies an allow-listed update payload. Unknown fields
// reject the whole update; a password change is hashed here, exactly once.
func (a *Authenticator) UpdateProfile(ctx context.Context, user *User, fields map[string]any) (*User, error) {
	if len(fields) == 0 {
		return nil, NewValidationError("no fields to update")
	}

	if err := ValidateUpdateFields(fields); err != nil {
		return nil, err
	}

	columns := []string{}

	for key, raw := range fields {
		switch key {
		case "name":
			name, ok := raw.(string)
			if !ok || name == "" {
				return nil, NewValidationError("name must be a non-empty string")
			}
			user.Name = name
			columns = append(columns, "name")
		case "email":
			email, ok := raw.(string)
			if !ok {
				return nil, NewValidationError("email must be a string")
			}
			email = NormalizeEmail(email)
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, NewValidationError("email is invalid")
			}
			if existing, err := a.users.GetByEmail(ctx, email); err == nil && existing.ID != user.ID {
				return nil, ErrEmailTaken
			} else if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			user.Email = email
			columns = append(columns, "email")
		case "password":
			password, ok := raw.(string)
			if !ok || len(password) < 6 {
				return nil, NewValidationError("password must be at least 6 characters")
			}
			hash, err := a.hasher.Hash(password)
			if err != nil {
				return nil, err
			}
			user.PasswordHash = hash
			columns = append(columns, "password_hash")
		case "bio":
			bio, ok := raw.(string)
			if !ok {
				return nil, NewValidationError("bio must be a string")
			}
			user.Bio = bio
			columns = append(columns, "bio")
		case "is_profile_public":
			public, ok := raw.(bool)
			if !ok {
				return nil, NewValidationError("is_profile_public must be a boolean")
			}
			user.IsProfilePublic = public
			columns = append(columns, "is_profile_public")
		}
	}

	return a.users.Update(ctx, user, columns...)
}

// SetAvatar stores an externally-hosted image reference.
func (a *Authenticator) SetAvatar(ctx context.Context, user *User, url string) (*User, error) {
	if !IsImageURL(url) {
		return nil, NewValidationError("avatar must be an http(s) image URL")
	}

	user.AvatarURL = url
	return a.users.Update(ctx, user, "avatar_url")
}

// ClearAvatar removes the avatar reference.
func (a *Authenticator) ClearAvatar(ctx context.Context, user *User) (*User, error) {
	user.AvatarURL = ""
	return a.users.Update(ctx, user, "avatar_url")
}

// ResolveWithToken resolves the principal for a verified token: the
// account must exist and the raw token must still be registered for it.
// Both failures surface as ErrInvalidCredential, covering explicit
// sign-out and account deletion alike.
func (a *Authenticator) ResolveWithToken(ctx context.Context, userID uuid.UUID, token string) (*User, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	ok, err := a.sessions.Exists(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredential
	}

	return user, nil
}

func (a *Authenticator) issueSession(ctx context.Context, user *User) (string, error) {
	token, err := a.tokens.Generate(user.ID)
	if err != nil {
		a.logger.Error("issue token", zap.Error(err))
		return "", err
	}

	if err := a.sessions.Add(ctx, user.ID, token); err != nil {
		a.logger.Error("register session token", zap.Error(err))
		return "", err
	}

	return token, nil
}
