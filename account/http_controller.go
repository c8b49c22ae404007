package account

import (
	"encoding/json"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chat-nexa/account-service/account/social/google"
)

const oauthStateCookie = "oauth_state"

// Controller exposes the HTTP contract over the authenticator.
type Controller struct {
	Auth   *Authenticator
	Users  *UsersRepository
	Google *google.Provider
	Logger *zap.Logger
}

type ControllerOption func(*Controller)

func WithGoogleProvider(p *google.Provider) ControllerOption {
	return func(c *Controller) {
		c.Google = p
	}
}

func NewController(auth *Authenticator, users *UsersRepository, logger *zap.Logger, opts ...ControllerOption) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		Auth:   auth,
		Users:  users,
		Logger: logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RegisterRoutes mounts the HTTP contract. guard is the bearer-token
// middleware; routes registered without it are public.
func (c *Controller) RegisterRoutes(app *fiber.App, guard fiber.Handler) {
	app.Post("/signup", c.SignUp)
	app.Post("/signin", c.SignIn)
	app.Get("/public-profiles", c.PublicProfiles)
	app.Get("/avatars/fetch/:id", c.FetchAvatar)

	app.Post("/signout", guard, c.SignOut)
	app.Post("/signout-all", guard, c.SignOutAll)
	app.Put("/reset-password", guard, c.ResetPassword)
	app.Get("/user-profile", guard, c.GetProfile)
	app.Get("/user-profile/:id", guard, c.GetProfileByID)
	app.Delete("/user-profile", guard, c.DeleteProfile)
	app.Put("/edit-profile", guard, c.EditProfile)
	app.Post("/upload-avatar", guard, c.UploadAvatar)
	app.Post("/delete-avatar", guard, c.DeleteAvatar)
	app.Delete("/delete-avatar", guard, c.DeleteAvatar)

	app.Delete("/admin/users/:id", guard, c.AdminDeleteUser)
	app.Post("/admin/users/:id/signout-all", guard, c.AdminSignOutAll)

	if c.Google != nil {
		app.Get("/auth/google", c.GoogleRedirect)
		app.Get("/auth/google/callback", c.GoogleCallback)
	}
}

// SignUpRequest is the registration payload
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (c *Controller) SignUp(ctx *fiber.Ctx) error {
	payload := new(SignUpRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return NewValidationError("unable to parse body").WithCause(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	user, token, err := c.Auth.Register(ctx.UserContext(), RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"user": user, "token": token})
}

// SignInRequest is the credential authentication payload
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (c *Controller) SignIn(ctx *fiber.Ctx) error {
	payload := new(SignInRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return NewValidationError("unable to parse body").WithCause(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	user, token, err := c.Auth.Login(ctx.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"user": user, "token": token})
}

func (c *Controller) SignOut(ctx *fiber.Ctx) error {
	user, token := principal(ctx)

	if err := c.Auth.Logout(ctx.UserContext(), user, token); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"message": "Signed out successfully"})
}

func (c *Controller) SignOutAll(ctx *fiber.Ctx) error {
	user, _ := principal(ctx)

	if err := c.Auth.LogoutAll(ctx.UserContext(), user.ID); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"message": "Signed out from all sessions"})
}

// ResetPasswordRequest carries the replacement password
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (c *Controller) ResetPassword(ctx *fiber.Ctx) error {
	payload := new(ResetPasswordRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return NewValidationError("unable to parse body").WithCause(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	user, _ := principal(ctx)
	if err := c.Auth.ResetPassword(ctx.UserContext(), user, payload.Password); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"message": "Password changed successfully"})
}

func (c *Controller) GetProfile(ctx *fiber.Ctx) error {
	user, _ := principal(ctx)
	return ctx.JSON(fiber.Map{"user": user})
}

func (c *Controller) GetProfileByID(ctx *fiber.Ctx) error {
	targetID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return NewValidationError("invalid account id")
	}

	target, err := c.Users.GetByID(ctx.UserContext(), targetID)
	if err != nil {
		return err
	}

	requester, _ := principal(ctx)
	if !CanViewProfile(requester, target) {
		return ErrForbidden
	}

	return ctx.JSON(fiber.Map{"user": target})
}

func (c *Controller) DeleteProfile(ctx *fiber.Ctx) error {
	user, _ := principal(ctx)

	if err := c.Auth.DeleteAccount(ctx.UserContext(), user); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"user": user})
}

func (c *Controller) EditProfile(ctx *fiber.Ctx) error {
	fields := map[string]any{}
	if err := json.Unmarshal(ctx.Body(), &fields); err != nil {
		return NewValidationError("unable to parse body").WithCause(err)
	}

	user, _ := principal(ctx)
	user, err := c.Auth.UpdateProfile(ctx.UserContext(), user, fields)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"user": user, "message": "Profile updated successfully"})
}

// UploadAvatarRequest carries a reference to an already-uploaded image
type UploadAvatarRequest struct {
	AvatarURL string `json:"avatar_url"`
}

// Validate will run validation rules
func (r UploadAvatarRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AvatarURL, validation.Required, is.URL),
	)
}

func (c *Controller) UploadAvatar(ctx *fiber.Ctx) error {
	payload := new(UploadAvatarRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return NewValidationError("unable to parse body").WithCause(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	user, _ := principal(ctx)
	user, err := c.Auth.SetAvatar(ctx.UserContext(), user, payload.AvatarURL)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"user": user, "message": "Avatar uploaded successfully!"})
}

func (c *Controller) DeleteAvatar(ctx *fiber.Ctx) error {
	user, _ := principal(ctx)

	if _, err := c.Auth.ClearAvatar(ctx.UserContext(), user); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"message": "Avatar deleted successfully"})
}

func (c *Controller) FetchAvatar(ctx *fiber.Ctx) error {
	targetID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return NewValidationError("invalid account id")
	}

	user, err := c.Users.GetByID(ctx.UserContext(), targetID)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"avatar_url": user.AvatarURL})
}

func (c *Controller) PublicProfiles(ctx *fiber.Ctx) error {
	users, err := c.Users.ListPublic(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"users": users})
}

func (c *Controller) AdminDeleteUser(ctx *fiber.Ctx) error {
	requester, _ := principal(ctx)
	if err := RequireAdmin(requester); err != nil {
		return err
	}

	targetID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return NewValidationError("invalid account id")
	}

	target, err := c.Users.GetByID(ctx.UserContext(), targetID)
	if err != nil {
		return err
	}

	if err := c.Auth.DeleteAccount(ctx.UserContext(), target); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"user": target})
}

func (c *Controller) AdminSignOutAll(ctx *fiber.Ctx) error {
	requester, _ := principal(ctx)
	if err := RequireAdmin(requester); err != nil {
		return err
	}

	targetID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return NewValidationError("invalid account id")
	}

	target, err := c.Users.GetByID(ctx.UserContext(), targetID)
	if err != nil {
		return err
	}

	if err := c.Auth.LogoutAll(ctx.UserContext(), target.ID); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"message": "Signed out from all sessions"})
}

func (c *Controller) GoogleRedirect(ctx *fiber.Ctx) error {
	state := uuid.NewString()

	ctx.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
	})

	return ctx.Redirect(c.Google.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

func (c *Controller) GoogleCallback(ctx *fiber.Ctx) error {
	state := ctx.Query("state")
	if state == "" || state != ctx.Cookies(oauthStateCookie) {
		return NewValidationError("oauth state mismatch")
	}
	ctx.ClearCookie(oauthStateCookie)

	code := ctx.Query("code")
	if code == "" {
		return NewValidationError("missing authorization code")
	}

	token, err := c.Google.Exchange(ctx.UserContext(), code)
	if err != nil {
		c.Logger.Error("google exchange", zap.Error(err))
		return ErrInvalidCredential.WithCause(err)
	}

	profile, err := c.Google.FetchProfile(ctx.UserContext(), token)
	if err != nil {
		c.Logger.Error("google profile fetch", zap.Error(err))
		return ErrInvalidCredential.WithCause(err)
	}

	user, bearer, err := c.Auth.LoginExternal(ctx.UserContext(), ExternalIdentity{
		Provider:   "google",
		ProviderID: profile.Sub,
		Email:      profile.Email,
		Name:       profile.Name,
		AvatarURL:  profile.Picture,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"user": user, "token": bearer})
}

// principal returns the authenticated user and raw token attached by the
// auth middleware. Guarded routes always have both.
func principal(ctx *fiber.Ctx) (*User, string) {
	user, _ := ctx.Locals("auth_user").(*User)
	token, _ := ctx.Locals("auth_token").(string)
	return user, token
}

// ErrorHandler maps the error taxonomy onto HTTP statuses. Validation and
// invalid credentials are client errors, authentication failures are 401,
// policy failures 403, unknown accounts 404, anything else a generic 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx *fiber.Ctx, err error) error {
		var vErrs validation.Errors
		if errors.As(err, &vErrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "validation failed",
				"fields": vErrs,
			})
		}

		var authErr *AuthError
		if errors.As(err, &authErr) {
			status := fiber.StatusInternalServerError
			switch authErr.Category {
			case CategoryValidation:
				status = fiber.StatusBadRequest
			case CategoryUnauthorized:
				status = fiber.StatusUnauthorized
			case CategoryForbidden:
				status = fiber.StatusForbidden
			case CategoryNotFound:
				status = fiber.StatusNotFound
			}
			return ctx.Status(status).JSON(fiber.Map{"error": authErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		logger.Error("unhandled request error",
			zap.String("path", ctx.Path()),
			zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
