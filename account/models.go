package account

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a regular account holder
	RoleUser UserRole = "user"
	// RoleAdmin can manage arbitrary accounts
	RoleAdmin UserRole = "admin"
)

// IsValidRole checks that the role is one of the predefined roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the account model. PasswordHash and GoogleID are excluded from
// JSON so the marshaled form is the public view; session tokens live in
// their own table and never travel with the user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID              uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name            string    `bun:"name,notnull" json:"name"`
	Email           string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash    string    `bun:"password_hash" json:"-"`
	Bio             string    `bun:"bio" json:"bio,omitempty"`
	AvatarURL       string    `bun:"avatar_url" json:"avatar_url,omitempty"`
	Role            UserRole  `bun:"role,notnull" json:"role"`
	IsProfilePublic bool      `bun:"is_profile_public,notnull" json:"is_profile_public"`
	GoogleID        string    `bun:"google_id" json:"-"`
	CreatedAt       time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SessionToken is one currently-honored bearer token. One row per token
// keeps add/remove/clear atomic at the statement level, so concurrent
// sign-ins on the same account cannot clobber each other.
type SessionToken struct {
	bun.BaseModel `bun:"table:session_tokens,alias:st"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Token     string    `bun:"token,notnull" json:"token"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// NormalizeEmail lowercases and trims an email address. All lookups and
// writes go through this so the unique constraint sees one spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif)$`)

// IsImageURL reports whether the value is an http(s) URL pointing at an
// image resource. The empty string means "no avatar" and is not an image URL.
func IsImageURL(raw string) bool {
	return imageURLPattern.MatchString(raw)
}
