package account

import (
	"sort"
	"strings"
)

// RequireAdmin gates operations reserved for the admin role.
func RequireAdmin(u *User) error {
	if !u.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanViewProfile implements the profile visibility gate: a profile is
// visible when it is public, when the requester owns it, or when the
// requester is an admin.
func CanViewProfile(requester, target *User) bool {
	if target == nil {
		return false
	}
	if target.IsProfilePublic {
		return true
	}
	if requester == nil {
		return false
	}
	return requester.ID == target.ID || requester.IsAdmin()
}

// updatableFields is the allow-list for profile edits. Anything else in
// an update payload rejects the whole request; fields are never silently
// dropped.
var updatableFields = map[string]bool{
	"name":              true,
	"email":             true,
	"password":          true,
	"bio":               true,
	"is_profile_public": true,
}

// ValidateUpdateFields checks an update payload against the allow-list.
func ValidateUpdateFields(fields map[string]any) error {
	unknown := []string{}
	for key := range fields {
		if !updatableFields[key] {
			unknown = append(unknown, key)
		}
	}

	if len(unknown) == 0 {
		return nil
	}

	sort.Strings(unknown)
	return NewValidationError("fields not allowed: " + strings.Join(unknown, ", "))
}
