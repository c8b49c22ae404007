package account

// Category classifies an AuthError so the HTTP boundary can map it to a
// status code without inspecting messages.
type Category int

const (
	// CategoryValidation covers malformed or rejected client input,
	// including the uniform invalid-credentials outcome at sign-in.
	CategoryValidation Category = iota + 1
	// CategoryUnauthorized covers missing, malformed, expired or revoked
	// bearer tokens. The request ends before any handler runs.
	CategoryUnauthorized
	// CategoryForbidden means the requester is known but not permitted.
	CategoryForbidden
	// CategoryNotFound means the referenced account does not exist, where
	// disclosing existence is allowed.
	CategoryNotFound
	// CategoryInternal covers store failures and other server faults.
	CategoryInternal
)

// AuthError is the error type crossing component boundaries.
type AuthError struct {
	Category Category
	Message  string
	cause    error
}

func (e *AuthError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.cause
}

// Is matches any AuthError with the same category and message, so wrapped
// instances compare equal to the package sentinels under errors.Is.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Category == e.Category && t.Message == e.Message
}

// WithCause returns a copy carrying the underlying error.
func (e *AuthError) WithCause(cause error) *AuthError {
	return &AuthError{Category: e.Category, Message: e.Message, cause: cause}
}

// NewValidationError builds a one-off client input error.
func NewValidationError(message string) *AuthError {
	return &AuthError{Category: CategoryValidation, Message: message}
}

var (
	// ErrNoEmptyString rejects empty required values
	ErrNoEmptyString = &AuthError{Category: CategoryValidation, Message: "value must not be empty"}

	// ErrMismatchedHashAndPassword is the bcrypt mismatch outcome
	ErrMismatchedHashAndPassword = &AuthError{Category: CategoryValidation, Message: "password does not match"}

	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password at sign-in, so callers cannot enumerate accounts
	ErrInvalidCredentials = &AuthError{Category: CategoryValidation, Message: "invalid email or password"}

	// ErrEmailTaken rejects a signup or email change against a registered address
	ErrEmailTaken = &AuthError{Category: CategoryValidation, Message: "email already in use"}

	// ErrMissingCredential means no usable Authorization header was present
	ErrMissingCredential = &AuthError{Category: CategoryUnauthorized, Message: "missing or malformed bearer token"}

	// ErrInvalidCredential means the token failed verification or is no
	// longer registered for its account
	ErrInvalidCredential = &AuthError{Category: CategoryUnauthorized, Message: "please authenticate"}

	// ErrTokenExpired is the lazy expiry outcome at validation time
	ErrTokenExpired = &AuthError{Category: CategoryUnauthorized, Message: "token is expired"}

	// ErrTokenMalformed covers signature and structure failures
	ErrTokenMalformed = &AuthError{Category: CategoryUnauthorized, Message: "token is malformed"}

	// ErrForbidden is the role or visibility gate outcome
	ErrForbidden = &AuthError{Category: CategoryForbidden, Message: "access denied"}

	// ErrNotFound means the referenced account does not exist
	ErrNotFound = &AuthError{Category: CategoryNotFound, Message: "account not found"}
)
