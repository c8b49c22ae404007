// Package account implements the user-account backend: registration,
// credential and Google OAuth sign-in, bearer-token sessions with
// server-side revocation, profile editing with an allow-listed field set,
// avatar references, and role/visibility authorization.
//
// A bearer token is honored only while it both verifies against the
// TokenService and remains in the account's session registry; removing it
// from the registry (sign-out, sign-out-all, account deletion) revokes it
// immediately, independent of its expiry.
package account
