package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SessionsRepository is the per-account registry of currently-honored
// tokens. Every mutation is a single-row insert or delete, which is the
// atomic add/remove-by-value primitive the registry needs: two concurrent
// sign-ins both land, and removing one token never rewrites the rest.
type SessionsRepository struct {
	db *bun.DB
}

func NewSessionsRepository(db *bun.DB) *SessionsRepository {
	return &SessionsRepository{db: db}
}

// Add registers a token for the account.
func (r *SessionsRepository) Add(ctx context.Context, userID uuid.UUID, token string) error {
	record := &SessionToken{
		ID:     uuid.New(),
		UserID: userID,
		Token:  token,
	}
	_, err := r.db.NewInsert().Model(record).Exec(ctx)
	return err
}

// Remove drops one token for the account. Removing a token that is
// already gone is a no-op, not an error.
func (r *SessionsRepository) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.db.NewDelete().
		Model((*SessionToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.token = ?", token).
		Exec(ctx)
	return err
}

// Clear empties the registry for the account ("sign out everywhere").
func (r *SessionsRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*SessionToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	return err
}

// Exists reports whether the token is currently registered for the account.
func (r *SessionsRepository) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	return r.db.NewSelect().
		Model((*SessionToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.token = ?", token).
		Exists(ctx)
}

// Count returns how many tokens the account currently holds.
func (r *SessionsRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*SessionToken)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Count(ctx)
}
