package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UsersRepository persists account records.
type UsersRepository struct {
	db *bun.DB
}

func NewUsersRepository(db *bun.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create inserts a new account, filling defaults for id and role and
// normalizing the email.
func (r *UsersRepository) Create(ctx context.Context, user *User) (*User, error) {
	prepareUserDefaults(user)

	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UsersRepository) GetByGoogleID(ctx context.Context, googleID string) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.google_id = ?", googleID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update writes the named columns of the record plus updated_at. Callers
// pass explicit columns so unrelated fields are never silently rewritten.
func (r *UsersRepository) Update(ctx context.Context, user *User, columns ...string) (*User, error) {
	user.UpdatedAt = time.Now()

	q := r.db.NewUpdate().
		Model(user).
		WherePK().
		Column("updated_at")

	for _, col := range columns {
		q = q.Column(col)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return user, nil
}

func (r *UsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

// ListPublic returns every account whose profile is public.
func (r *UsersRepository) ListPublic(ctx context.Context) ([]*User, error) {
	users := []*User{}
	err := r.db.NewSelect().
		Model(&users).
		Where("?TableAlias.is_profile_public = ?", true).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	record.Email = NormalizeEmail(record.Email)
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
