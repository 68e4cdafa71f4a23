package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/identity-sdk-go/internal/user/entity"
)

// UserRepo provides data access for the identity_users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the identity_users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS identity_users (
  id BIGINT PRIMARY KEY,
  auth0_user_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  picture_url TEXT NOT NULL,
  time_joined TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// GetByID returns the user with the given id or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT id, auth0_user_id, name, picture_url, time_joined FROM identity_users WHERE id=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertAuth0 inserts u, or refreshes name and picture of the existing row
// with the same auth0_user_id. The stored row is returned; on update the
// first id and time_joined are kept.
func (r *UserRepo) UpsertAuth0(ctx context.Context, u *entity.User) (*entity.User, error) {
	const q = `INSERT INTO identity_users (id, auth0_user_id, name, picture_url, time_joined)
		  VALUES (:id, :auth0_user_id, :name, :picture_url, :time_joined)
		  ON CONFLICT (auth0_user_id) DO UPDATE SET name = EXCLUDED.name, picture_url = EXCLUDED.picture_url
		  RETURNING id, auth0_user_id, name, picture_url, time_joined`
	rows, err := r.db.NamedQueryContext(ctx, q, u)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("no row returned")
	}
	var out entity.User
	if err := rows.StructScan(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
