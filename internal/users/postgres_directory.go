package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"authgate/internal/auth"
)

// PostgresDirectory implements Directory using PostgreSQL.
type PostgresDirectory struct {
	db *sqlx.DB
}

// NewPostgresDirectory creates a new PostgresDirectory.
func NewPostgresDirectory(db *sqlx.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// FindByID looks up a user by its generated identifier.
func (d *PostgresDirectory) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	const query = `
		SELECT id, google_id, email, given_name, family_name, picture_url, is_admin, created_at
		FROM users
		WHERE id = $1
	`

	var row userRow
	if err := d.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user := row.toUser()
	return &user, nil
}

// UpsertFromClaims inserts or updates the user for the claims' subject id.
// The unique constraint on google_id makes concurrent first logins collapse
// into a single row; on conflict the mutable profile fields take the values
// of the last writer.
func (d *PostgresDirectory) UpsertFromClaims(ctx context.Context, claims auth.Claims) (User, error) {
	const query = `
		INSERT INTO users (id, google_id, email, given_name, family_name, picture_url)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		ON CONFLICT (google_id) DO UPDATE SET
			email = EXCLUDED.email,
			given_name = EXCLUDED.given_name,
			family_name = EXCLUDED.family_name,
			picture_url = EXCLUDED.picture_url
		RETURNING id, google_id, email, given_name, family_name, picture_url, is_admin, created_at
	`

	var row userRow
	err := d.db.GetContext(ctx, &row, query,
		uuid.New(),
		claims.Sub,
		claims.Email,
		claims.GivenName,
		claims.FamilyName,
		claims.Picture,
	)
	if err != nil {
		return User{}, err
	}

	return row.toUser(), nil
}

// userRow is a database row representation of User.
type userRow struct {
	ID         uuid.UUID      `db:"id"`
	GoogleID   string         `db:"google_id"`
	Email      string         `db:"email"`
	GivenName  sql.NullString `db:"given_name"`
	FamilyName sql.NullString `db:"family_name"`
	PictureURL sql.NullString `db:"picture_url"`
	IsAdmin    bool           `db:"is_admin"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r *userRow) toUser() User {
	return User{
		ID:         r.ID,
		GoogleID:   r.GoogleID,
		Email:      r.Email,
		GivenName:  r.GivenName.String,
		FamilyName: r.FamilyName.String,
		PictureURL: r.PictureURL.String,
		IsAdmin:    r.IsAdmin,
		CreatedAt:  r.CreatedAt,
	}
}
