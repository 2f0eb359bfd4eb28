package users

import (
	"context"

	"github.com/google/uuid"

	"authgate/internal/auth"
)

// Directory is the durable store of users keyed by Google subject id.
type Directory interface {
	// FindByID returns the user with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// UpsertFromClaims atomically inserts a user for a new subject id or
	// updates the mutable profile fields (email, names, picture) of the
	// existing row, and returns the resulting user. The row's id and
	// creation timestamp never change after the first insert.
	UpsertFromClaims(ctx context.Context, claims auth.Claims) (User, error)
}
