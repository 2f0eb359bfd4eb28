package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"authgate/internal/auth"
)

// InMemoryDirectory stores users in an in-process map, ideal for local
// development or tests. It mirrors the Postgres directory's observable
// semantics, including last-writer-wins on concurrent upserts for the same
// subject id.
type InMemoryDirectory struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]User
	bySubject map[string]uuid.UUID
}

// NewInMemoryDirectory constructs an empty directory.
func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		byID:      make(map[uuid.UUID]User),
		bySubject: make(map[string]uuid.UUID),
	}
}

// FindByID returns a user by its generated identifier.
func (d *InMemoryDirectory) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// UpsertFromClaims inserts a user for a new subject id or refreshes the
// mutable profile fields of the existing one.
func (d *InMemoryDirectory) UpsertFromClaims(_ context.Context, claims auth.Claims) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.bySubject[claims.Sub]; ok {
		user := d.byID[id]
		user.Email = claims.Email
		user.GivenName = claims.GivenName
		user.FamilyName = claims.FamilyName
		user.PictureURL = claims.Picture
		d.byID[id] = user
		return user, nil
	}

	user := User{
		ID:         uuid.New(),
		GoogleID:   claims.Sub,
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		PictureURL: claims.Picture,
		CreatedAt:  time.Now(),
	}
	d.byID[user.ID] = user
	d.bySubject[user.GoogleID] = user.ID
	return user, nil
}
