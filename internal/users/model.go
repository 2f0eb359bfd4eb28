package users

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no user matches a lookup.
var ErrNotFound = errors.New("user not found")

// User is a persistent account created on first successful Google login.
// GoogleID is the provider's stable subject identifier and never changes;
// repeated logins refresh the mutable profile fields only.
type User struct {
	ID         uuid.UUID
	GoogleID   string
	Email      string
	GivenName  string
	FamilyName string
	PictureURL string
	IsAdmin    bool
	CreatedAt  time.Time
}
