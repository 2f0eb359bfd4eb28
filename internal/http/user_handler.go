package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// UserHandler exposes the authenticated caller's profile.
type UserHandler struct{}

// NewUserHandler creates a new UserHandler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

type userProfile struct {
	ID         uuid.UUID `json:"id"`
	GivenName  string    `json:"given_name"`
	FamilyName string    `json:"family_name"`
	PictureURL string    `json:"picture_url"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

// Me handles GET /v1/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, userProfile{
		ID:         user.ID,
		GivenName:  user.GivenName,
		FamilyName: user.FamilyName,
		PictureURL: user.PictureURL,
		Email:      user.Email,
		CreatedAt:  user.CreatedAt,
	})
}
