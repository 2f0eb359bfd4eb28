package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"authgate/internal/auth"
	"authgate/internal/users"
)

func protectedProbe(t *testing.T, directory users.Directory) http.Handler {
	t.Helper()
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	mw := newAuthMiddleware(codec, directory, discardLogger())
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			t.Error("expected user in request context")
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthMiddlewareRejectsMissingCookie(t *testing.T) {
	handler := protectedProbe(t, &directoryStub{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	handler := protectedProbe(t, &directoryStub{})

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "not-a-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewareRejectsUnknownUser(t *testing.T) {
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	token, err := codec.Mint(uuid.New())
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	handler := newAuthMiddleware(codec, &directoryStub{}, discardLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected handler not to be reached")
		}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for a session referencing no user, got %d", rec.Code)
	}
}

func TestAuthMiddlewareRejectsOnDirectoryError(t *testing.T) {
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	token, err := codec.Mint(uuid.New())
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	directory := &directoryStub{
		findByID: func(context.Context, uuid.UUID) (*users.User, error) {
			return nil, errors.New("database unreachable")
		},
	}
	handler := newAuthMiddleware(codec, directory, discardLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected handler not to be reached")
		}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewarePassesValidSession(t *testing.T) {
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	userID := uuid.New()
	token, err := codec.Mint(userID)
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	directory := &directoryStub{
		findByID: func(_ context.Context, id uuid.UUID) (*users.User, error) {
			if id != userID {
				t.Errorf("expected lookup for %s, got %s", userID, id)
			}
			return &users.User{ID: id, Email: "ada@example.com"}, nil
		},
	}

	handler := newAuthMiddleware(codec, directory, discardLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil || user.ID != userID {
				t.Errorf("expected user %s in context, got %+v", userID, user)
			}
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
