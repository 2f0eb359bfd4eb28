package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"authgate/internal/auth"
	"authgate/internal/config"
	"authgate/internal/metrics"
	"authgate/internal/users"
)

type fakeProvider struct {
	authURLBase   string
	exchangeCalls int
	exchangeRaw   string
	exchangeErr   error
	verifyClaims  *auth.Claims
	verifyErr     error
}

func (f *fakeProvider) AuthURL(state string) string {
	if f.authURLBase == "" {
		f.authURLBase = "https://accounts.google.com/o/oauth2/v2/auth?state="
	}
	return f.authURLBase + state
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code string) (string, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	if f.exchangeRaw != "" {
		return f.exchangeRaw, nil
	}
	return "raw-id-token", nil
}

func (f *fakeProvider) VerifyIDToken(_ context.Context, _ string) (*auth.Claims, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if f.verifyClaims != nil {
		return f.verifyClaims, nil
	}
	return &auth.Claims{Sub: "sub-1", Email: "user@example.com"}, nil
}

type directoryStub struct {
	findByID func(ctx context.Context, id uuid.UUID) (*users.User, error)
	upsert   func(ctx context.Context, claims auth.Claims) (users.User, error)
}

func (d *directoryStub) FindByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	if d.findByID != nil {
		return d.findByID(ctx, id)
	}
	return nil, users.ErrNotFound
}

func (d *directoryStub) UpsertFromClaims(ctx context.Context, claims auth.Claims) (users.User, error) {
	if d.upsert != nil {
		return d.upsert(ctx, claims)
	}
	return users.User{
		ID:        uuid.New(),
		GoogleID:  claims.Sub,
		Email:     claims.Email,
		CreatedAt: time.Now(),
	}, nil
}

func testConfig() config.Config {
	return config.Config{
		Environment:           config.EnvDevelopment,
		SessionTTL:            time.Hour,
		FrontendURL:           "http://frontend.test",
		FrontendOAuthErrorURL: "http://frontend.test/oauth-error",
		AllowedOrigins:        []string{"http://frontend.test"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOAuthHandler(provider identityProvider, directory users.Directory) (*OAuthHandler, *auth.TokenCodec) {
	codec := auth.NewTokenCodec("test-secret", time.Hour)
	return NewOAuthHandler(provider, directory, codec, metrics.NewCollector(), testConfig(), discardLogger()), codec
}

func contextWithUser(r *http.Request, user *users.User) context.Context {
	return context.WithValue(r.Context(), userContextKey, user)
}

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
