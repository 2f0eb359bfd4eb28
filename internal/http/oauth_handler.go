package http

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"authgate/internal/auth"
	"authgate/internal/config"
	"authgate/internal/users"
)

const (
	sessionCookieName    = "access_token"
	oauthStateCookieName = "oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
)

// identityProvider is the slice of auth.GoogleProvider the flow needs; each
// network-touching step is substitutable in tests.
type identityProvider interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	VerifyIDToken(ctx context.Context, rawIDToken string) (*auth.Claims, error)
}

type loginMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
}

// OAuthHandler drives the Google login flow: initiation, callback, logout.
//
// Every callback failure, whatever the step, funnels into the same redirect
// to the configured error URL so the browser never learns which check broke;
// the distinguishing reason goes to the log and the failure counter.
type OAuthHandler struct {
	provider  identityProvider
	directory users.Directory
	tokens    *auth.TokenCodec
	metrics   loginMetrics
	logger    *slog.Logger

	secureCookie bool
	sessionTTL   time.Duration
	successURL   string
	errorURL     string
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(provider identityProvider, directory users.Directory, tokens *auth.TokenCodec, metrics loginMetrics, cfg config.Config, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		provider:     provider,
		directory:    directory,
		tokens:       tokens,
		metrics:      metrics,
		logger:       logger,
		secureCookie: cfg.IsProduction(),
		sessionTTL:   cfg.SessionTTL,
		successURL:   cfg.FrontendURL,
		errorURL:     cfg.FrontendOAuthErrorURL,
	}
}

// Login handles GET /v1/auth/google/login.
// Issues a CSRF state cookie and redirects to Google's consent screen.
func (h *OAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate oauth state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, h.stateCookie(state))
	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusSeeOther)
}

// Callback handles GET /v1/auth/google/callback.
// Validates the CSRF state, exchanges the code, verifies the identity token,
// upserts the user, and issues the session cookie.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider returned error", "error", errParam)
		h.failLogin(w, r, "provider_error")
		return
	}

	code := query.Get("code")
	if code == "" {
		h.logger.Warn("oauth callback: missing authorization code")
		h.failLogin(w, r, "missing_code")
		return
	}

	// The state check runs before any call to Google.
	state := query.Get("state")
	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || state == "" ||
		subtle.ConstantTimeCompare([]byte(state), []byte(stateCookie.Value)) != 1 {
		h.logger.Warn("oauth callback: state mismatch")
		h.failLogin(w, r, "state_mismatch")
		return
	}

	rawIDToken, err := h.provider.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: code exchange failed", "error", err)
		h.failLogin(w, r, "exchange_failed")
		return
	}

	claims, err := h.provider.VerifyIDToken(r.Context(), rawIDToken)
	if err != nil {
		h.logger.Error("oauth callback: id_token verification failed", "error", err)
		h.failLogin(w, r, "verification_failed")
		return
	}

	user, err := h.directory.UpsertFromClaims(r.Context(), *claims)
	if err != nil {
		h.logger.Error("oauth callback: user upsert failed", "error", err)
		h.failLogin(w, r, "directory_error")
		return
	}

	token, err := h.tokens.Mint(user.ID)
	if err != nil {
		h.logger.Error("oauth callback: session mint failed", "error", err)
		h.failLogin(w, r, "session_mint_failed")
		return
	}

	h.clearStateCookie(w)
	http.SetCookie(w, h.sessionCookie(token, h.sessionTTL))
	h.metrics.RecordLoginSuccess()
	h.logger.Info("oauth login succeeded", "user_id", user.ID, "email", user.Email)

	http.Redirect(w, r, h.successURL, http.StatusSeeOther)
}

// Logout handles POST /v1/auth/logout.
// Clears the session cookie without validating it; it never fails.
func (h *OAuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	clearCookie := h.sessionCookie("", 0)
	clearCookie.MaxAge = -1
	clearCookie.Expires = time.Unix(0, 0)

	http.SetCookie(w, clearCookie)
	w.WriteHeader(http.StatusNoContent)
}

// failLogin records the internal failure reason and degrades to the opaque
// error redirect, clearing the state cookie on the way out.
func (h *OAuthHandler) failLogin(w http.ResponseWriter, r *http.Request, reason string) {
	h.metrics.RecordLoginFailure(reason)
	h.clearStateCookie(w)
	http.Redirect(w, r, h.errorURL, http.StatusSeeOther)
}

func (h *OAuthHandler) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}

func (h *OAuthHandler) stateCookie(state string) *http.Cookie {
	return &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateCookieTTL.Seconds()),
	}
}

func (h *OAuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
