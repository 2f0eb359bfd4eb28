package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// providerTimeout bounds every call to Google so a slow provider cannot hold
// a callback request indefinitely.
const providerTimeout = 8 * time.Second

// Claims holds the identity claims extracted from a verified Google ID token.
// Unrecognized fields are ignored; sub and email are required.
type Claims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

func (c *Claims) validate() error {
	if c.Sub == "" {
		return errors.New("id_token missing sub claim")
	}
	if c.Email == "" {
		return errors.New("id_token missing email claim")
	}
	return nil
}

// GoogleProvider performs the OAuth 2.0 authorization-code exchange against
// Google and verifies the resulting ID tokens.
type GoogleProvider struct {
	config     *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	httpClient *http.Client
}

// NewGoogleProvider discovers Google's OIDC configuration and returns a
// client bound to the given OAuth credentials.
func NewGoogleProvider(ctx context.Context, clientID, clientSecret, redirectURI string) (*GoogleProvider, error) {
	httpClient := &http.Client{Timeout: providerTimeout}

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, httpClient), googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier:   provider.Verifier(&oidc.Config{ClientID: clientID}),
		httpClient: httpClient,
	}, nil
}

// AuthURL builds the Google consent URL carrying the CSRF state.
func (g *GoogleProvider) AuthURL(state string) string {
	return g.config.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// ExchangeCode trades the authorization code for tokens and returns the raw
// ID token. Any transport failure or non-success status from Google's token
// endpoint is an error.
func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("no id_token in token response")
	}
	return rawIDToken, nil
}

// VerifyIDToken verifies the ID token's signature against Google's published
// keys, checks the audience, and extracts the identity claims.
func (g *GoogleProvider) VerifyIDToken(ctx context.Context, rawIDToken string) (*Claims, error) {
	idToken, err := g.verifier.Verify(oidc.ClientContext(ctx, g.httpClient), rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if err := claims.validate(); err != nil {
		return nil, err
	}
	return &claims, nil
}

// GenerateState generates a cryptographically secure random CSRF state.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
