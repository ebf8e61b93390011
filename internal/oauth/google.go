package oauth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/users"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer  = "https://accounts.google.com"
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// Google signs users in with the authorization-code flow.
type Google struct {
	conf        *oauth2.Config
	userInfoURL string
	// verifier checks the id_token when the token response carries one; nil skips it.
	verifier *oidc.IDTokenVerifier
}

// NewGoogle builds the provider. Google's signing keys are fetched lazily on
// first verification, so no network access happens here.
func NewGoogle(ctx context.Context, c config.GoogleConfig) *Google {
	g := &Google{
		conf: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		userInfoURL: c.UserInfoURL,
	}
	if c.ClientID != "" {
		keys := oidc.NewRemoteKeySet(ctx, googleJWKSURL)
		g.verifier = oidc.NewVerifier(googleIssuer, keys, &oidc.Config{ClientID: c.ClientID})
	}
	return g
}

func (g *Google) Configured() bool {
	return g.conf.ClientID != "" && g.conf.ClientSecret != ""
}

// AuthURL asks for offline access and always shows the consent screen.
func (g *Google) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

type googleUserInfo struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Locale     string `json:"locale"`
}

func (g *Google) Identity(ctx context.Context, code string) (users.Identity, error) {
	if !g.Configured() {
		return users.Identity{}, ErrNotConfigured
	}
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return users.Identity{}, fmt.Errorf("google exchange: %w", err)
	}

	var info googleUserInfo
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" && g.verifier != nil {
		idt, err := g.verifier.Verify(ctx, raw)
		if err != nil {
			return users.Identity{}, fmt.Errorf("google id_token: %w", err)
		}
		if err := idt.Claims(&info); err != nil {
			return users.Identity{}, fmt.Errorf("google id_token claims: %w", err)
		}
	}

	// userinfo is authoritative for profile fields
	var ui googleUserInfo
	if err := getJSON(ctx, g.conf, tok, g.userInfoURL, &ui); err != nil {
		return users.Identity{}, fmt.Errorf("google userinfo: %w", err)
	}
	merge(&info, ui)
	if info.Email == "" {
		return users.Identity{}, fmt.Errorf("google userinfo: no email")
	}
	return users.Identity{
		Email:      info.Email,
		Name:       info.Name,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
		Locale:     info.Locale,
		Provider:   models.ProviderGoogle,
	}, nil
}

func merge(dst *googleUserInfo, src googleUserInfo) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Email, src.Email)
	set(&dst.Name, src.Name)
	set(&dst.GivenName, src.GivenName)
	set(&dst.FamilyName, src.FamilyName)
	set(&dst.Picture, src.Picture)
	set(&dst.Locale, src.Locale)
}
