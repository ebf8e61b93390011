package oauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/users"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPI = "https://api.github.com"

// GitHub signs users in with a GitHub account. Users are keyed by
// "<login>@github.com" so a GitHub sign-in never merges into a Google account.
type GitHub struct {
	conf   *oauth2.Config
	apiURL string
}

func NewGitHub(c config.GitHubConfig) *GitHub {
	return &GitHub{
		conf: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"user:email"},
		},
		apiURL: githubAPI,
	}
}

func (g *GitHub) Configured() bool {
	return g.conf.ClientID != "" && g.conf.ClientSecret != ""
}

func (g *GitHub) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

type githubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (g *GitHub) Identity(ctx context.Context, code string) (users.Identity, error) {
	if !g.Configured() {
		return users.Identity{}, ErrNotConfigured
	}
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return users.Identity{}, fmt.Errorf("github exchange: %w", err)
	}
	var u githubUser
	if err := getJSON(ctx, g.conf, tok, g.apiURL+"/user", &u); err != nil {
		return users.Identity{}, fmt.Errorf("github user: %w", err)
	}
	if u.Login == "" {
		return users.Identity{}, fmt.Errorf("github user: empty login")
	}
	name := u.Name
	if name == "" {
		name = u.Login
	}
	given, family := splitName(name)
	return users.Identity{
		Email:      strings.ToLower(u.Login) + "@github.com",
		Name:       name,
		GivenName:  given,
		FamilyName: family,
		Picture:    u.AvatarURL,
		Username:   u.Login,
		Provider:   models.ProviderGitHub,
	}, nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
