package app

import (
	"context"
	"testing"

	"github.com/marketpulse/marketpulse/backend/go-services/internal/config"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeps_UnconfiguredGitHubIsNil(t *testing.T) {
	a := &App{Config: &config.Config{}}
	assert.Nil(t, a.Deps().GitHub)

	a.GitHub = oauth.NewGitHub(config.GitHubConfig{ClientID: "id", ClientSecret: "secret"})
	assert.NotNil(t, a.Deps().GitHub)
}

func TestBuildStores_InMemory(t *testing.T) {
	a := &App{Config: &config.Config{}}
	a.buildStores(nil)
	require.NotNil(t, a.Articles)
	require.NotNil(t, a.Sessions)

	u, err := a.Users.Register(context.Background(), "ivy", "ivy@example.com", "pw")
	require.NoError(t, err)
	tok, err := a.Sessions.Create(context.Background(), u.ID.Hex())
	require.NoError(t, err)
	s, err := a.Sessions.Validate(context.Background(), tok)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestBuildIngest_WithoutKeysIsNotConfigured(t *testing.T) {
	a := &App{Config: &config.Config{}}
	a.buildStores(nil)
	svc := a.buildIngest(context.Background(), nil)
	assert.False(t, svc.Configured())
	runs, err := svc.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
