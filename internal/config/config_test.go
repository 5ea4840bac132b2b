package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("PRIVATE_REPOS_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Token)
	assert.Equal(t, "joaosnet", cfg.PrimaryAccount)
	assert.Equal(t, "joaosnet.github.io", cfg.SelfRepo)
	assert.Equal(t, 4, cfg.ProjectLimit)
	assert.Equal(t, "assets/project-images", cfg.AssetsDir)
	assert.Equal(t, "./assets/css/images/icon.png", cfg.PlaceholderPath)
	assert.Equal(t, "index.html", cfg.IndexPath)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.False(t, cfg.DisableAvatarFallback)
}

func TestLoad_PrefersPrivateReposToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "generic")
	t.Setenv("PRIVATE_REPOS_TOKEN", "private")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "private", cfg.Token)
}

func TestLoad_GenericTokenFallback(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "generic")
	t.Setenv("PRIVATE_REPOS_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "generic", cfg.Token)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORTFOLIO_ACCOUNT", "someone")
	t.Setenv("PORTFOLIO_PROJECT_LIMIT", "6")
	t.Setenv("PORTFOLIO_DISABLE_AVATAR_FALLBACK", "true")
	t.Setenv("PORTFOLIO_HTTP_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "someone", cfg.PrimaryAccount)
	assert.Equal(t, 6, cfg.ProjectLimit)
	assert.True(t, cfg.DisableAvatarFallback)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestValidate(t *testing.T) {
	cfg := &Config{PrimaryAccount: "x", ProjectLimit: 4, Timeout: time.Second}
	require.NoError(t, cfg.Validate())

	cfg.ProjectLimit = -1
	err := cfg.Validate()
	require.Error(t, err)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "PORTFOLIO_PROJECT_LIMIT", cerr.Field)
}
