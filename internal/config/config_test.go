package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  env: staging
server:
  addr: ":9090"
storage:
  driver: sqlite
  dsn: "file:blocks.db"
cache:
  kind: redis
  ttl: 30s
  redis:
    addr: "127.0.0.1:6379"
admin:
  jwt_secret: "0123456789abcdef0123456789abcdef"
  enforce: true
social_auth:
  networks:
    google: "https://accounts.google.com/o/oauth2/v2/auth"
modules:
  seed: [social_auth_google]
ui:
  editable_labels: false
  default_locale: fr
  locales: [en, fr]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "fs", c.Storage.Driver)
	assert.True(t, c.UI.EditableLabels)
	assert.True(t, c.SocialAuth.Enabled)
	assert.Equal(t, "/user/login/{network}", c.SocialAuth.RoutePattern)
	assert.Equal(t, "dev", c.Log.Env)
	require.NoError(t, c.Validate())
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, 30*time.Second, c.Cache.TTL)
	assert.Equal(t, "sqlite", c.Storage.Driver)
	assert.False(t, c.UI.EditableLabels)
	assert.Equal(t, []string{"fr", "en"}, c.Locales())
	// defaults que el YAML no toca
	assert.Equal(t, time.Minute, c.Rate.Window)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/v2/auth", c.SocialAuth.Networks["google"])
	require.NoError(t, c.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MULTILOGIN_SERVER_ADDR", ":7000")
	t.Setenv("MULTILOGIN_UI_EDITABLE_LABELS", "false")
	t.Setenv("MULTILOGIN_SOCIAL_AUTH_NETWORKS", "google=https://g.example/auth; github=https://gh.example/authorize")
	t.Setenv("MULTILOGIN_ADMIN_SUBS", "alice, bob")
	t.Setenv("MULTILOGIN_RATE_WINDOW", "10s")

	c, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, ":7000", c.Server.Addr)
	assert.False(t, c.UI.EditableLabels)
	assert.Equal(t, map[string]string{
		"google": "https://g.example/auth",
		"github": "https://gh.example/authorize",
	}, c.SocialAuth.Networks)
	assert.Equal(t, []string{"alice", "bob"}, c.Admin.Subs)
	assert.Equal(t, 10*time.Second, c.Rate.Window)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("MULTILOGIN_RATE_ENABLED", "maybe")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MULTILOGIN_RATE_ENABLED")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_Errors(t *testing.T) {
	c := Default()
	c.Storage.Driver = "mongo"
	c.Cache.Kind = "redis"
	c.Admin.Enforce = true
	c.Admin.JWTSecret = "short"
	c.SocialAuth.RoutePattern = "/user/login"
	c.SocialAuth.Networks = map[string]string{"Bad Key": "ftp://x", "google": "/relative"}
	c.Modules.Seed = []string{"social_auth_myspace"}

	err := c.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		`storage.driver "mongo"`,
		"cache.redis.addr",
		"jwt_secret",
		"{network}",
		`invalid network key "Bad Key"`,
		"social_auth.networks.google",
		"social_auth_myspace",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidate_ProdRequiresEnforce(t *testing.T) {
	c := Default()
	c.App.Env = "prod"
	require.ErrorContains(t, c.Validate(), "admin.enforce")

	c.Admin.Enforce = true
	c.Admin.JWTSecret = "0123456789abcdef0123456789abcdef"
	require.NoError(t, c.Validate())
}
