package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/multilogin/internal/config"
	"github.com/dropDatabas3/multilogin/internal/modules"
	_ "github.com/dropDatabas3/multilogin/internal/store/adapters/all"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Driver = "fs"
	cfg.Storage.FSRoot = filepath.Join(dir, "blocks")
	cfg.Modules.File = filepath.Join(dir, "modules.yaml")
	cfg.SocialAuth.Networks = map[string]string{
		"google": "https://accounts.example.com/o/oauth2/auth",
	}
	return cfg
}

func newContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	c, err := New(context.Background(), cfg, Options{
		Registerer: prometheus.NewRegistry(),
		Modules:    modules.NewStatic("social_auth_google", "social_auth_github"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestContainer_EndToEnd(t *testing.T) {
	c := newContainer(t, testConfig(t))
	h := c.Handler

	rec := do(t, h, http.MethodPost, "/admin/blocks", `{"region":"sidebar_first"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var blk struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blk))
	require.NotEmpty(t, blk.ID)

	submit := `{
		"standard_login": {"enable_standard_login": true, "standard_label": "Password"},
		"social_providers_wrapper": {
			"social_auth_google": {"enabled": true, "open_default": true},
			"social_auth_github": {"enabled": true}
		}
	}`
	rec = do(t, h, http.MethodPost, "/admin/blocks/"+blk.ID+"/form", submit)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/blocks/"+blk.ID+"/login-methods", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lm struct {
		Methods []struct {
			ID        string `json:"id"`
			Label     string `json:"label"`
			TargetURL string `json:"target_url"`
		} `json:"methods"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lm))
	// github no tiene integración configurada: se omite
	require.Len(t, lm.Methods, 2)
	assert.Equal(t, "standard", lm.Methods[0].ID)
	assert.Equal(t, "Password", lm.Methods[0].Label)
	assert.Equal(t, "google", lm.Methods[1].ID)
	assert.Equal(t, "/user/login/google", lm.Methods[1].TargetURL)

	rec = do(t, h, http.MethodGet, "/blocks/"+blk.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/user/login/google")

	rec = do(t, h, http.MethodGet, "/user/login/google", "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.example.com/o/oauth2/auth", rec.Header().Get("Location"))
}

func TestContainer_Ops(t *testing.T) {
	c := newContainer(t, testConfig(t))

	rec := do(t, c.Handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, c.Handler, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, c.Handler, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, c.Handler, http.MethodGet, "/static/help-popup.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContainer_UnknownBlock(t *testing.T) {
	c := newContainer(t, testConfig(t))
	rec := do(t, c.Handler, http.MethodGet, "/blocks/missing/login-methods", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContainer_SeparateMetricsAddr(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.MetricsAddr = ":9090"
	c := newContainer(t, cfg)

	rec := do(t, c.Handler, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, c.MetricsHandler)
}

func TestContainer_AdminEnforced(t *testing.T) {
	cfg := testConfig(t)
	cfg.Admin.Enforce = true
	cfg.Admin.JWTSecret = strings.Repeat("k", 32)
	c := newContainer(t, cfg)
	require.NotNil(t, c.Issuer)

	rec := do(t, c.Handler, http.MethodGet, "/admin/blocks", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _, err := c.Issuer.Issue("ops", "multilogin:admin")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/blocks", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	c.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestContainer_BadStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "nope"
	_, err := New(context.Background(), cfg, Options{Registerer: prometheus.NewRegistry()})
	require.Error(t, err)
}
