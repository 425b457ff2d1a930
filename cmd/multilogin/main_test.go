package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/multilogin/internal/security/admintoken"
)

type recorded struct {
	Method, Path, Auth, Body string
}

func fakeAPI(t *testing.T, status int, resp string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{r.Method, r.URL.Path, r.Header.Get("Authorization"), string(b)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBlocksList_Text(t *testing.T) {
	srv, calls := fakeAPI(t, http.StatusOK, `{"blocks":[{"id":"b1","region":"sidebar_first","weight":2,
		"settings":{"enable_standard_login":true,"social_providers":{"social_auth_google":{"enabled":true}}}}]}`)

	out, err := run(t, "--admin-url", srv.URL, "--token", "tok", "--out", "text", "blocks", "list")
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodGet, (*calls)[0].Method)
	assert.Equal(t, "/admin/blocks", (*calls)[0].Path)
	assert.Equal(t, "Bearer tok", (*calls)[0].Auth)
	assert.Contains(t, out, "b1")
	assert.Contains(t, out, "sidebar_first")
}

func TestBlocksPlace(t *testing.T) {
	srv, calls := fakeAPI(t, http.StatusCreated, `{"id":"new"}`)

	_, err := run(t, "--admin-url", srv.URL, "blocks", "place", "--region", "header", "--weight", "3")
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPost, (*calls)[0].Method)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte((*calls)[0].Body), &body))
	assert.Equal(t, "header", body["region"])
	assert.EqualValues(t, 3, body["weight"])
}

func TestBlocksConfigure_FromFile(t *testing.T) {
	srv, calls := fakeAPI(t, http.StatusOK, `{"id":"b1"}`)
	f := filepath.Join(t.TempDir(), "form.json")
	require.NoError(t, os.WriteFile(f, []byte(`{"standard_login":{"enable_standard_login":true}}`), 0o600))

	_, err := run(t, "--admin-url", srv.URL, "blocks", "configure", "b1", "-f", f)
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, "/admin/blocks/b1/form", (*calls)[0].Path)
	assert.JSONEq(t, `{"standard_login":{"enable_standard_login":true}}`, (*calls)[0].Body)
}

func TestModuleEnable(t *testing.T) {
	srv, calls := fakeAPI(t, http.StatusOK, `{"id":"social_auth_google","enabled":true,"modules":["social_auth_google"]}`)

	out, err := run(t, "--admin-url", srv.URL, "module", "enable", "social_auth_google")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, (*calls)[0].Method)
	assert.Equal(t, "/admin/modules/social_auth_google", (*calls)[0].Path)
	assert.Contains(t, out, "enabled=true")
}

func TestAPIError_Surfaces(t *testing.T) {
	srv, _ := fakeAPI(t, http.StatusNotFound, `{"code":"BLOCK_NOT_FOUND","message":"block not found"}`)

	_, err := run(t, "--admin-url", srv.URL, "blocks", "get", "zzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLOCK_NOT_FOUND")
}

func TestTokenIssue(t *testing.T) {
	secret := strings.Repeat("s", 32)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("admin:\n  jwt_secret: "+secret+"\n  issuer: ml-test\n"), 0o600))

	out, err := run(t, "--config", cfgPath, "token", "issue", "--sub", "ops")
	require.NoError(t, err)

	tok := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	iss, err := admintoken.NewIssuer(secret, "ml-test", 0)
	require.NoError(t, err)
	claims, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.True(t, claims.IsAdmin())
}

func TestMigrate_FS(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  driver: fs\n  fs_root: "+filepath.Join(dir, "blocks")+"\n"), 0o600))

	out, err := run(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "storage fs up to date")
}
