package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/multilogin/internal/forms"
	"github.com/dropDatabas3/multilogin/internal/helpdoc"
	adminctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/auth"
	blocksctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/blocks"
	helpctrl "github.com/dropDatabas3/multilogin/internal/http/controllers/help"
	"github.com/dropDatabas3/multilogin/internal/http/router"
	adminsvc "github.com/dropDatabas3/multilogin/internal/http/services/admin"
	blockssvc "github.com/dropDatabas3/multilogin/internal/http/services/blocks"
	helpsvc "github.com/dropDatabas3/multilogin/internal/http/services/help"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/modules"
	"github.com/dropDatabas3/multilogin/internal/render"
	"github.com/dropDatabas3/multilogin/internal/resolver"
	"github.com/dropDatabas3/multilogin/internal/routes"
	"github.com/dropDatabas3/multilogin/internal/store"
	_ "github.com/dropDatabas3/multilogin/internal/store/adapters/all"
)

type fixture struct {
	h      http.Handler
	blocks *store.Blocks
}

func newFixture(t *testing.T, helpBody string) *fixture {
	t.Helper()
	conn, err := store.OpenAdapter(context.Background(), store.AdapterConfig{Name: "fs", FSRoot: filepath.Join(t.TempDir(), "blocks")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	blocks := store.NewBlocks(conn.Blocks())

	reg := routes.NewRegistry()
	redirects := routes.NetworkRedirects{Routes: reg, Networks: map[string]string{"google": "https://accounts.example.com/auth"}}
	mods := modules.NewStatic("social_auth_google")

	renderer, err := render.New("/user/login", router.HelpPath, router.StaticPrefix)
	require.NoError(t, err)
	bundle, err := i18n.NewBundle("en", "fr", "es")
	require.NoError(t, err)

	bs := blockssvc.NewBlockService(blockssvc.Deps{
		Blocks:   blocks,
		Modules:  mods,
		Resolver: resolver.New(redirects, nil, true),
		Renderer: renderer,
	})
	as := adminsvc.NewAdminService(adminsvc.Deps{
		Blocks:    blocks,
		Modules:   mods,
		Redirects: redirects,
		Options:   forms.Options{EditableLabels: true},
	})

	var fetcher helpsvc.Fetcher
	if helpBody != "" {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(helpBody))
		}))
		t.Cleanup(upstream.Close)
		fetcher = helpdoc.NewFetcher(upstream.URL, 0)
	}

	h := router.New(router.Deps{
		Routes: reg,
		Controllers: router.Controllers{
			Blocks: blocksctrl.NewBlocksController(bs, renderer),
			Login:  authctrl.NewLoginController(bs, renderer, redirects),
			Help:   helpctrl.NewHelpController(helpsvc.NewHelpService(fetcher)),
			Admin:  adminctrl.NewAdminController(as, renderer, router.AdminIndexPath, true),
		},
		I18n:           bundle,
		SocialRedirect: true,
	})
	return &fixture{h: h, blocks: blocks}
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) place(t *testing.T) string {
	t.Helper()
	blk, err := f.blocks.Place(context.Background(), "sidebar_first", 0)
	require.NoError(t, err)
	return blk.ID
}

func TestRender_FragmentVsPage(t *testing.T) {
	f := newFixture(t, "")
	id := f.place(t)

	rec := f.serve(httptest.NewRequest(http.MethodGet, "/blocks/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), `class="multi-login-block"`)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'self'")

	req := httptest.NewRequest(http.MethodGet, "/blocks/"+id, nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec = f.serve(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<div class="multi-login-block"`))
}

func TestAdminIndex_NotPlaced(t *testing.T) {
	f := newFixture(t, "")
	rec := f.serve(httptest.NewRequest(http.MethodGet, router.AdminIndexPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not yet placed")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAdminForm_HTMLSubmitRedirects(t *testing.T) {
	f := newFixture(t, "")
	id := f.place(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/blocks/"+id+"/form", nil)
	req.Header.Set("Accept", "text/html")
	rec := f.serve(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="social_providers_wrapper[social_auth_google][enabled]"`)

	form := url.Values{}
	form.Set("standard_login[enable_standard_login]", "1")
	form.Set("social_providers_wrapper[social_auth_google][enabled]", "1")
	form.Set("social_providers_wrapper[social_auth_google][button_text]", "Go")
	req = httptest.NewRequest(http.MethodPost, "/admin/blocks/"+id+"/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = f.serve(req)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, router.AdminIndexPath, rec.Header().Get("Location"))

	blk, err := f.blocks.Get(context.Background(), id)
	require.NoError(t, err)
	g, ok := blk.Settings.Provider("social_auth_google")
	require.True(t, ok)
	assert.Equal(t, "Go", g.ButtonText)
}

func TestAdminForm_HTMLSubmitInvalidRerenders(t *testing.T) {
	f := newFixture(t, "")
	id := f.place(t)

	form := url.Values{}
	form.Set("social_providers_wrapper[social_auth_google][enabled]", "1")
	form.Set("social_providers_wrapper[social_auth_google][network]", "not a network!")
	req := httptest.NewRequest(http.MethodPost, "/admin/blocks/"+id+"/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.serve(req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="multi-login-admin-form"`)
}

func TestAdminForm_JSONSchema(t *testing.T) {
	f := newFixture(t, "")
	id := f.place(t)

	rec := f.serve(httptest.NewRequest(http.MethodGet, "/admin/blocks/"+id+"/form", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		BlockID        string `json:"block_id"`
		EditableLabels bool   `json:"editable_labels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.BlockID)
	assert.True(t, resp.EditableLabels)
}

func TestHelp(t *testing.T) {
	f := newFixture(t, `<html><body><nav>x</nav><main><h2>Need help?</h2></main></body></html>`)
	rec := f.serve(httptest.NewRequest(http.MethodGet, router.HelpPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h2>Need help?</h2>", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=300")
}

func TestHelp_NotConfigured(t *testing.T) {
	f := newFixture(t, "")
	rec := f.serve(httptest.NewRequest(http.MethodGet, router.HelpPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, helpdoc.ErrorFragment, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSocialRedirect(t *testing.T) {
	f := newFixture(t, "")

	rec := f.serve(httptest.NewRequest(http.MethodGet, "/user/login/google", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.example.com/auth", rec.Header().Get("Location"))

	rec = f.serve(httptest.NewRequest(http.MethodGet, "/user/login/myspace", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	f := newFixture(t, "")

	rec := f.serve(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = f.serve(httptest.NewRequest(http.MethodPatch, "/admin/blocks", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLocale_French(t *testing.T) {
	f := newFixture(t, "")
	id := f.place(t)

	req := httptest.NewRequest(http.MethodGet, "/blocks/"+id+"/login-methods?lang=fr", nil)
	rec := f.serve(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fr", rec.Header().Get("Content-Language"))
}
