package forms

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/multilogin/internal/catalog"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/resolver"
)

func fieldByName(t *testing.T, g Group, name string) Field {
	t.Helper()
	for _, f := range g.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %q not found in group %q", name, g.Key)
	return Field{}
}

func hasField(g Group, name string) bool {
	for _, f := range g.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func TestBuild_NoProvidersInstalled(t *testing.T) {
	f := Build(catalog.Known(), types.NewInstalledSet(), types.DefaultBlockSettings(), nil, Options{EditableLabels: true})
	require.Empty(t, f.Social.Groups)
	require.Equal(t, NoProvidersMessage, f.Social.Message)

	en := fieldByName(t, f.Standard, FieldEnableStandard)
	require.Equal(t, "standard_login[enable_standard_login]", en.Path)
	require.Equal(t, true, en.Value)
	require.Equal(t, "Standard login", fieldByName(t, f.Standard, FieldStandardLabel).Value)
}

func TestBuild_EligibleProvidersWithDefaults(t *testing.T) {
	s := types.DefaultBlockSettings()
	s.ProviderSettings["social_auth_github"] = types.ProviderSettings{Enabled: true, CustomURL: "https://gh.example/start"}
	installed := types.NewInstalledSet("social_auth_github", "social_auth_google")

	f := Build(catalog.Known(), installed, s, nil, Options{EditableLabels: true})

	require.Len(t, f.Social.Groups, 2)
	require.Equal(t, "social_auth_google", f.Social.Groups[0].Key)
	require.Equal(t, "social_auth_github", f.Social.Groups[1].Key)

	google := f.Social.Groups[0]
	assert.False(t, google.Open)
	assert.Equal(t, "Enable Google", fieldByName(t, google, FieldEnabled).Title)
	assert.Equal(t, "Login with Google", fieldByName(t, google, FieldLabel).Value)
	assert.Equal(t, "google", fieldByName(t, google, FieldNetwork).Value)
	assert.Equal(t, "Network identifier for the route (e.g., google)", fieldByName(t, google, FieldNetwork).Description)
	assert.Equal(t, resolver.DefaultButtonText, fieldByName(t, google, FieldButtonText).Value)

	gh := f.Social.Groups[1]
	assert.True(t, gh.Open)
	cu := fieldByName(t, gh, FieldCustomURL)
	assert.Equal(t, "https://gh.example/start", cu.Value)
	assert.Equal(t, "social_providers_wrapper[social_auth_github][custom_url]", cu.Path)
	assert.Equal(t, "social_providers_wrapper[social_auth_github][enabled]", cu.VisibleWhen)
}

func TestBuild_LabelsHidden(t *testing.T) {
	f := Build(catalog.Known(), types.NewInstalledSet("social_auth_google"), types.DefaultBlockSettings(), nil, Options{})
	require.False(t, hasField(f.Standard, FieldStandardLabel))
	require.False(t, hasField(f.Social.Groups[0], FieldLabel))
	require.True(t, hasField(f.Social.Groups[0], FieldNetwork))
}

func TestParseValues(t *testing.T) {
	v := url.Values{}
	v.Add("standard_login[enable_standard_login]", "0")
	v.Add("standard_login[enable_standard_login]", "1")
	v.Set("standard_login[standard_label]", "Sign in")
	v.Set("social_providers_wrapper[social_auth_google][enabled]", "on")
	v.Set("social_providers_wrapper[social_auth_google][network]", "google")
	v.Set("social_providers_wrapper[social_auth_google][open_default]", "1")
	v.Set("social_providers_wrapper[social_auth_github][custom_url]", "https://x.example")
	v.Set("form_token", "ignored")

	sub, err := ParseValues(v)
	require.NoError(t, err)
	require.True(t, sub.Standard.Enabled)
	require.Equal(t, "Sign in", sub.Standard.Label)
	require.False(t, sub.Standard.OpenByDefault)

	require.Equal(t, types.ProviderSettings{Enabled: true, Network: "google", OpenByDefault: true}, sub.Providers["social_auth_google"])
	require.Equal(t, types.ProviderSettings{CustomURL: "https://x.example"}, sub.Providers["social_auth_github"])
}

func TestParseValues_BadName(t *testing.T) {
	_, err := ParseValues(url.Values{"standard_login[oops": {"1"}})
	require.ErrorIs(t, err, ErrMalformedSubmission)
}

func TestParseJSON(t *testing.T) {
	body := `{
	  "standard_login": {"enable_standard_login": false, "standard_label": "x", "standard_open_default": true},
	  "social_providers_wrapper": {"social_auth_google": {"enabled": true, "button_text": "Go"}}
	}`
	sub, err := ParseJSON(strings.NewReader(body))
	require.NoError(t, err)
	require.False(t, sub.Standard.Enabled)
	require.True(t, sub.Standard.OpenByDefault)
	require.Equal(t, "Go", sub.Providers["social_auth_google"].ButtonText)

	_, err = ParseJSON(strings.NewReader(`{"unknown": 1}`))
	require.ErrorIs(t, err, ErrMalformedSubmission)

	sub, err = ParseJSON(strings.NewReader(`{}`))
	require.NoError(t, err)
	require.NotNil(t, sub.Providers)
}

func TestApply(t *testing.T) {
	current := types.DefaultBlockSettings()
	current.ProviderSettings["social_auth_facebook"] = types.ProviderSettings{Enabled: true}
	current.ProviderSettings["social_auth_google"] = types.ProviderSettings{Enabled: true, Label: "Old"}

	sub := Submission{
		Standard: StandardValues{Enabled: false, Label: "Sign in", OpenByDefault: true},
		Providers: map[string]types.ProviderSettings{
			"social_auth_google":   {Enabled: true, Label: "New"},
			"social_auth_linkedin": {Enabled: true}, // no elegible
		},
	}
	g, _ := catalog.Lookup("social_auth_google")
	fb, _ := catalog.Lookup("social_auth_facebook")
	eligible := []catalog.Provider{g, fb}

	out := Apply(current, sub, eligible, Options{EditableLabels: true})
	require.False(t, out.StandardLoginEnabled)
	require.True(t, out.StandardOpenByDefault)
	require.Equal(t, "Sign in", out.StandardLabel)
	require.Equal(t, map[string]types.ProviderSettings{
		"social_auth_google": {Enabled: true, Label: "New"},
	}, out.ProviderSettings)

	// current intacto
	require.Len(t, current.ProviderSettings, 2)

	locked := Apply(current, sub, eligible, Options{EditableLabels: false})
	require.Equal(t, types.DefaultStandardLabel, locked.StandardLabel)
	require.Equal(t, "Old", locked.ProviderSettings["social_auth_google"].Label)
}
