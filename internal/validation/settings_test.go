package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/multilogin/internal/domain/types"
)

func TestNormalizeBlockSettings(t *testing.T) {
	in := types.BlockSettings{
		StandardLoginEnabled: true,
		StandardLabel:        "  Sign in ",
		ProviderSettings: map[string]types.ProviderSettings{
			"social_auth_google": {Enabled: true, Network: " Google ", CustomURL: " https://x.example/login "},
			"social_auth_myspace": {Enabled: true},
		},
	}

	out := NormalizeBlockSettings(in)

	require.Equal(t, "Sign in", out.StandardLabel)
	require.Len(t, out.ProviderSettings, 1)
	g := out.ProviderSettings["social_auth_google"]
	require.Equal(t, "google", g.Network)
	require.Equal(t, "https://x.example/login", g.CustomURL)

	// input untouched
	require.Contains(t, in.ProviderSettings, "social_auth_myspace")
	require.Equal(t, " Google ", in.ProviderSettings["social_auth_google"].Network)
}

func TestValidateBlockSettings_OK(t *testing.T) {
	s := types.DefaultBlockSettings()
	s.ProviderSettings["social_auth_github"] = types.ProviderSettings{
		Enabled:   true,
		Network:   "github",
		CustomURL: "not even a url",
	}
	require.NoError(t, ValidateBlockSettings(s))
}

func TestValidateBlockSettings_Errors(t *testing.T) {
	cases := map[string]types.BlockSettings{
		"unknown provider": {
			ProviderSettings: map[string]types.ProviderSettings{"social_auth_myspace": {}},
		},
		"bad network": {
			ProviderSettings: map[string]types.ProviderSettings{"social_auth_google": {Network: "a/b"}},
		},
		"label too long": {
			StandardLabel: strings.Repeat("x", 129),
		},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateBlockSettings(s)
			require.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}
