package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKnown_OrderAndShape(t *testing.T) {
	got := Known()
	require.NotEmpty(t, got)
	require.Equal(t, "social_auth_google", got[0].ID)
	require.Equal(t, "social_auth_microsoft", got[len(got)-1].ID)

	seen := map[string]bool{}
	for _, p := range got {
		require.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		require.NotEmpty(t, p.DisplayName)
		require.NotEmpty(t, p.NetworkKey)
		require.Equal(t, p.NetworkKey, p.ShortID())
	}
}

func TestKnown_ReturnsCopy(t *testing.T) {
	a := Known()
	a[0].DisplayName = "mutated"
	b := Known()
	require.Equal(t, "Google", b[0].DisplayName)
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("social_auth_github")
	require.True(t, ok)
	require.Equal(t, "GitHub", p.DisplayName)

	_, ok = Lookup("social_auth_myspace")
	require.False(t, ok)
}

func TestShortID(t *testing.T) {
	require.Equal(t, "google", ShortID("social_auth_google"))
	require.Equal(t, "standard", ShortID("standard"))
}
