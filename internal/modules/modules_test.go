package modules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/multilogin/internal/catalog"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := NewStatic("social_auth_google")
	require.True(t, s.IsInstalled(ctx, "social_auth_google"))
	require.False(t, s.IsInstalled(ctx, "social_auth_github"))

	require.NoError(t, s.Enable(ctx, "social_auth_github"))
	require.ErrorIs(t, s.Enable(ctx, "social_auth_myspace"), ErrUnknownModule)
	require.NoError(t, s.Disable(ctx, "social_auth_google"))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"social_auth_github"}, ids)
}

func TestFile_ReadsOnEveryCall(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "modules.yaml")
	f := NewFile(path)

	// sin archivo: nada instalado
	require.False(t, f.IsInstalled(ctx, "social_auth_google"))

	require.NoError(t, os.WriteFile(path, []byte("enabled:\n  - social_auth_google\n"), 0o644))
	require.True(t, f.IsInstalled(ctx, "social_auth_google"))

	// cambio externo visible en la siguiente llamada
	require.NoError(t, os.WriteFile(path, []byte("enabled: []\n"), 0o644))
	require.False(t, f.IsInstalled(ctx, "social_auth_google"))
}

func TestFile_EnableDisable(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "conf", "modules.yaml"))

	require.NoError(t, f.Enable(ctx, "social_auth_github"))
	require.NoError(t, f.Enable(ctx, "social_auth_google"))
	require.NoError(t, f.Enable(ctx, "social_auth_google"))
	require.ErrorIs(t, f.Enable(ctx, "nope"), ErrUnknownModule)

	ids, err := f.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"social_auth_github", "social_auth_google"}, ids)

	require.NoError(t, f.Disable(ctx, "social_auth_github"))
	require.NoError(t, f.Disable(ctx, "social_auth_github"))
	ids, err = f.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"social_auth_google"}, ids)
}

func TestFile_Seed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "modules.yaml")
	f := NewFile(path)
	require.NoError(t, f.Seed([]string{"social_auth_facebook"}))
	require.NoError(t, f.Seed([]string{"social_auth_google"})) // no pisa
	require.True(t, f.IsInstalled(ctx, "social_auth_facebook"))
	require.False(t, f.IsInstalled(ctx, "social_auth_google"))
}

func TestInstalled(t *testing.T) {
	ctx := context.Background()
	set := Installed(ctx, NewStatic("social_auth_github", "other_module"), catalog.Known())
	require.Equal(t, 1, set.Len())
	require.True(t, set.Has("social_auth_github"))

	require.Equal(t, 0, Installed(ctx, nil, catalog.Known()).Len())
}
