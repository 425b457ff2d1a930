package atomicwrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteFile_CreatesDirAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blocks", "a.yaml")

	require.NoError(t, WriteFile(path, []byte("one"), 0o600))
	require.NoError(t, WriteFile(path, []byte("two"), 0o600))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "two", string(got))

	// no quedan temporales
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modules.yaml")
	in := map[string][]string{"enabled": {"social_auth_google"}}
	require.NoError(t, WriteYAML(path, in, 0o644))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string][]string
	require.NoError(t, yaml.Unmarshal(raw, &out))
	require.Equal(t, in, out)
}
