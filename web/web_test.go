package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	data, err := fs.ReadFile(Static(), "help-popup.js")
	require.NoError(t, err)
	require.Contains(t, string(data), "multi-login-help-dialog")
}

func TestStatic_Tabs(t *testing.T) {
	data, err := fs.ReadFile(Static(), "login-tabs.js")
	require.NoError(t, err)
	require.Contains(t, string(data), "aria-controls")
}
