package help

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/multilogin/internal/helpdoc"
)

type fetchFunc func(ctx context.Context) (string, error)

func (f fetchFunc) Fetch(ctx context.Context) (string, error) { return f(ctx) }

func TestContent(t *testing.T) {
	svc := NewHelpService(fetchFunc(func(context.Context) (string, error) { return "<p>Help</p>", nil }))
	frag, ok := svc.Content(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "<p>Help</p>", frag)
}

func TestContent_Errors(t *testing.T) {
	frag, ok := NewHelpService(nil).Content(context.Background())
	assert.False(t, ok)
	assert.Equal(t, helpdoc.ErrorFragment, frag)

	failing := fetchFunc(func(context.Context) (string, error) { return "", helpdoc.ErrHelpUnavailable })
	frag, ok = NewHelpService(failing).Content(context.Background())
	assert.False(t, ok)
	assert.Equal(t, helpdoc.ErrorFragment, frag)
}
