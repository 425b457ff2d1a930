package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/multilogin/internal/observability/logger"
)

func TestLog_WithActor(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core))
	ctx = WithActor(ctx, "ops")

	Log(ctx, EventModuleEnabled, logger.Module("social_auth_google"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, EventModuleEnabled, fields["event"])
	assert.Equal(t, "ops", fields["sub"])
	assert.Equal(t, "social_auth_google", fields["module"])
}

func TestActor_Default(t *testing.T) {
	assert.Equal(t, "anonymous", Actor(context.Background()))
}
