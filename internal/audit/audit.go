// Package audit registra eventos de cambios de configuración hechos por un
// admin (bloques colocados, settings guardados, módulos habilitados).
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/multilogin/internal/observability/logger"
)

// Eventos.
const (
	EventBlockPlaced     = "block.placed"
	EventBlockDeleted    = "block.deleted"
	EventSettingsSaved   = "block.settings_saved"
	EventModuleEnabled   = "module.enabled"
	EventModuleDisabled  = "module.disabled"
	anonymousActor       = "anonymous"
	auditLoggerComponent = "audit"
)

type actorKey struct{}

// WithActor guarda el subject autenticado que origina los cambios.
func WithActor(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, actorKey{}, sub)
}

// Actor devuelve el subject del contexto o "anonymous".
func Actor(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return anonymousActor
}

// Log escribe un evento de auditoría sobre el logger del request.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	base := []zap.Field{
		logger.Component(auditLoggerComponent),
		zap.String("event", event),
		logger.Subject(Actor(ctx)),
	}
	logger.From(ctx).Info("audit", append(base, fields...)...)
}
