package middlewares

import (
	"context"

	"github.com/dropDatabas3/multilogin/internal/security/admintoken"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "admin_claims"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithAdminClaims inyecta los claims del token de admin.
func WithAdminClaims(ctx context.Context, c *admintoken.Claims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, c)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetAdminClaims retorna nil si el request no trae token validado.
func GetAdminClaims(ctx context.Context) *admintoken.Claims {
	c, _ := ctx.Value(ctxClaimsKey).(*admintoken.Claims)
	return c
}

// GetRequestID retorna "" si no hay request ID.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
