package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/multilogin/internal/audit"
	"github.com/dropDatabas3/multilogin/internal/http/errors"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
	"github.com/dropDatabas3/multilogin/internal/security/admintoken"
)

// TokenVerifier valida un bearer token de admin.
type TokenVerifier interface {
	Verify(raw string) (*admintoken.Claims, error)
}

// AdminConfig configura los middlewares de admin.
type AdminConfig struct {
	// EnforceAdmin en false (modo desarrollo) deja pasar todo.
	EnforceAdmin bool
	// AdminSubs son subjects admin aunque el token no traiga el rol.
	AdminSubs []string
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// RequireAdminToken valida el bearer token y deja sus claims en el contexto.
// Con enforce desactivado un token ausente no es error.
func RequireAdminToken(v TokenVerifier, cfg AdminConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				if !cfg.EnforceAdmin {
					next.ServeHTTP(w, r)
					return
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="multilogin-admin"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}
			if v == nil {
				errors.WriteError(w, errors.ErrServiceUnavailable.WithDetail("admin tokens not configured"))
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				logger.From(r.Context()).Debug("admin token rejected", logger.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="multilogin-admin", error="invalid_token"`)
				errors.WriteError(w, errors.ErrTokenInvalid)
				return
			}
			ctx := WithAdminClaims(r.Context(), claims)
			ctx = audit.WithActor(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin valida permisos de admin sobre los claims ya verificados.
// Reglas, en orden:
//  1. EnforceAdmin == false: permitir.
//  2. El token trae el rol admin: permitir.
//  3. El sub está en AdminSubs: permitir.
//
// Si no, 403.
func RequireAdmin(cfg AdminConfig) Middleware {
	adminSubs := make(map[string]struct{}, len(cfg.AdminSubs))
	for _, s := range cfg.AdminSubs {
		adminSubs[s] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.EnforceAdmin {
				next.ServeHTTP(w, r)
				return
			}

			cl := GetAdminClaims(r.Context())
			if cl == nil {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("no claims in context"))
				return
			}
			if cl.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := adminSubs[cl.Subject]; ok && cl.Subject != "" {
				next.ServeHTTP(w, r)
				return
			}

			errors.WriteError(w, errors.ErrForbidden.WithDetail("admin required"))
		})
	}
}
