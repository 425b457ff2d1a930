package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
)

// WithLocale negocia el idioma (?lang= tiene prioridad sobre Accept-Language)
// y deja el Translator en el contexto.
func WithLocale(b *i18n.Bundle) Middleware {
	return func(next http.Handler) http.Handler {
		if b == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tr i18n.Translator
			if lang := r.URL.Query().Get("lang"); lang != "" {
				tr = b.For(lang)
			} else {
				tr = b.Negotiate(r.Header.Get("Accept-Language"))
			}

			w.Header().Set("Content-Language", tr.Locale())
			w.Header().Add("Vary", "Accept-Language")

			ctx := i18n.ToContext(r.Context(), tr)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.Locale(tr.Locale())))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
