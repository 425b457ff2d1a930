// Package metrics define las métricas Prometheus del servicio.
// Vive en un paquete propio para que resolver, store y http puedan usarlo sin ciclos.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once
	registerErr  error

	// Resolver
	LoginMethodsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "multilogin_methods_resolved_total",
		Help: "Login methods emitidos por tipo (standard|social)",
	}, []string{"kind"})

	ProvidersSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "multilogin_providers_skipped_total",
		Help: "Providers habilitados que se omitieron por falta de ruta de redirect",
	}, []string{"provider"})

	// Store
	SettingsCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "multilogin_settings_cache_lookups_total",
		Help: "Lookups del cache de settings por resultado (hit|miss)",
	}, []string{"result"})

	// Help popup
	HelpFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "multilogin_help_fetch_total",
		Help: "Fetches de la página de ayuda por resultado (ok|error)",
	}, []string{"result"})

	// HTTP
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo por método y ruta",
	}, []string{"method", "path"})

	rateLimitRejects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_rejects_total",
		Help: "Requests rechazadas por rate limit",
	}, []string{"scope"})
)

// Register registra todas las métricas en reg (o el default si es nil) y
// devuelve el handler para /metrics.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			LoginMethodsResolved,
			ProvidersSkipped,
			SettingsCacheLookups,
			HelpFetchTotal,
			httpRequestsTotal,
			httpRequestDuration,
			httpInflight,
			rateLimitRejects,
		} {
			if err := registerCollector(reg, c); err != nil {
				registerErr = err
				return
			}
		}
	})
	if registerErr != nil {
		return nil, registerErr
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// RecordRateLimitReject incrementa el contador de rechazos por rate limit.
func RecordRateLimitReject(scope string) {
	if scope == "" {
		scope = "unknown"
	}
	rateLimitRejects.WithLabelValues(scope).Inc()
}
