// Package routes keeps a registry of named routes so URLs can be built from a
// route name and its parameters, the way templates and the resolver refer to
// "social_auth.network.redirect" without hard-coding paths.
package routes

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Nombres de rutas conocidas.
const (
	SocialRedirect = "social_auth.network.redirect"
	StandardLogin  = "user.login"
	BlockRender    = "multi_login_block.render"
	HelpContent    = "multi_login_block.help"
	AdminIndex     = "multi_login_block.admin"
)

var (
	// ErrRouteNotFound indica que la ruta no está registrada.
	ErrRouteNotFound = errors.New("route not found")
	// ErrMissingParameter indica que falta un parámetro requerido por el patrón.
	ErrMissingParameter = errors.New("missing route parameter")
)

// Registry mapea nombres de ruta a patrones estilo chi ("/user/login/{network}").
type Registry struct {
	mu     sync.RWMutex
	routes map[string]string
}

// NewRegistry crea un registry vacío.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]string)}
}

// Register asocia name con pattern. Re-registrar reemplaza el patrón.
func (r *Registry) Register(name, pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[name] = pattern
}

// Has reporta si name está registrado.
func (r *Registry) Has(name string) bool {
	_, ok := r.Pattern(name)
	return ok
}

// Pattern retorna el patrón de una ruta.
func (r *Registry) Pattern(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.routes[name]
	return p, ok
}

// URL construye el path de una ruta sustituyendo sus parámetros.
// Los valores se escapan como segmentos de path.
func (r *Registry) URL(name string, params map[string]string) (string, error) {
	pattern, ok := r.Pattern(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}

	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
		// chi admite "{id:[0-9]+}"
		if j := strings.IndexByte(key, ':'); j >= 0 {
			key = key[:j]
		}
		v, ok := params[key]
		if !ok || v == "" {
			return "", fmt.Errorf("%w: %s needs {%s}", ErrMissingParameter, name, key)
		}
		segments[i] = url.PathEscape(v)
	}
	return strings.Join(segments, "/"), nil
}

// Handle registra h en el router chi y el patrón en el registry.
func (r *Registry) Handle(router chi.Router, name, method, pattern string, h http.Handler) {
	router.Method(method, pattern, h)
	if name != "" {
		r.Register(name, pattern)
	}
}
