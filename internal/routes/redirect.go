package routes

import (
	"fmt"
	"strings"
)

// NetworkRedirects construye URLs hacia la ruta social_auth.network.redirect.
// Una red solo es resoluble si la ruta está registrada y la red tiene una
// integración configurada (authorize URL).
type NetworkRedirects struct {
	Routes   *Registry
	Networks map[string]string // network -> authorize URL upstream
	BaseURL  string            // opcional; si vacío se retorna un path relativo
}

// BuildRedirectURL resuelve la URL de redirect para una red.
func (n NetworkRedirects) BuildRedirectURL(network string) (string, error) {
	if n.Routes == nil {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, SocialRedirect)
	}
	if _, ok := n.Networks[network]; !ok {
		return "", fmt.Errorf("%w: %s has no integration for network %q", ErrRouteNotFound, SocialRedirect, network)
	}
	p, err := n.Routes.URL(SocialRedirect, map[string]string{"network": network})
	if err != nil {
		return "", err
	}
	if n.BaseURL == "" {
		return p, nil
	}
	return strings.TrimRight(n.BaseURL, "/") + p, nil
}

// AuthorizeURL retorna la URL upstream de una red integrada.
func (n NetworkRedirects) AuthorizeURL(network string) (string, bool) {
	u, ok := n.Networks[network]
	return u, ok && u != ""
}
