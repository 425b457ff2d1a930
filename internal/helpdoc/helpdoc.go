// Package helpdoc fetches the configured help page and extracts its main
// content region so it can be shown inside the login block's help dialog.
package helpdoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dropDatabas3/multilogin/internal/metrics"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
)

// ErrHelpUnavailable cubre errores de red, status no-2xx y bodies ilegibles.
var ErrHelpUnavailable = errors.New("help page unavailable")

// ErrorFragment es lo que se muestra en el diálogo cuando el fetch falla.
const ErrorFragment = `<p class="error"><strong>Error loading help page.</strong></p>`

// maxBody limita lo que se lee de la página de ayuda.
const maxBody = 2 << 20

// Fetcher trae y recorta la página de ayuda.
type Fetcher struct {
	Client *http.Client
	URL    string
}

// NewFetcher crea un Fetcher con timeout propio.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{Client: &http.Client{Timeout: timeout}, URL: url}
}

// Fetch descarga la página y devuelve el HTML interno de su región principal.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	log := logger.From(ctx).With(logger.Component("helpdoc"), logger.URL(f.URL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHelpUnavailable, err)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "text/html")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		metrics.HelpFetchTotal.WithLabelValues("error").Inc()
		log.Warn("help fetch failed", logger.Err(err))
		return "", fmt.Errorf("%w: %v", ErrHelpUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.HelpFetchTotal.WithLabelValues("error").Inc()
		log.Warn("help fetch non-2xx", logger.Status(resp.StatusCode))
		return "", fmt.Errorf("%w: status %d", ErrHelpUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		metrics.HelpFetchTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrHelpUnavailable, err)
	}
	metrics.HelpFetchTotal.WithLabelValues("ok").Inc()
	return Extract(string(body)), nil
}

// Extract devuelve el HTML interno del primer match de main, [role=main],
// .content, article o body (en ese orden). Si nada matchea devuelve doc tal cual.
func Extract(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return doc
	}

	matchers := []func(*html.Node) bool{
		func(n *html.Node) bool { return n.DataAtom == atom.Main },
		func(n *html.Node) bool { return attr(n, "role") == "main" },
		func(n *html.Node) bool { return hasClass(n, "content") },
		func(n *html.Node) bool { return n.DataAtom == atom.Article },
		func(n *html.Node) bool { return n.DataAtom == atom.Body },
	}
	for _, m := range matchers {
		if n := find(root, m); n != nil {
			return innerHTML(n)
		}
	}
	return doc
}

// find recorre el árbol en orden de documento.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			break
		}
	}
	return buf.String()
}
