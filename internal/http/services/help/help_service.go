// Package help sirve el contenido del diálogo de ayuda.
package help

import (
	"context"

	"github.com/dropDatabas3/multilogin/internal/helpdoc"
)

// Fetcher trae la región principal de la página de ayuda.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// HelpService devuelve siempre un fragmento mostrable: el contenido o el
// mensaje de error fijo.
type HelpService interface {
	Content(ctx context.Context) (fragment string, ok bool)
}

type helpService struct {
	fetcher Fetcher
}

// NewHelpService crea el service. fetcher nil equivale a ayuda no configurada.
func NewHelpService(fetcher Fetcher) HelpService {
	return &helpService{fetcher: fetcher}
}

func (s *helpService) Content(ctx context.Context) (string, bool) {
	if s.fetcher == nil {
		return helpdoc.ErrorFragment, false
	}
	frag, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return helpdoc.ErrorFragment, false
	}
	return frag, true
}
