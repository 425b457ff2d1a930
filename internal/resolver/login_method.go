package resolver

import "html/template"

// StandardMethodID es el id del método de login con usuario y contraseña.
const StandardMethodID = "standard"

// ContentKind distingue cómo se renderiza el cuerpo de una pestaña.
type ContentKind string

const (
	ContentForm ContentKind = "form"
	ContentLink ContentKind = "link"
)

// LoginMethod es una pestaña del widget. Se deriva en cada render, nunca se persiste.
type LoginMethod struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	Icon          string  `json:"icon"`
	Tooltip       string  `json:"tooltip"`
	OpenByDefault bool    `json:"open_by_default"`
	TargetURL     string  `json:"target_url,omitempty"`
	Content       Content `json:"content"`
}

// Content es el cuerpo renderizable de la pestaña.
// Form solo se usa en el método standard; los providers llevan un link.
type Content struct {
	Kind        ContentKind   `json:"kind"`
	Form        template.HTML `json:"-"`
	URL         string        `json:"url,omitempty"`
	ButtonText  string        `json:"button_text,omitempty"`
	Description string        `json:"description,omitempty"`
	Classes     []string      `json:"classes,omitempty"`
}

// IsStandard reporta si el método embebe el formulario de contraseña.
func (m LoginMethod) IsStandard() bool { return m.ID == StandardMethodID }

// ActiveIndex devuelve el índice de la pestaña abierta inicialmente: la primera
// marcada como open-by-default, o la primera. -1 si no hay métodos.
func ActiveIndex(methods []LoginMethod) int {
	if len(methods) == 0 {
		return -1
	}
	for i, m := range methods {
		if m.OpenByDefault {
			return i
		}
	}
	return 0
}
