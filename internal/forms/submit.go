package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/dropDatabas3/multilogin/internal/catalog"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
)

// ErrMalformedSubmission indica que el body no se pudo interpretar.
var ErrMalformedSubmission = errors.New("malformed form submission")

// StandardValues son los valores posteados del grupo standard_login.
type StandardValues struct {
	Enabled       bool   `json:"enable_standard_login"`
	Label         string `json:"standard_label"`
	OpenByDefault bool   `json:"standard_open_default"`
}

// Submission es el formulario posteado, ya tipado.
type Submission struct {
	Standard  StandardValues                    `json:"standard_login"`
	Providers map[string]types.ProviderSettings `json:"social_providers_wrapper"`
}

// checkbox interpreta el valor de un checkbox HTML. Ausente = false.
func checkbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// splitPath separa "a[b][c]" en ["a","b","c"].
func splitPath(name string) ([]string, bool) {
	i := strings.IndexByte(name, '[')
	if i < 0 {
		return []string{name}, true
	}
	parts := []string{name[:i]}
	rest := name[i:]
	for rest != "" {
		if rest[0] != '[' {
			return nil, false
		}
		j := strings.IndexByte(rest, ']')
		if j < 0 {
			return nil, false
		}
		parts = append(parts, rest[1:j])
		rest = rest[j+1:]
	}
	return parts, true
}

// ParseValues interpreta un POST application/x-www-form-urlencoded.
// Los nombres desconocidos se ignoran.
func ParseValues(values url.Values) (Submission, error) {
	sub := Submission{Providers: map[string]types.ProviderSettings{}}
	for name, vs := range values {
		if len(vs) == 0 {
			continue
		}
		// los checkboxes con hidden fallback postean dos valores; manda el último
		v := vs[len(vs)-1]
		parts, ok := splitPath(name)
		if !ok {
			return Submission{}, fmt.Errorf("%w: bad field name %q", ErrMalformedSubmission, name)
		}
		switch {
		case len(parts) == 2 && parts[0] == GroupStandard:
			switch parts[1] {
			case FieldEnableStandard:
				sub.Standard.Enabled = checkbox(v)
			case FieldStandardLabel:
				sub.Standard.Label = v
			case FieldStandardOpen:
				sub.Standard.OpenByDefault = checkbox(v)
			}
		case len(parts) == 3 && parts[0] == GroupSocial:
			id := parts[1]
			ps := sub.Providers[id]
			switch parts[2] {
			case FieldEnabled:
				ps.Enabled = checkbox(v)
			case FieldLabel:
				ps.Label = v
			case FieldNetwork:
				ps.Network = v
			case FieldCustomURL:
				ps.CustomURL = v
			case FieldButtonText:
				ps.ButtonText = v
			case FieldProviderDefault:
				ps.OpenByDefault = checkbox(v)
			default:
				continue
			}
			sub.Providers[id] = ps
		}
	}
	return sub, nil
}

// ParseJSON interpreta un documento JSON con la misma forma que el formulario.
func ParseJSON(r io.Reader) (Submission, error) {
	var sub Submission
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		return Submission{}, fmt.Errorf("%w: %w", ErrMalformedSubmission, err)
	}
	if sub.Providers == nil {
		sub.Providers = map[string]types.ProviderSettings{}
	}
	return sub, nil
}

// Apply escribe la submission sobre current. Los settings de providers se
// reemplazan por los enviados para providers elegibles; el resto se descarta.
// Con labels no editables se conservan los labels guardados.
func Apply(current types.BlockSettings, sub Submission, eligible []catalog.Provider, opts Options) types.BlockSettings {
	out := current.Clone()
	out.StandardLoginEnabled = sub.Standard.Enabled
	out.StandardOpenByDefault = sub.Standard.OpenByDefault
	if opts.EditableLabels {
		out.StandardLabel = sub.Standard.Label
	}

	providers := make(map[string]types.ProviderSettings, len(eligible))
	for _, p := range eligible {
		ps, ok := sub.Providers[p.ID]
		if !ok {
			continue
		}
		if !opts.EditableLabels {
			ps.Label = current.ProviderSettings[p.ID].Label
		}
		providers[p.ID] = ps
	}
	out.ProviderSettings = providers
	return out
}
