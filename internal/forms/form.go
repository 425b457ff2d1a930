// Package forms builds the admin configuration form of a login block and
// applies its submissions back onto BlockSettings.
//
// Field names mirror the persisted settings and are nested the way the HTML
// form posts them:
//
//	standard_login[enable_standard_login]
//	social_providers_wrapper[social_auth_google][custom_url]
package forms

import (
	"github.com/dropDatabas3/multilogin/internal/catalog"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/i18n"
	"github.com/dropDatabas3/multilogin/internal/resolver"
)

// Grupos raíz del formulario.
const (
	GroupStandard = "standard_login"
	GroupSocial   = "social_providers_wrapper"
)

// Nombres de campo.
const (
	FieldEnableStandard  = "enable_standard_login"
	FieldStandardLabel   = "standard_label"
	FieldStandardOpen    = "standard_open_default"
	FieldEnabled         = "enabled"
	FieldLabel           = "label"
	FieldNetwork         = "network"
	FieldCustomURL       = "custom_url"
	FieldButtonText      = "button_text"
	FieldProviderDefault = "open_default"
)

// NoProvidersMessage se muestra cuando no hay módulos de providers instalados.
const NoProvidersMessage = "No Social Auth modules detected. Install modules like social_auth_google, social_auth_facebook, etc."

// FieldType es el widget de un campo.
type FieldType string

const (
	Checkbox  FieldType = "checkbox"
	TextField FieldType = "textfield"
)

// Options controla qué partes del formulario son editables.
type Options struct {
	EditableLabels bool
}

// Field es un input del formulario.
type Field struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Type        FieldType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Value       any       `json:"value"`
	MaxLength   int       `json:"max_length,omitempty"`
	// VisibleWhen es el Path del checkbox que debe estar marcado para mostrar el campo.
	VisibleWhen string `json:"visible_when,omitempty"`
}

// Group es un <details> del formulario.
type Group struct {
	Key     string  `json:"key"`
	Title   string  `json:"title"`
	Open    bool    `json:"open"`
	Message string  `json:"message,omitempty"`
	Fields  []Field `json:"fields,omitempty"`
	Groups  []Group `json:"groups,omitempty"`
}

// Form es el schema completo.
type Form struct {
	Standard Group `json:"standard_login"`
	Social   Group `json:"social_providers_wrapper"`
}

func path(parts ...string) string {
	p := parts[0]
	for _, s := range parts[1:] {
		p += "[" + s + "]"
	}
	return p
}

// Build arma el formulario para los providers elegibles con los valores actuales.
func Build(known []catalog.Provider, installed types.InstalledSet, s types.BlockSettings, tr i18n.Translator, opts Options) Form {
	if tr == nil {
		tr = i18n.Identity
	}

	enablePath := path(GroupStandard, FieldEnableStandard)
	std := Group{
		Key:   GroupStandard,
		Title: tr.T(types.DefaultStandardLabel, nil),
		Open:  true,
		Fields: []Field{
			{Name: FieldEnableStandard, Path: enablePath, Type: Checkbox,
				Title: tr.T("Enable standard login", nil), Value: s.StandardLoginEnabled},
		},
	}
	if opts.EditableLabels {
		label := s.StandardLabel
		if label == "" {
			label = tr.T(types.DefaultStandardLabel, nil)
		}
		std.Fields = append(std.Fields, Field{
			Name: FieldStandardLabel, Path: path(GroupStandard, FieldStandardLabel), Type: TextField,
			Title: tr.T("Label", nil), Value: label, MaxLength: 128, VisibleWhen: enablePath,
		})
	}
	std.Fields = append(std.Fields, Field{
		Name: FieldStandardOpen, Path: path(GroupStandard, FieldStandardOpen), Type: Checkbox,
		Title: tr.T("Open by default", nil), Value: s.StandardOpenByDefault, VisibleWhen: enablePath,
	})

	social := Group{Key: GroupSocial, Title: tr.T("Social Auth Providers", nil), Open: true}
	eligible := resolver.EligibleProviders(known, installed)
	if len(eligible) == 0 {
		social.Message = tr.T(NoProvidersMessage, nil)
	}
	for _, p := range eligible {
		social.Groups = append(social.Groups, providerGroup(p, s, tr, opts))
	}

	return Form{Standard: std, Social: social}
}

func providerGroup(p catalog.Provider, s types.BlockSettings, tr i18n.Translator, opts Options) Group {
	ps, _ := s.Provider(p.ID)
	args := i18n.Args{"@provider": p.DisplayName}
	enabledPath := path(GroupSocial, p.ID, FieldEnabled)

	or := func(v, def string) string {
		if v != "" {
			return v
		}
		return def
	}

	g := Group{
		Key:   p.ID,
		Title: p.DisplayName,
		Open:  ps.Enabled,
		Fields: []Field{
			{Name: FieldEnabled, Path: enabledPath, Type: Checkbox,
				Title: tr.T("Enable @provider", args), Value: ps.Enabled},
		},
	}
	if opts.EditableLabels {
		g.Fields = append(g.Fields, Field{
			Name: FieldLabel, Path: path(GroupSocial, p.ID, FieldLabel), Type: TextField,
			Title: tr.T("Label", nil), Value: or(ps.Label, tr.T(resolver.DefaultProviderLabel, args)),
			MaxLength: 128, VisibleWhen: enabledPath,
		})
	}
	g.Fields = append(g.Fields,
		Field{
			Name: FieldNetwork, Path: path(GroupSocial, p.ID, FieldNetwork), Type: TextField,
			Title:       tr.T("Network identifier", nil),
			Description: tr.T("Network identifier for the route (e.g., @network)", i18n.Args{"@network": p.NetworkKey}),
			Value:       or(ps.Network, p.NetworkKey), MaxLength: 64, VisibleWhen: enabledPath,
		},
		Field{
			Name: FieldCustomURL, Path: path(GroupSocial, p.ID, FieldCustomURL), Type: TextField,
			Title:       tr.T("Or custom URL", nil),
			Description: tr.T("Leave empty to use social_auth.network.redirect route. Use this for external OAuth URLs.", nil),
			Value:       ps.CustomURL, MaxLength: 2048, VisibleWhen: enabledPath,
		},
		Field{
			Name: FieldButtonText, Path: path(GroupSocial, p.ID, FieldButtonText), Type: TextField,
			Title: tr.T("Button text", nil), Value: or(ps.ButtonText, tr.T(resolver.DefaultButtonText, nil)),
			MaxLength: 64, VisibleWhen: enabledPath,
		},
		Field{
			Name: FieldProviderDefault, Path: path(GroupSocial, p.ID, FieldProviderDefault), Type: Checkbox,
			Title: tr.T("Open by default", nil), Value: ps.OpenByDefault, VisibleWhen: enabledPath,
		},
	)
	return g
}
