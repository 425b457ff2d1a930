// Package types define tipos de dominio compartidos entre paquetes.
package types

// PluginID is the block plugin id stored on every placed login block.
const PluginID = "multi_login_block"

// DefaultStandardLabel is the untranslated label of the password tab.
const DefaultStandardLabel = "Standard login"

// ProviderSettings is the persisted per-provider state of a block.
// Optional strings are absent when empty.
type ProviderSettings struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	Label         string `json:"label,omitempty" yaml:"label,omitempty" validate:"max=128"`
	Network       string `json:"network,omitempty" yaml:"network,omitempty" validate:"omitempty,max=64,network"`
	CustomURL     string `json:"custom_url,omitempty" yaml:"custom_url,omitempty" validate:"max=2048"`
	ButtonText    string `json:"button_text,omitempty" yaml:"button_text,omitempty" validate:"max=64"`
	OpenByDefault bool   `json:"open_default" yaml:"open_default"`
}

// BlockSettings is the unit of persistence for one placed login block.
type BlockSettings struct {
	StandardLoginEnabled  bool                        `json:"enable_standard_login" yaml:"enable_standard_login"`
	StandardLabel         string                      `json:"standard_label" yaml:"standard_label" validate:"max=128"`
	StandardOpenByDefault bool                        `json:"standard_open_default" yaml:"standard_open_default"`
	ProviderSettings      map[string]ProviderSettings `json:"social_providers" yaml:"social_providers" validate:"dive,keys,provider_id,endkeys"`
}

// DefaultBlockSettings returns the settings a block gets when it is placed.
func DefaultBlockSettings() BlockSettings {
	return BlockSettings{
		StandardLoginEnabled:  true,
		StandardLabel:         DefaultStandardLabel,
		StandardOpenByDefault: false,
		ProviderSettings:      map[string]ProviderSettings{},
	}
}

// Provider returns the settings stored for id. Absent entries are reported as
// disabled with zero-value defaults.
func (s BlockSettings) Provider(id string) (ProviderSettings, bool) {
	ps, ok := s.ProviderSettings[id]
	return ps, ok
}

// Clone returns a deep copy so callers can mutate the provider map freely.
func (s BlockSettings) Clone() BlockSettings {
	out := s
	out.ProviderSettings = make(map[string]ProviderSettings, len(s.ProviderSettings))
	for k, v := range s.ProviderSettings {
		out.ProviderSettings[k] = v
	}
	return out
}
