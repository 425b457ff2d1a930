// Package catalog holds the static table of identity providers the login block
// knows how to render.
//
// The order of Known() is the display order everywhere downstream (admin form,
// rendered tabs). Entries are keyed by the id of the module that provides the
// integration, e.g. "social_auth_google".
package catalog

import "strings"

// ModulePrefix is the prefix shared by every provider module id.
const ModulePrefix = "social_auth_"

// Provider describes a known identity provider.
type Provider struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	NetworkKey  string `json:"network" yaml:"network"`
	Icon        string `json:"icon" yaml:"icon"`
}

// ShortID returns the provider id without the module prefix ("google").
func (p Provider) ShortID() string { return ShortID(p.ID) }

var known = [...]Provider{
	{ID: "social_auth_google", DisplayName: "Google", NetworkKey: "google", Icon: "google"},
	{ID: "social_auth_facebook", DisplayName: "Facebook", NetworkKey: "facebook", Icon: "facebook"},
	{ID: "social_auth_github", DisplayName: "GitHub", NetworkKey: "github", Icon: "github"},
	{ID: "social_auth_linkedin", DisplayName: "LinkedIn", NetworkKey: "linkedin", Icon: "linkedin"},
	{ID: "social_auth_twitter", DisplayName: "Twitter", NetworkKey: "twitter", Icon: "twitter"},
	{ID: "social_auth_microsoft", DisplayName: "Microsoft", NetworkKey: "microsoft", Icon: "microsoft"},
}

// Known returns the ordered catalog. The slice is a copy; callers may keep it.
func Known() []Provider {
	out := make([]Provider, len(known))
	copy(out, known[:])
	return out
}

// Lookup finds a provider by module id.
func Lookup(id string) (Provider, bool) {
	for _, p := range known {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// IDs returns the module ids in catalog order.
func IDs() []string {
	ids := make([]string, len(known))
	for i, p := range known {
		ids[i] = p.ID
	}
	return ids
}

// ShortID strips the module prefix from a provider id.
func ShortID(id string) string {
	return strings.TrimPrefix(id, ModulePrefix)
}
