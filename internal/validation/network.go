package validation

import "regexp"

// Network key rules (the key ends up as a path segment of the redirect route):
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9_-].
// - Length 1..64.
//
// Examples valid: google, github, azure-ad, x, okta_eu1
// Examples invalid: "", Google, "bad space", -lead, trail_, a/b, 65+ chars.
var networkKeyRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_-]{0,62}[a-z0-9])?$`)

// ValidNetworkKey returns true if the network key matches the allowed pattern.
func ValidNetworkKey(key string) bool {
	return networkKeyRe.MatchString(key)
}
