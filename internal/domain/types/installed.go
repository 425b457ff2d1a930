package types

// InstalledSet is the set of provider module ids present in the environment.
// It is built fresh for every evaluation and never cached by the resolver.
type InstalledSet map[string]struct{}

// NewInstalledSet builds a set from ids.
func NewInstalledSet(ids ...string) InstalledSet {
	s := make(InstalledSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is installed.
func (s InstalledSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of installed ids.
func (s InstalledSet) Len() int { return len(s) }
