package libmap

import "vela/deps"

// RegisterAll feeds entries into reg in order, returning a map from library
// name to both the SourceLibrary handle and the list of source files the
// driver must still parse into Definitions before elaboration can begin.
// Registration order is the order entries were declared in the library
// map, so earlier libraries win ties unless a later one carries an
// explicitly lower priority.
func RegisterAll(reg *deps.Registry, entries []*Entry) map[string]*RegisteredLibrary {
	out := make(map[string]*RegisteredLibrary, len(entries))
	for _, e := range entries {
		lib := reg.Register(e.Name, e.Priority)
		out[e.Name] = &RegisteredLibrary{
			Library: lib,
			Files:   e.Files,
		}
	}
	return out
}

// RegisteredLibrary pairs a registered deps.SourceLibrary handle with the
// source files the library map assigned to it.
type RegisteredLibrary struct {
	Library *deps.SourceLibrary
	Files   []string
}
