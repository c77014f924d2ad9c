// Package deps implements the source library registry: a named, ordered
// collection of libraries, each with a stable priority, used to disambiguate
// same-named cells during definition lookup.
package deps

// SourceLibrary is a named, ordered collection of design units. Identity is
// by pointer: two libraries registered under the same name are distinct, so
// callers must always compare *SourceLibrary, never Name, when checking
// whether two references denote the same library.
type SourceLibrary struct {
	Name      string
	Priority  int
	IsDefault bool
}

// defaultPriority places the sentinel default library after every
// explicitly registered library unless the caller's liblist names it first.
const defaultPriority = 1 << 30

// Registry is the ordered collection of libraries known to a compilation.
// It is built once (from the library map, see the libmap package) and
// never mutated during elaboration.
type Registry struct {
	libraries []*SourceLibrary
	byName    map[string]*SourceLibrary
	defaultLib *SourceLibrary
}

// NewRegistry creates an empty library registry with a sentinel default
// library already registered (every compilation has a "work" library even
// if the library map never mentions one).
func NewRegistry(defaultName string) *Registry {
	def := &SourceLibrary{Name: defaultName, Priority: defaultPriority, IsDefault: true}
	return &Registry{
		libraries:  []*SourceLibrary{def},
		byName:     map[string]*SourceLibrary{defaultName: def},
		defaultLib: def,
	}
}

// Register adds a new named library with the given priority (lower values
// are searched first). Registering the same name twice yields two distinct
// SourceLibrary values; the registry keeps the most recently registered one
// reachable by name but both remain valid pointers to earlier lookups.
func (r *Registry) Register(name string, priority int) *SourceLibrary {
	lib := &SourceLibrary{Name: name, Priority: priority}
	r.libraries = append(r.libraries, lib)
	r.byName[name] = lib
	return lib
}

// Lookup returns the library registered under name, if any.
func (r *Registry) Lookup(name string) (*SourceLibrary, bool) {
	lib, ok := r.byName[name]
	return lib, ok
}

// Default returns the sentinel default library for this registry.
func (r *Registry) Default() *SourceLibrary {
	return r.defaultLib
}

// All returns every registered library (including the default), in
// registration order.
func (r *Registry) All() []*SourceLibrary {
	return r.libraries
}

// GlobalOrder returns libraries sorted by ascending priority — the order
// used as the tail of an effective search liblist when no explicit liblist
// is in play.
func (r *Registry) GlobalOrder() []*SourceLibrary {
	ordered := make([]*SourceLibrary, len(r.libraries))
	copy(ordered, r.libraries)
	// Stable insertion sort: registries are small (tens of libraries at
	// most) and callers need registration order preserved among ties.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Priority < ordered[j-1].Priority; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}
