// Package libmap loads the library map file consulted by the driver before
// elaboration begins: a TOML document that assigns a name and a set of
// source file globs to each library, and fixes the order in which
// libraries register with a deps.Registry.
//
// The map is collaborator input to the elaboration core, not part of it --
// elaboration never re-reads it -- so this package's only job is turning the
// TOML file into an ordered list of resolved library entries.
package libmap

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml"
)

// tomlLibraryMapFile mirrors the on-disk shape of a library map.
type tomlLibraryMapFile struct {
	Library []*tomlLibraryEntry `toml:"library"`
}

// tomlLibraryEntry is one [[library]] table.
type tomlLibraryEntry struct {
	Name     string   `toml:"name"`
	Files    []string `toml:"files"`
	Priority int      `toml:"priority"`
	Default  bool     `toml:"default"`
}

// Entry is one resolved library from a library map: a name, the ordered and
// deduplicated set of source files its globs matched, the priority that
// breaks ties between libraries declaring the same cell name, and whether it
// is the map's default library.
type Entry struct {
	Name      string
	Files     []string
	Priority  int
	IsDefault bool
}

// Load reads the library map file at path, validates it, and resolves every
// library's file globs relative to the map file's own directory. Libraries
// are returned in declaration order, which establishes the registration
// order a caller should feed to deps.Registry.Register.
func Load(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tlm := &tomlLibraryMapFile{}
	if err := toml.Unmarshal(buff, tlm); err != nil {
		return nil, fmt.Errorf("malformed library map %s: %w", path, err)
	}

	if len(tlm.Library) == 0 {
		return nil, fmt.Errorf("library map %s declares no libraries", path)
	}

	baseDir := filepath.Dir(path)
	seen := make(map[string]bool, len(tlm.Library))
	defaultSeen := false

	entries := make([]*Entry, 0, len(tlm.Library))
	for _, tl := range tlm.Library {
		if err := validateEntry(tl); err != nil {
			return nil, fmt.Errorf("library map %s: %w", path, err)
		}
		if seen[tl.Name] {
			return nil, fmt.Errorf("library map %s: library `%s` declared more than once", path, tl.Name)
		}
		seen[tl.Name] = true

		if tl.Default {
			if defaultSeen {
				return nil, fmt.Errorf("library map %s: more than one library marked default", path)
			}
			defaultSeen = true
		}

		files, err := resolveGlobs(baseDir, tl.Files)
		if err != nil {
			return nil, fmt.Errorf("library map %s: resolving files for `%s`: %w", path, tl.Name, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("library map %s: library `%s` matched no source files", path, tl.Name)
		}

		entries = append(entries, &Entry{
			Name:      tl.Name,
			Files:     files,
			Priority:  tl.Priority,
			IsDefault: tl.Default,
		})
	}

	return entries, nil
}

// validateEntry checks the per-library fields of the map before any
// filesystem globbing is attempted.
func validateEntry(tl *tomlLibraryEntry) error {
	if tl.Name == "" {
		return errors.New("library entry is missing a name")
	}
	if !isValidLibraryName(tl.Name) {
		return fmt.Errorf("library name `%s` is not a valid identifier", tl.Name)
	}
	if len(tl.Files) == 0 {
		return fmt.Errorf("library `%s` declares no file globs", tl.Name)
	}
	return nil
}

// resolveGlobs expands every relative glob pattern against baseDir (so the
// paths are absolute only when baseDir or the pattern is), deduplicating matches shared between overlapping patterns and
// returning them in a stable, sorted order.
func resolveGlobs(baseDir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(pattern) {
			full = filepath.Join(baseDir, pattern)
		}

		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern `%s`: %w", pattern, err)
		}

		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// isValidLibraryName reports whether idstr is a valid library identifier:
// a letter or underscore followed by letters, digits, or underscores.
func isValidLibraryName(idstr string) bool {
	if idstr[0] != '_' && !('a' <= idstr[0] && idstr[0] <= 'z') && !('A' <= idstr[0] && idstr[0] <= 'Z') {
		return false
	}
	for _, c := range idstr[1:] {
		if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			continue
		}
		return false
	}
	return true
}
