// pkg/discover/discover.go
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/logicalclocks/hopsdist/pkg/core"
)

// Marker is the file that turns a directory into an importable package
const Marker = "__init__.py"

// DefaultExcludes are package-name globs never reported
var DefaultExcludes = []string{"ez_setup", "*__pycache__"}

// Set is an unordered set of dotted package paths
type Set map[string]struct{}

// Add inserts a package path
func (s Set) Add(pkg string) {
	s[pkg] = struct{}{}
}

// Has reports whether pkg is in the set
func (s Set) Has(pkg string) bool {
	_, ok := s[pkg]
	return ok
}

// Sorted returns the set members in lexical order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for pkg := range s {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// Options narrows discovery
type Options struct {
	// Exclude holds additional package-name globs, e.g. "tests" or "tests.*"
	Exclude []string
	// Include, when non-empty, keeps only packages matching one of its globs
	Include []string
}

// Packages discovers the packages below rootDir on the local filesystem
func Packages(rootDir string, opts *Options) (Set, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, core.DiscoveryError(rootDir, err)
	}
	if !info.IsDir() {
		return nil, core.DiscoveryError(rootDir, errors.New("not a directory"))
	}

	return FS(os.DirFS(rootDir), opts)
}

// FS discovers the packages in fsys, treating its root as the source root.
//
// A directory is a package when it holds the marker file and its name has no
// dot. Directories that are not packages are not descended into. Excluded
// names are dropped from the result but their subpackages are still
// considered.
func FS(fsys fs.FS, opts *Options) (Set, error) {
	if opts == nil {
		opts = &Options{}
	}

	excludes := append(append([]string{}, DefaultExcludes...), opts.Exclude...)
	for _, pattern := range append(append([]string{}, excludes...), opts.Include...) {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, core.DiscoveryError(pattern, fmt.Errorf("invalid package pattern: %w", err))
		}
	}

	found := make(Set)
	if err := walk(fsys, ".", "", excludes, opts.Include, found); err != nil {
		return nil, err
	}
	return found, nil
}

func walk(fsys fs.FS, dir, prefix string, excludes, includes []string, found Set) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return core.DiscoveryError(dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.Contains(name, ".") {
			continue
		}

		sub := path.Join(dir, name)
		isPkg, err := hasMarker(fsys, sub)
		if err != nil {
			return err
		}
		if !isPkg {
			continue
		}

		pkg := name
		if prefix != "" {
			pkg = prefix + "." + name
		}

		if matchAny(pkg, includes, true) && !matchAny(pkg, excludes, false) {
			found.Add(pkg)
		}

		if err := walk(fsys, sub, pkg, excludes, includes, found); err != nil {
			return err
		}
	}

	return nil
}

func hasMarker(fsys fs.FS, dir string) (bool, error) {
	info, err := fs.Stat(fsys, path.Join(dir, Marker))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, core.DiscoveryError(dir, err)
	}
	return !info.IsDir(), nil
}

// matchAny reports whether pkg matches one of patterns; an empty pattern
// list yields empty.
func matchAny(pkg string, patterns []string, empty bool) bool {
	if len(patterns) == 0 {
		return empty
	}
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, pkg); ok {
			return true
		}
	}
	return false
}
