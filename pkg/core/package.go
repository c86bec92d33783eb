// pkg/core/package.go
package core

import (
	"sort"
	"strings"
)

// DevExtra is the optional-dependency group holding contributor tooling
const DevExtra = "dev"

// Descriptor is the package metadata record handed to the sdist writer.
// It is built once per invocation and never mutated afterwards.
type Descriptor struct {
	Name                string                   `yaml:"name" json:"name"`
	Version             string                   `yaml:"version" json:"version"`
	Description         string                   `yaml:"description" json:"description"`
	LongDescription     string                   `yaml:"long_description,omitempty" json:"long_description,omitempty"`
	LongDescriptionType string                   `yaml:"long_description_content_type,omitempty" json:"long_description_content_type,omitempty"`
	Author              string                   `yaml:"author" json:"author"`
	AuthorEmail         string                   `yaml:"author_email" json:"author_email"`
	License             string                   `yaml:"license" json:"license"`
	Keywords            string                   `yaml:"keywords" json:"keywords"`
	URL                 string                   `yaml:"url" json:"url"`
	DownloadURL         string                   `yaml:"download_url" json:"download_url"`
	Dependencies        []Requirement            `yaml:"dependencies" json:"dependencies"`
	DevDependencies     []Requirement            `yaml:"dev_dependencies" json:"dev_dependencies"`
	Extras              map[string][]Requirement `yaml:"extras,omitempty" json:"extras,omitempty"`
	Classifiers         []string                 `yaml:"classifiers" json:"classifiers"`
	Packages            []string                 `yaml:"packages" json:"packages"`
	Revision            string                   `yaml:"revision,omitempty" json:"revision,omitempty"`
}

// ExtraNames returns every optional-dependency group name, dev included, sorted
func (d *Descriptor) ExtraNames() []string {
	var names []string
	if len(d.DevDependencies) > 0 {
		names = append(names, DevExtra)
	}
	for name := range d.Extras {
		if name == DevExtra {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtraRequirements returns the requirements of a named optional-dependency group
func (d *Descriptor) ExtraRequirements(name string) []Requirement {
	if name == DevExtra {
		return d.DevDependencies
	}
	return d.Extras[name]
}

// TopLevel returns the sorted set of top-level packages
func (d *Descriptor) TopLevel() []string {
	seen := make(map[string]bool)
	var top []string
	for _, pkg := range d.Packages {
		root, _, _ := strings.Cut(pkg, ".")
		if !seen[root] {
			seen[root] = true
			top = append(top, root)
		}
	}
	sort.Strings(top)
	return top
}

// ArchiveBase is the conventional "<name>-<version>" stem used for artifacts
func (d *Descriptor) ArchiveBase() string {
	return d.Name + "-" + d.Version
}

// UniqueStrings drops duplicates while keeping first-seen order
func UniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
