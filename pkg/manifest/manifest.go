// pkg/manifest/manifest.go
package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/logicalclocks/hopsdist/pkg/core"
)

// FileName is the manifest looked up in the project root
const FileName = "hopsdist.toml"

//go:embed defaults.toml
var defaults string

// Manifest is the declarative packaging manifest
type Manifest struct {
	Name            string              `toml:"name"`
	VersionFile     string              `toml:"version_file"`
	Description     string              `toml:"description"`
	Readme          string              `toml:"readme"`
	Author          string              `toml:"author"`
	AuthorEmail     string              `toml:"author_email"`
	License         string              `toml:"license"`
	Keywords        string              `toml:"keywords"`
	URL             string              `toml:"url"`
	DownloadURL     string              `toml:"download_url"`
	Dependencies    []string            `toml:"dependencies"`
	DevDependencies []string            `toml:"dev_dependencies"`
	Extras          map[string][]string `toml:"extras"`
	Classifiers     []string            `toml:"classifiers"`
	ExcludePackages []string            `toml:"exclude_packages"`
	IncludePackages []string            `toml:"include_packages"`
	SDistExclude    []string            `toml:"sdist_exclude"`

	// Source is where the manifest came from, "" for the built-in defaults
	Source string `toml:"-"`
}

// Default returns the built-in hopsworks manifest
func Default() *Manifest {
	m, err := Parse(defaults)
	if err != nil {
		panic(fmt.Sprintf("built-in manifest: %v", err))
	}
	return m
}

// Load reads and validates the manifest at path
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.ManifestError(path, err)
	}

	m, err := Parse(string(data))
	if err != nil {
		return nil, core.ManifestError(path, err)
	}
	m.Source = path
	return m, nil
}

// Resolve picks the manifest for root: the explicit path when given, then
// <root>/hopsdist.toml, then the built-in defaults.
func Resolve(root, explicit string) (*Manifest, error) {
	if explicit != "" {
		return Load(explicit)
	}

	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, core.ManifestError(path, err)
	}

	return Default(), nil
}

// Parse decodes a TOML manifest. Unknown keys are an error.
func Parse(data string) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(data, &m)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown manifest keys: %s", strings.Join(keys, ", "))
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks required fields and requirement syntax
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("manifest: name is required")
	}
	if strings.TrimSpace(m.VersionFile) == "" {
		return errors.New("manifest: version_file is required")
	}
	if filepath.IsAbs(m.VersionFile) {
		return fmt.Errorf("manifest: version_file %q must be relative to the project root", m.VersionFile)
	}

	if _, err := core.ParseRequirements(m.Dependencies); err != nil {
		return fmt.Errorf("manifest: dependencies: %w", err)
	}
	if _, err := core.ParseRequirements(m.DevDependencies); err != nil {
		return fmt.Errorf("manifest: dev_dependencies: %w", err)
	}
	for name, specs := range m.Extras {
		if name == core.DevExtra {
			return fmt.Errorf("manifest: extras.%s duplicates dev_dependencies", name)
		}
		if _, err := core.ParseRequirements(specs); err != nil {
			return fmt.Errorf("manifest: extras.%s: %w", name, err)
		}
	}

	return nil
}

// Apply copies the static manifest fields into d
func (m *Manifest) Apply(d *core.Descriptor) error {
	deps, err := core.ParseRequirements(m.Dependencies)
	if err != nil {
		return err
	}
	devDeps, err := core.ParseRequirements(m.DevDependencies)
	if err != nil {
		return err
	}

	var extras map[string][]core.Requirement
	if len(m.Extras) > 0 {
		extras = make(map[string][]core.Requirement, len(m.Extras))
		for name, specs := range m.Extras {
			reqs, err := core.ParseRequirements(specs)
			if err != nil {
				return err
			}
			extras[name] = reqs
		}
	}

	d.Name = m.Name
	d.Description = m.Description
	d.Author = m.Author
	d.AuthorEmail = m.AuthorEmail
	d.License = m.License
	d.Keywords = m.Keywords
	d.URL = m.URL
	d.DownloadURL = m.DownloadURL
	d.Dependencies = deps
	d.DevDependencies = devDeps
	d.Extras = extras
	d.Classifiers = core.UniqueStrings(m.Classifiers)

	return nil
}
