// hopsdist.go
package hopsdist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/logicalclocks/hopsdist/pkg/core"
	"github.com/logicalclocks/hopsdist/pkg/discover"
	"github.com/logicalclocks/hopsdist/pkg/logger"
	"github.com/logicalclocks/hopsdist/pkg/manifest"
	"github.com/logicalclocks/hopsdist/pkg/sdist"
	"github.com/logicalclocks/hopsdist/pkg/vcs"
	"github.com/logicalclocks/hopsdist/pkg/version"
)

// Re-export core types for convenience
type (
	Descriptor  = core.Descriptor
	Requirement = core.Requirement
	Manifest    = manifest.Manifest
	Format      = sdist.Format
)

// Re-export archive formats
const (
	FormatGzTar   = sdist.FormatGzTar
	FormatXzTar   = sdist.FormatXzTar
	FormatZstdTar = sdist.FormatZstdTar
	FormatZip     = sdist.FormatZip
	FormatNar     = sdist.FormatNar
)

// Config configures a Builder
type Config struct {
	// Root is the project root holding the version file and packages
	Root string

	// ManifestPath overrides manifest lookup (default: <Root>/hopsdist.toml,
	// then the built-in hopsworks manifest)
	ManifestPath string

	// Revision stamps the git HEAD revision into the descriptor
	Revision bool

	// Logger for progress messages (optional)
	Logger logger.Logger
}

// Builder assembles package descriptors and source distributions
type Builder struct {
	config   *Config
	manifest *manifest.Manifest
	logger   logger.Logger
}

// NewBuilder resolves the manifest and returns a Builder for the project
func NewBuilder(config *Config) (*Builder, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Root == "" {
		config.Root = "."
	}

	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}

	m, err := manifest.Resolve(config.Root, config.ManifestPath)
	if err != nil {
		return nil, err
	}

	if m.Source != "" {
		log.Debug("using manifest %s", m.Source)
	} else {
		log.Debug("using built-in manifest for %s", m.Name)
	}

	return &Builder{
		config:   config,
		manifest: m,
		logger:   log,
	}, nil
}

// Manifest returns the resolved manifest
func (b *Builder) Manifest() *manifest.Manifest {
	return b.manifest
}

// VersionFile returns the path of the version file
func (b *Builder) VersionFile() string {
	return filepath.Join(b.config.Root, filepath.FromSlash(b.manifest.VersionFile))
}

// LoadVersion reads the version from the version file
func (b *Builder) LoadVersion() (string, error) {
	v, err := version.Load(b.VersionFile())
	if err != nil {
		return "", err
	}
	if !version.IsSemver(v) {
		b.logger.Warn("version %q is not a semantic version", v)
	}
	return v, nil
}

// DiscoverPackages enumerates the importable packages below the root
func (b *Builder) DiscoverPackages() (discover.Set, error) {
	return discover.Packages(b.config.Root, &discover.Options{
		Exclude: b.manifest.ExcludePackages,
		Include: b.manifest.IncludePackages,
	})
}

// BuildDescriptor assembles the descriptor from the manifest, the version
// file, the package tree, the optional README and the optional git revision.
// It only reads from the filesystem.
func (b *Builder) BuildDescriptor() (*Descriptor, error) {
	d := &core.Descriptor{}
	if err := b.manifest.Apply(d); err != nil {
		return nil, core.ManifestError(b.manifest.Source, err)
	}

	v, err := b.LoadVersion()
	if err != nil {
		return nil, err
	}
	d.Version = v

	pkgs, err := b.DiscoverPackages()
	if err != nil {
		return nil, err
	}
	d.Packages = pkgs.Sorted()
	if len(d.Packages) == 0 {
		b.logger.Warn("no packages found below %s", b.config.Root)
	}

	if b.manifest.Readme != "" {
		readme := filepath.Join(b.config.Root, filepath.FromSlash(b.manifest.Readme))
		data, err := os.ReadFile(readme)
		if err != nil {
			return nil, core.ManifestError(readme, fmt.Errorf("reading readme: %w", err))
		}
		d.LongDescription = string(data)
		d.LongDescriptionType = contentType(readme)
	}

	if b.config.Revision {
		rev, err := vcs.Revision(b.config.Root)
		if err != nil {
			b.logger.Warn("reading git revision: %v", err)
		}
		d.Revision = rev
	}

	b.logger.Debug("descriptor %s %s: %d dependencies, %d packages", d.Name, d.Version, len(d.Dependencies), len(d.Packages))
	return d, nil
}

// SDistOptions configures WriteSDist
type SDistOptions struct {
	OutputDir string
	Format    Format
}

// WriteSDist writes the source distribution for d and returns its path
func (b *Builder) WriteSDist(ctx context.Context, d *Descriptor, opts *SDistOptions) (string, error) {
	if opts == nil {
		opts = &SDistOptions{}
	}
	return sdist.Write(ctx, d, b.config.Root, &sdist.Options{
		OutputDir: opts.OutputDir,
		Format:    opts.Format,
		Exclude:   b.manifest.SDistExclude,
		Logger:    b.logger,
	})
}

// Build runs BuildDescriptor followed by WriteSDist
func (b *Builder) Build(ctx context.Context, opts *SDistOptions) (*Descriptor, string, error) {
	d, err := b.BuildDescriptor()
	if err != nil {
		return nil, "", err
	}

	artifact, err := b.WriteSDist(ctx, d, opts)
	if err != nil {
		return nil, "", err
	}
	return d, artifact, nil
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".rst":
		return "text/x-rst"
	default:
		return "text/plain"
	}
}
