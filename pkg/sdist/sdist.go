// pkg/sdist/sdist.go

// Package sdist writes reproducible source distributions.
//
// An archive holds "<name>-<version>/" with the generated PKG-INFO, the
// egg-info directory and every project file not excluded by the ignore
// rules. Members are sorted, stamped with Epoch and carry normalised modes,
// so the same tree and descriptor always produce the same bytes.
package sdist

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/logicalclocks/hopsdist/pkg/core"
	"github.com/logicalclocks/hopsdist/pkg/logger"
	"github.com/logicalclocks/hopsdist/pkg/metadata"
)

// Options configures Write
type Options struct {
	OutputDir string        // Directory receiving the artifact (default "dist")
	Format    Format        // Archive format (default gztar)
	Exclude   []string      // Additional gitignore-style patterns
	Logger    logger.Logger // Optional
}

// FileName returns the artifact file name for d in format
func FileName(d *core.Descriptor, format Format) string {
	return d.ArchiveBase() + format.Ext()
}

// Write builds the source distribution of the project at root described by
// d and returns the artifact path. The artifact appears atomically: on any
// failure nothing is left in the output directory.
func Write(ctx context.Context, d *core.Descriptor, root string, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "dist"
	}
	if opts.Format == "" {
		opts.Format = FormatGzTar
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return "", core.ArtifactError(opts.OutputDir, err)
	}

	target := filepath.Join(opts.OutputDir, FileName(d, format))

	excludes := append([]string{}, opts.Exclude...)
	excludes = append(excludes, outputIgnore(root, opts.OutputDir, d.ArchiveBase())...)

	log.Debug("collecting sources from %s", root)
	sources, err := collect(root, excludes, log)
	if err != nil {
		return "", core.ArtifactError(target, err)
	}
	log.Debug("collected %d source files", len(sources))

	entries, err := buildEntries(d, sources)
	if err != nil {
		return "", core.ArtifactError(target, err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", core.ArtifactError(target, fmt.Errorf("creating output directory: %w", err))
	}

	if err := writeAtomic(ctx, target, format, entries); err != nil {
		return "", core.ArtifactError(target, err)
	}

	log.Info("wrote %s (%d members)", target, len(entries))
	return target, nil
}

// buildEntries lays out generated metadata and sources under the base directory
func buildEntries(d *core.Descriptor, sources []source) ([]*entry, error) {
	base := d.ArchiveBase()

	rels := make([]string, 0, len(sources))
	for _, src := range sources {
		rels = append(rels, src.rel)
	}

	generated := make(map[string]bool)
	var files []*entry
	for _, f := range metadata.EggInfo(d, rels) {
		generated[f.Name] = true
		files = append(files, &entry{
			name: path.Join(base, f.Name),
			mode: 0644,
			size: int64(len(f.Data)),
			data: f.Data,
		})
	}

	for _, src := range sources {
		// Generated metadata wins over stale copies in the tree
		if generated[src.rel] {
			continue
		}
		files = append(files, &entry{
			name: path.Join(base, src.rel),
			mode: normalizeMode(src.mode),
			size: src.size,
			src:  src.path,
		})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("nothing to archive")
	}
	return withParents(files), nil
}

func writeAtomic(ctx context.Context, target string, format Format, entries []*entry) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = writeArchive(ctx, tmp, format, entries); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
