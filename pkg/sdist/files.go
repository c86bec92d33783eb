// pkg/sdist/files.go
package sdist

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/logicalclocks/hopsdist/pkg/logger"
)

// DefaultIgnore lists paths never shipped in a source distribution
var DefaultIgnore = []string{
	".git/", ".hg/", ".svn/",
	"__pycache__/", "*.pyc", "*.pyo",
	".tox/", ".nox/", ".eggs/", "*.egg-info/",
	".pytest_cache/", ".mypy_cache/",
	".venv/", "venv/",
	"build/", "dist/",
	".DS_Store", "*.swp", "*.swo",
}

// source is one file of the project tree
type source struct {
	rel  string // slash-separated, relative to the project root
	path string // on-disk path
	mode fs.FileMode
	size int64
}

// loadIgnoreRules merges the default rules, the root .gitignore and extra
func loadIgnoreRules(root string, extra []string, log logger.Logger) *gitignore.GitIgnore {
	lines := append([]string{}, DefaultIgnore...)

	ignoreFilePath := filepath.Join(root, ".gitignore")
	if content, err := os.ReadFile(ignoreFilePath); err == nil {
		for _, line := range bytes.Split(content, []byte{'\n'}) {
			line = bytes.TrimRight(line, "\r")
			if len(line) > 0 && !bytes.HasPrefix(line, []byte{'#'}) {
				lines = append(lines, string(line))
			}
		}
	} else if !os.IsNotExist(err) {
		log.Warn("reading %s: %v", ignoreFilePath, err)
	}

	lines = append(lines, extra...)
	return gitignore.CompileIgnoreLines(lines...)
}

// collect walks root and returns the files to ship, sorted by path
func collect(root string, extra []string, log logger.Logger) ([]source, error) {
	ignore := loadIgnoreRules(root, extra, log)

	var sources []source
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignore.MatchesPath(rel + "/") {
				log.Debug("skipping directory %s/", rel)
				return filepath.SkipDir
			}
			return nil
		}

		if ignore.MatchesPath(rel) {
			log.Debug("skipping %s", rel)
			return nil
		}

		// Follow symlinks to files, leave everything else out
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			log.Warn("skipping %s: not a regular file", rel)
			return nil
		}

		sources = append(sources, source{
			rel:  rel,
			path: path,
			mode: info.Mode().Perm(),
			size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting sources: %w", err)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].rel < sources[j].rel })
	return sources, nil
}

// outputIgnore returns anchored ignore rules for the output directory dir
// when it lives inside root, so a build never packs its own output. When dir
// is root itself only the artifacts of base and their temporary files are
// excluded.
func outputIgnore(root, dir, base string) []string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil
	}

	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	if rel != "." {
		return []string{"/" + filepath.ToSlash(rel) + "/"}
	}

	var rules []string
	for _, format := range Formats() {
		name := base + format.Ext()
		rules = append(rules, "/"+name, "/."+name+".*.tmp")
	}
	return rules
}
