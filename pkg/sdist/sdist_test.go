// pkg/sdist/sdist_test.go
package sdist

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"zombiezen.com/go/nix/nar"

	"github.com/logicalclocks/hopsdist/pkg/core"
)

func testDescriptor() *core.Descriptor {
	return &core.Descriptor{
		Name:         "hopsworks",
		Version:      "1.2.3",
		License:      "GNU Affero General Public License v3",
		Dependencies: []core.Requirement{{Name: "requests"}},
		Packages:     []string{"hopsworks", "hopsworks.core"},
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func testProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"setup.py":                        "from setuptools import setup\n",
		"README.md":                       "# hopsworks\n",
		"hopsworks/__init__.py":           "",
		"hopsworks/version.py":            "__version__ = \"1.2.3\"\n",
		"hopsworks/core/__init__.py":      "",
		"hopsworks/core/api.py":           "def f():\n    pass\n",
		"hopsworks/__pycache__/api.pyc":   "junk",
		"hopsworks.egg-info/PKG-INFO":     "stale",
		"build/lib/hopsworks/__init__.py": "",
		".git/HEAD":                       "ref: refs/heads/main\n",
		"notes/private.txt":               "secret",
		".gitignore":                      "notes/\n",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "run.sh"), []byte("#!/bin/sh\n"), 0755))
	return root
}

// members lists archive member names and regular file contents
func members(t *testing.T, path string, format Format) ([]string, map[string]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var names []string
	contents := make(map[string]string)

	readTar := func(r io.Reader) {
		tr := tar.NewReader(r)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				return
			}
			require.NoError(t, err)
			names = append(names, hdr.Name)
			if hdr.Typeflag == tar.TypeReg {
				body, err := io.ReadAll(tr)
				require.NoError(t, err)
				contents[hdr.Name] = string(body)
				assert.Equal(t, Epoch.Unix(), hdr.ModTime.Unix())
			}
		}
	}

	switch format {
	case FormatGzTar:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		require.NoError(t, err)
		readTar(gz)
	case FormatXzTar:
		xzr, err := xz.NewReader(bytes.NewReader(data))
		require.NoError(t, err)
		readTar(xzr)
	case FormatZstdTar:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer zr.Close()
		readTar(zr)
	case FormatZip:
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		for _, f := range zr.File {
			names = append(names, f.Name)
			if strings.HasSuffix(f.Name, "/") {
				continue
			}
			rc, err := f.Open()
			require.NoError(t, err)
			body, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			contents[f.Name] = string(body)
		}
	case FormatNar:
		nr := nar.NewReader(bufio.NewReader(bytes.NewReader(data)))
		for {
			hdr, err := nr.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			if hdr.Path == "" {
				continue
			}
			if hdr.Mode.IsDir() {
				names = append(names, hdr.Path+"/")
				continue
			}
			names = append(names, hdr.Path)
			body, err := io.ReadAll(nr)
			require.NoError(t, err)
			contents[hdr.Path] = string(body)
		}
	}

	return names, contents
}

func TestWrite(t *testing.T) {
	root := testProject(t)
	out := filepath.Join(t.TempDir(), "dist")

	path, err := Write(context.Background(), testDescriptor(), root, &Options{OutputDir: out})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "hopsworks-1.2.3.tar.gz"), path)

	names, contents := members(t, path, FormatGzTar)
	assert.Equal(t, []string{
		"hopsworks-1.2.3/",
		"hopsworks-1.2.3/.gitignore",
		"hopsworks-1.2.3/PKG-INFO",
		"hopsworks-1.2.3/README.md",
		"hopsworks-1.2.3/hopsworks/",
		"hopsworks-1.2.3/hopsworks/__init__.py",
		"hopsworks-1.2.3/hopsworks/core/",
		"hopsworks-1.2.3/hopsworks/core/__init__.py",
		"hopsworks-1.2.3/hopsworks/core/api.py",
		"hopsworks-1.2.3/hopsworks/version.py",
		"hopsworks-1.2.3/hopsworks.egg-info/",
		"hopsworks-1.2.3/hopsworks.egg-info/PKG-INFO",
		"hopsworks-1.2.3/hopsworks.egg-info/SOURCES.txt",
		"hopsworks-1.2.3/hopsworks.egg-info/dependency_links.txt",
		"hopsworks-1.2.3/hopsworks.egg-info/requires.txt",
		"hopsworks-1.2.3/hopsworks.egg-info/top_level.txt",
		"hopsworks-1.2.3/run.sh",
		"hopsworks-1.2.3/setup.py",
	}, names)

	assert.Contains(t, contents["hopsworks-1.2.3/PKG-INFO"], "Version: 1.2.3\n")
	assert.Equal(t, contents["hopsworks-1.2.3/PKG-INFO"], contents["hopsworks-1.2.3/hopsworks.egg-info/PKG-INFO"])
	assert.Equal(t, "requests\n", contents["hopsworks-1.2.3/hopsworks.egg-info/requires.txt"])
	assert.Equal(t, "__version__ = \"1.2.3\"\n", contents["hopsworks-1.2.3/hopsworks/version.py"])
}

func TestWriteModes(t *testing.T) {
	root := testProject(t)
	path, err := Write(context.Background(), testDescriptor(), root, &Options{OutputDir: t.TempDir()})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	modes := make(map[string]int64)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		modes[hdr.Name] = hdr.Mode
		assert.Equal(t, 0, hdr.Uid)
		assert.Empty(t, hdr.Uname)
	}

	assert.Equal(t, int64(0755), modes["hopsworks-1.2.3/run.sh"])
	assert.Equal(t, int64(0644), modes["hopsworks-1.2.3/setup.py"])
	assert.Equal(t, int64(0755), modes["hopsworks-1.2.3/hopsworks/"])
}

func TestWriteFormatsReproducible(t *testing.T) {
	root := testProject(t)

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			first, err := Write(context.Background(), testDescriptor(), root, &Options{OutputDir: t.TempDir(), Format: format})
			require.NoError(t, err)
			second, err := Write(context.Background(), testDescriptor(), root, &Options{OutputDir: t.TempDir(), Format: format})
			require.NoError(t, err)

			assert.True(t, strings.HasSuffix(first, format.Ext()))

			a, err := os.ReadFile(first)
			require.NoError(t, err)
			b, err := os.ReadFile(second)
			require.NoError(t, err)
			assert.Equal(t, a, b)

			names, contents := members(t, first, format)
			assert.Contains(t, names, "hopsworks-1.2.3/PKG-INFO")
			assert.Contains(t, names, "hopsworks-1.2.3/hopsworks/")
			assert.Equal(t, "def f():\n    pass\n", contents["hopsworks-1.2.3/hopsworks/core/api.py"])
		})
	}
}

func TestWriteOutputInsideRoot(t *testing.T) {
	root := testProject(t)
	out := filepath.Join(root, "artifacts")

	_, err := Write(context.Background(), testDescriptor(), root, &Options{OutputDir: out})
	require.NoError(t, err)

	// A second build must not pack the first artifact
	path, err := Write(context.Background(), testDescriptor(), root, &Options{OutputDir: out})
	require.NoError(t, err)

	names, _ := members(t, path, FormatGzTar)
	for _, name := range names {
		assert.NotContains(t, name, "artifacts")
	}
}

func TestWriteOutputIsRoot(t *testing.T) {
	root := testProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hopsworks-1.2.3.tar.gz.123.tmp"), []byte("partial"), 0644))

	first, err := Write(context.Background(), testDescriptor(), root, &Options{OutputDir: root})
	require.NoError(t, err)
	want, err := os.ReadFile(first)
	require.NoError(t, err)

	_, err = Write(context.Background(), testDescriptor(), root, &Options{OutputDir: root, Format: FormatZip})
	require.NoError(t, err)

	second, err := Write(context.Background(), testDescriptor(), root, &Options{OutputDir: root})
	require.NoError(t, err)
	got, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	names, _ := members(t, second, FormatGzTar)
	assert.NotContains(t, names, "hopsworks-1.2.3/hopsworks-1.2.3.tar.gz")
	assert.NotContains(t, names, "hopsworks-1.2.3/hopsworks-1.2.3.zip")
	assert.NotContains(t, names, "hopsworks-1.2.3/.hopsworks-1.2.3.tar.gz.123.tmp")
	assert.Contains(t, names, "hopsworks-1.2.3/setup.py")
}

func TestOutputIgnore(t *testing.T) {
	root := t.TempDir()

	assert.Equal(t, []string{"/dist/"}, outputIgnore(root, filepath.Join(root, "dist"), "x-1.0"))
	assert.Nil(t, outputIgnore(root, filepath.Join(filepath.Dir(root), "elsewhere"), "x-1.0"))

	rules := outputIgnore(root, root, "x-1.0")
	assert.Contains(t, rules, "/x-1.0.tar.gz")
	assert.Contains(t, rules, "/x-1.0.nar")
	assert.Contains(t, rules, "/.x-1.0.zip.*.tmp")
}

func TestWriteExclude(t *testing.T) {
	root := testProject(t)
	path, err := Write(context.Background(), testDescriptor(), root, &Options{
		OutputDir: t.TempDir(),
		Exclude:   []string{"*.md", "/run.sh"},
	})
	require.NoError(t, err)

	names, _ := members(t, path, FormatGzTar)
	assert.NotContains(t, names, "hopsworks-1.2.3/README.md")
	assert.NotContains(t, names, "hopsworks-1.2.3/run.sh")
	assert.Contains(t, names, "hopsworks-1.2.3/setup.py")
}

func TestWriteFailureLeavesNothing(t *testing.T) {
	root := testProject(t)
	out := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Write(ctx, testDescriptor(), root, &Options{OutputDir: out})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrArtifact))
	assert.True(t, errors.Is(err, context.Canceled))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteUnknownFormat(t *testing.T) {
	_, err := Write(context.Background(), testDescriptor(), testProject(t), &Options{OutputDir: t.TempDir(), Format: "rar"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrArtifact))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XZTAR ")
	require.NoError(t, err)
	assert.Equal(t, FormatXzTar, f)
	assert.Equal(t, ".tar.xz", f.Ext())

	_, err = ParseFormat("bztar")
	assert.Error(t, err)
}

func TestSortEntries(t *testing.T) {
	entries := []*entry{{name: "a.txt"}, {name: "a/b"}, {name: "a"}, {name: "B"}}
	sortEntries(entries)

	var got []string
	for _, e := range entries {
		got = append(got, e.name)
	}
	assert.Equal(t, []string{"B", "a", "a/b", "a.txt"}, got)
}
