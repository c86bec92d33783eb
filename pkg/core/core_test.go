// pkg/core/core_test.go
package core

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		in   string
		want Requirement
	}{
		{"requests", Requirement{Name: "requests"}},
		{"pyhopshive[thrift]", Requirement{Name: "pyhopshive", Extras: []string{"thrift"}}},
		{"boto3 >= 1.9, <2", Requirement{Name: "boto3", Constraint: ">=1.9,<2"}},
		{"numpy (>=1.16)", Requirement{Name: "numpy", Constraint: ">=1.16"}},
		{"pywin32; sys_platform == \"win32\"", Requirement{Name: "pywin32", Marker: "sys_platform == \"win32\""}},
		{"a[x, y]==1.0 ; python_version<'3.8'", Requirement{Name: "a", Extras: []string{"x", "y"}, Constraint: "==1.0", Marker: "python_version<'3.8'"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRequirement(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequirementErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "[x]", "pkg[x", "pkg (>=1", "pkg foo", "pkg;"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRequirement(in)
			assert.Error(t, err)
		})
	}
}

func TestRequirementString(t *testing.T) {
	for _, in := range []string{"requests", "pyhopshive[thrift]", "boto3>=1.9,<2", "a[x,y]==1.0; python_version<'3.8'"} {
		req, err := ParseRequirement(in)
		require.NoError(t, err)
		assert.Equal(t, in, req.String())
	}
}

func TestDescriptorHelpers(t *testing.T) {
	d := &Descriptor{
		Name:            "hopsworks",
		Version:         "1.2.3",
		DevDependencies: []Requirement{{Name: "pytest"}},
		Extras:          map[string][]Requirement{"docs": {{Name: "mkdocs"}}},
		Packages:        []string{"hopsworks.core", "hopsworks", "tools.x"},
	}

	assert.Equal(t, []string{"dev", "docs"}, d.ExtraNames())
	assert.Equal(t, "pytest", d.ExtraRequirements("dev")[0].Name)
	assert.Equal(t, "mkdocs", d.ExtraRequirements("docs")[0].Name)
	assert.Equal(t, []string{"hopsworks", "tools"}, d.TopLevel())
	assert.Equal(t, "hopsworks-1.2.3", d.ArchiveBase())
	assert.Equal(t, []string{"b", "a"}, UniqueStrings([]string{"b", "a", "b"}))
}

func TestErrorKinds(t *testing.T) {
	err := VersionLoadError("hopsworks/version.py", fs.ErrNotExist)

	assert.True(t, errors.Is(err, ErrVersionLoad))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrPackageDiscovery))
	assert.Equal(t, "load version hopsworks/version.py: file does not exist", err.Error())

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "hopsworks/version.py", e.Path)
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("format: xztar\ndebug: true\n"), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "xztar", cfg.Format)
		assert.True(t, cfg.Debug)
		assert.Equal(t, "dist", cfg.OutputDir)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("format: [\n"), 0644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("save and reload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.yaml")
		cfg := DefaultConfig()
		cfg.OutputDir = "out"
		require.NoError(t, SaveConfig(cfg, path))

		loaded, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	})
}
