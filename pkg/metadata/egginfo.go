// pkg/metadata/egginfo.go
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/logicalclocks/hopsdist/pkg/core"
)

// File is a generated metadata file, relative to the archive base directory
type File struct {
	Name string
	Data []byte
}

// EggInfoDir returns the name of the egg-info directory for d
func EggInfoDir(d *core.Descriptor) string {
	return strings.ReplaceAll(d.Name, "-", "_") + ".egg-info"
}

// EggInfo renders the egg-info directory. sources are the slash-separated
// paths of the source files shipped in the distribution.
func EggInfo(d *core.Descriptor, sources []string) []File {
	dir := EggInfoDir(d)
	pkgInfo := PKGInfo(d)

	listing := append([]string{}, sources...)
	listing = append(listing,
		path.Join(dir, "PKG-INFO"),
		path.Join(dir, "SOURCES.txt"),
		path.Join(dir, "dependency_links.txt"),
		path.Join(dir, "requires.txt"),
		path.Join(dir, "top_level.txt"),
	)
	sort.Strings(listing)

	return []File{
		{Name: "PKG-INFO", Data: pkgInfo},
		{Name: path.Join(dir, "PKG-INFO"), Data: pkgInfo},
		{Name: path.Join(dir, "SOURCES.txt"), Data: lines(listing)},
		{Name: path.Join(dir, "dependency_links.txt"), Data: []byte("\n")},
		{Name: path.Join(dir, "requires.txt"), Data: Requires(d)},
		{Name: path.Join(dir, "top_level.txt"), Data: lines(d.TopLevel())},
	}
}

// Requires renders requires.txt: install requirements first, then one
// [section] per optional-dependency group.
func Requires(d *core.Descriptor) []byte {
	var buf bytes.Buffer
	for _, req := range d.Dependencies {
		buf.WriteString(req.String())
		buf.WriteByte('\n')
	}
	for _, extra := range d.ExtraNames() {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "[%s]\n", extra)
		for _, req := range d.ExtraRequirements(extra) {
			buf.WriteString(req.String())
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// Marshal renders the descriptor as yaml, json or pkg-info
func Marshal(d *core.Descriptor, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml", "":
		return yaml.Marshal(d)
	case "json":
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "pkg-info":
		return PKGInfo(d), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want yaml, json or pkg-info)", format)
	}
}

func lines(values []string) []byte {
	if len(values) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(values, "\n") + "\n")
}
