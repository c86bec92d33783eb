// pkg/metadata/pkginfo.go
package metadata

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/logicalclocks/hopsdist/pkg/core"
)

// MetadataVersion is the core metadata version emitted in PKG-INFO
const MetadataVersion = "2.1"

// WritePKGInfo writes the PKG-INFO document for d
func WritePKGInfo(w io.Writer, d *core.Descriptor) error {
	bw := bufio.NewWriter(w)

	header := func(key, value string) {
		// Multi-line values are folded with an 8-space continuation
		value = strings.ReplaceAll(value, "\n", "\n        ")
		fmt.Fprintf(bw, "%s: %s\n", key, value)
	}

	header("Metadata-Version", MetadataVersion)
	header("Name", d.Name)
	header("Version", d.Version)
	header("Summary", orUnknown(d.Description))
	header("Home-page", orUnknown(d.URL))
	if d.DownloadURL != "" {
		header("Download-URL", d.DownloadURL)
	}
	header("Author", orUnknown(d.Author))
	header("Author-email", orUnknown(d.AuthorEmail))
	header("License", orUnknown(d.License))
	if d.Keywords != "" {
		header("Keywords", d.Keywords)
	}
	for _, c := range d.Classifiers {
		header("Classifier", c)
	}
	for _, req := range d.Dependencies {
		header("Requires-Dist", req.String())
	}
	for _, extra := range d.ExtraNames() {
		header("Provides-Extra", extra)
		for _, req := range d.ExtraRequirements(extra) {
			header("Requires-Dist", withExtraMarker(req, extra))
		}
	}
	if d.LongDescriptionType != "" {
		header("Description-Content-Type", d.LongDescriptionType)
	}

	if d.LongDescription != "" {
		fmt.Fprintf(bw, "\n%s", d.LongDescription)
		if !strings.HasSuffix(d.LongDescription, "\n") {
			bw.WriteString("\n")
		}
	}

	return bw.Flush()
}

// PKGInfo renders PKG-INFO into memory
func PKGInfo(d *core.Descriptor) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail
	_ = WritePKGInfo(&buf, d)
	return buf.Bytes()
}

func withExtraMarker(req core.Requirement, extra string) string {
	marker := fmt.Sprintf("extra == %q", extra)
	if req.Marker != "" {
		marker = fmt.Sprintf("(%s) and %s", req.Marker, marker)
	}
	req.Marker = marker
	return req.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
