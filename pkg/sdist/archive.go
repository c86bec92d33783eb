// pkg/sdist/archive.go
package sdist

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"zombiezen.com/go/nix/nar"
)

// Format is an archive format for the source distribution
type Format string

const (
	// FormatGzTar is a gzip-compressed tarball (.tar.gz)
	FormatGzTar Format = "gztar"
	// FormatXzTar is an xz-compressed tarball (.tar.xz)
	FormatXzTar Format = "xztar"
	// FormatZstdTar is a zstd-compressed tarball (.tar.zst)
	FormatZstdTar Format = "zstdtar"
	// FormatZip is a deflate zip archive (.zip)
	FormatZip Format = "zip"
	// FormatNar is a Nix archive (.nar)
	FormatNar Format = "nar"
)

var formatExt = map[Format]string{
	FormatGzTar:   ".tar.gz",
	FormatXzTar:   ".tar.xz",
	FormatZstdTar: ".tar.zst",
	FormatZip:     ".zip",
	FormatNar:     ".nar",
}

// Epoch is the timestamp stamped on every archive member. Zip cannot
// express anything earlier.
var Epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Formats returns the supported formats, sorted
func Formats() []Format {
	out := make([]Format, 0, len(formatExt))
	for f := range formatExt {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formatExt[f]; !ok {
		return "", fmt.Errorf("unsupported format %q (supported: %v)", s, Formats())
	}
	return f, nil
}

// Ext returns the file extension of the format, including the leading dot
func (f Format) Ext() string {
	return formatExt[f]
}

// entry is one member of the archive
type entry struct {
	name string // slash-separated, no leading or trailing slash
	dir  bool
	mode fs.FileMode
	size int64
	data []byte // generated content
	src  string // on-disk source when data is nil
}

func (e *entry) open() (io.ReadCloser, error) {
	if e.src == "" {
		return io.NopCloser(bytes.NewReader(e.data)), nil
	}
	return os.Open(e.src)
}

// normalizeMode keeps only the executable bit of the on-disk mode
func normalizeMode(mode fs.FileMode) fs.FileMode {
	if mode&0111 != 0 {
		return 0755
	}
	return 0644
}

// sortEntries orders entries component by component, so a directory is
// immediately followed by its own contents.
func sortEntries(entries []*entry) {
	sort.Slice(entries, func(i, j int) bool {
		a := strings.Split(entries[i].name, "/")
		b := strings.Split(entries[j].name, "/")
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}

// withParents adds the missing directory entries for every file
func withParents(files []*entry) []*entry {
	seen := make(map[string]bool)
	var out []*entry
	for _, f := range files {
		parts := strings.Split(f.name, "/")
		for i := 1; i < len(parts); i++ {
			dir := strings.Join(parts[:i], "/")
			if !seen[dir] {
				seen[dir] = true
				out = append(out, &entry{name: dir, dir: true, mode: 0755})
			}
		}
		out = append(out, f)
	}
	sortEntries(out)
	return out
}

func writeArchive(ctx context.Context, w io.Writer, format Format, entries []*entry) error {
	switch format {
	case FormatGzTar:
		gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return fmt.Errorf("creating gzip writer: %w", err)
		}
		return writeCompressedTar(ctx, gz, entries)
	case FormatXzTar:
		xzw, err := xz.NewWriter(w)
		if err != nil {
			return fmt.Errorf("creating xz writer: %w", err)
		}
		return writeCompressedTar(ctx, xzw, entries)
	case FormatZstdTar:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		return writeCompressedTar(ctx, zw, entries)
	case FormatZip:
		return writeZip(ctx, w, entries)
	case FormatNar:
		return writeNar(ctx, w, entries)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func writeCompressedTar(ctx context.Context, cw io.WriteCloser, entries []*entry) error {
	if err := writeTar(ctx, cw, entries); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("closing compressor: %w", err)
	}
	return nil
}

func writeTar(ctx context.Context, w io.Writer, entries []*entry) error {
	tw := tar.NewWriter(w)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		header := &tar.Header{
			Name:    e.name,
			Mode:    int64(e.mode.Perm()),
			ModTime: Epoch,
		}
		if e.dir {
			header.Name += "/"
			header.Typeflag = tar.TypeDir
		} else {
			header.Typeflag = tar.TypeReg
			header.Size = e.size
		}

		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("writing tar header for %s: %w", e.name, err)
		}
		if e.dir {
			continue
		}
		if err := copyEntry(tw, e); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar: %w", err)
	}
	return nil
}

func writeZip(ctx context.Context, w io.Writer, entries []*entry) error {
	zw := zip.NewWriter(w)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		header := &zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: Epoch,
		}
		if e.dir {
			header.Name += "/"
			header.Method = zip.Store
			header.SetMode(fs.ModeDir | e.mode.Perm())
		} else {
			header.SetMode(e.mode.Perm())
		}

		fw, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("writing zip header for %s: %w", e.name, err)
		}
		if e.dir {
			continue
		}
		if err := copyEntry(fw, e); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zip: %w", err)
	}
	return nil
}

func writeNar(ctx context.Context, w io.Writer, entries []*entry) error {
	nw := nar.NewWriter(w)

	if err := nw.WriteHeader(&nar.Header{Mode: fs.ModeDir | 0755}); err != nil {
		return fmt.Errorf("writing nar root: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		header := &nar.Header{Path: e.name}
		if e.dir {
			header.Mode = fs.ModeDir | 0755
		} else {
			header.Mode = e.mode.Perm()
			header.Size = e.size
		}

		if err := nw.WriteHeader(header); err != nil {
			return fmt.Errorf("writing nar header for %s: %w", e.name, err)
		}
		if e.dir {
			continue
		}
		if err := copyEntry(nw, e); err != nil {
			return err
		}
	}

	if err := nw.Close(); err != nil {
		return fmt.Errorf("closing nar: %w", err)
	}
	return nil
}

func copyEntry(w io.Writer, e *entry) error {
	rc, err := e.open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", e.name, err)
	}
	defer rc.Close()

	written, err := io.Copy(w, rc)
	if err != nil {
		return fmt.Errorf("writing %s: %w", e.name, err)
	}
	if written != e.size {
		return fmt.Errorf("size mismatch for %s: expected %d, got %d", e.name, e.size, written)
	}
	return nil
}
