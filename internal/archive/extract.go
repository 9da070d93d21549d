package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// ErrUnsafePath is returned for entries that would land outside the
// destination directory
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Extensions lists the archive suffixes Extract understands, longest first
var Extensions = []string{".tar.gz", ".tgz", ".tar"}

// Name returns the archive file name without its archive suffix and
// whether the name carries one of Extensions
func Name(filename string) (string, bool) {
	base := filepath.Base(filename)
	lower := strings.ToLower(base)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) && len(base) > len(ext) {
			return base[:len(base)-len(ext)], true
		}
	}
	return "", false
}

// Extractor unpacks tar archives into a filesystem
type Extractor struct {
	fs afero.Fs
}

// NewExtractor creates an extractor working on fs
func NewExtractor(fs afero.Fs) *Extractor {
	return &Extractor{fs: fs}
}

// Extract unpacks archivePath into destDir, creating destDir if needed.
// Gzip compression is detected from the file name.
func (e *Extractor) Extract(archivePath, destDir string) error {
	f, err := e.fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	lower := strings.ToLower(archivePath)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	if err := e.fs.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := e.fs.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := e.writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		default:
			// links, devices and fifos have no place in a profile bundle
		}
	}
}

// writeFile copies one archive entry to target
func (e *Extractor) writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := e.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}

	if perm == 0 {
		perm = 0o644
	}
	out, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return out.Close()
}

// safeJoin joins name under dir, rejecting absolute and parent paths
func safeJoin(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(dir, clean), nil
}
