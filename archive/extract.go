package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cask-archive/cask/store"
)

// Extract reconstructs every archived file whose name shares request as
// a path prefix (an exact file or a whole subtree). Each file's name,
// with the request's parent directory stripped, is re-rooted under
// destDir, creating intermediate directories as needed. Returns the
// destination paths written.
//
// Writes are create-only: an existing destination fails with
// ErrCollision and is left untouched.
func (a *Archive) Extract(tx store.Tx, request, destDir string) ([]string, error) {
	request = path.Clean(filepath.ToSlash(request))

	names, err := a.List(tx, request)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no archived file matches %q", store.ErrNotFound, request)
	}

	base := path.Dir(request)
	var written []string
	for _, name := range names {
		data, err := a.GetFileData(tx, name)
		if err != nil {
			return written, err
		}
		rel := name
		if base != "." {
			rel = strings.TrimPrefix(name, base+"/")
		}
		dest := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := writeFileNew(dest, data); err != nil {
			return written, err
		}
		written = append(written, dest)
	}
	return written, nil
}

// writeFileNew writes data to p, creating parent directories. The file
// itself is opened with O_EXCL so an existing destination is never
// opened for write, truncated, or partially overwritten.
func writeFileNew(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("archive: create directory for %s: %w", p, err)
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrCollision, p)
		}
		return fmt.Errorf("archive: create %s: %w", p, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("archive: write %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("archive: close %s: %w", p, err)
	}
	return nil
}
