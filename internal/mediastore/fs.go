package mediastore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/mannaz/internal/apperr"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the assets directory
}

// Verify *FS satisfies Provider at compile time.
var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("mediastore: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("mediastore: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mediastore: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// FilePath returns the on-disk path for a media file.
func (f *FS) FilePath(kind Kind, id int64) string {
	return filepath.Join(f.root, string(kind), fmt.Sprintf("%d.png", id))
}

// URLPath returns the public path served under /assets.
func (f *FS) URLPath(kind Kind, id int64) string {
	return fmt.Sprintf("/assets/%s/%d.png", kind, id)
}

// Write atomically writes data: tmp file → fsync → rename.
// An id reused would silently clobber the existing file; ids are
// store-generated and unique, so that cannot happen in practice.
func (f *FS) Write(kind Kind, id int64, data []byte) error {
	abs := f.FilePath(kind, id)
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", apperr.ErrMedia, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mannaz-tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", apperr.ErrMedia, err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("%w: write temp: %v", apperr.ErrMedia, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: fsync: %v", apperr.ErrMedia, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", apperr.ErrMedia, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("%w: rename: %v", apperr.ErrMedia, err)
	}
	success = true
	return nil
}
