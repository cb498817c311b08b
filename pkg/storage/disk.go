package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DiskStore writes uploads below a root directory of an afero filesystem and
// serves them under baseURL.
type DiskStore struct {
	fs      afero.Fs
	root    string
	baseURL string
}

// NewDiskStore creates a disk-backed blob store.
func NewDiskStore(fs afero.Fs, root, baseURL string) *DiskStore {
	return &DiskStore{
		fs:      fs,
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (d *DiskStore) Upload(ctx context.Context, objectPath string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	full := filepath.Join(d.root, filepath.FromSlash(key))
	if err := d.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage/disk: mkdir for %s: %w", key, err)
	}
	if err := afero.WriteFile(d.fs, full, data, 0o644); err != nil {
		return "", fmt.Errorf("storage/disk: write %s: %w", key, err)
	}
	return d.baseURL + "/" + path.Clean(key), nil
}
