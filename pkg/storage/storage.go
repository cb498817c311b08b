// Package storage uploads product images to a blob store and returns the
// public URL of the stored object.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// BlobStore persists uploaded files.
type BlobStore interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

// ProductImagePath builds the object path for a product image, prefixed with
// the upload time so re-uploads of the same file name never collide.
func ProductImagePath(filename string, at time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)
	if name == "" || name == "." {
		name = "image"
	}
	return fmt.Sprintf("products/%d_%s", at.UnixMilli(), name)
}

func cleanObjectPath(objectPath string) (string, error) {
	cleaned := path.Clean("/" + objectPath)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("storage: empty object path")
	}
	return cleaned, nil
}
