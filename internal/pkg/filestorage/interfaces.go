package filestorage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrInvalidReference is returned for references that do not belong to the store.
var ErrInvalidReference = errors.New("invalid file reference")

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Ext returns the lower-cased filename extension, including the dot.
func (u *Upload) Ext() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}

// BlobStorage stores uploaded pictures and hands back opaque references.
type BlobStorage interface {
	// Store saves upload under folder and returns its reference
	Store(ctx context.Context, folder string, upload *Upload) (string, error)

	// Delete removes the blob behind ref. Missing blobs are not an error.
	Delete(ctx context.Context, ref string) error

	// URLFor returns the public URL of ref, or "" for an empty reference
	URLFor(ref string) string
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// IsImage reports whether the upload looks like a picture by extension.
func IsImage(u *Upload) bool {
	return imageExtensions[u.Ext()]
}
