package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/campusrecords/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates basePath if needed. baseURL is the public prefix the
// directory is served under.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Store writes upload to <basePath>/<folder>/<uuid><ext>; the reference is "<folder>/<uuid><ext>".
func (ls *LocalStorage) Store(ctx context.Context, folder string, upload *Upload) (string, error) {
	if upload == nil || upload.Content == nil {
		return "", fmt.Errorf("no file content to store")
	}

	folder = strings.Trim(path.Clean("/"+folder), "/")
	dir := filepath.Join(ls.basePath, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + upload.Ext()
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, upload.Content); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	ref := path.Join(folder, name)
	logger.Debug().Str("filename", upload.Filename).Str("ref", ref).Msg("File stored")
	return ref, nil
}

// Delete removes the file behind ref.
func (ls *LocalStorage) Delete(ctx context.Context, ref string) error {
	full, err := ls.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", full).Msg("File to delete does not exist")
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URLFor joins the public base URL and ref.
func (ls *LocalStorage) URLFor(ref string) string {
	if ref == "" {
		return ""
	}
	return ls.baseURL + "/" + strings.TrimLeft(ref, "/")
}

// resolve maps ref onto a path below basePath, rejecting anything that escapes it.
func (ls *LocalStorage) resolve(ref string) (string, error) {
	clean := path.Clean("/" + ref)
	if ref == "" || clean == "/" || strings.Contains(ref, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
