package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tush00nka/chathub/internal/model"

	"github.com/spf13/afero"
)

// Local stores files under a root directory of an afero filesystem.
type Local struct {
	fs      afero.Fs
	baseURL string
}

func NewLocal(fs afero.Fs, root, baseURL string) (*Local, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", root, err)
	}
	return &Local{fs: afero.NewBasePathFs(fs, root), baseURL: baseURL}, nil
}

func (l *Local) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) (*model.StoredFile, error) {
	if err := l.fs.MkdirAll(filepath.Dir(key), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dir for %s: %w", key, err)
	}

	f, err := l.fs.Create(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", key, err)
	}
	written, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = l.fs.Remove(key)
		return nil, fmt.Errorf("failed to write file %s: %w", key, err)
	}

	return &model.StoredFile{
		Path:        key,
		URL:         publicURL(l.baseURL, key),
		Filename:    filepath.Base(key),
		ContentType: contentType,
		Size:        written,
		CreatedAt:   time.Now(),
	}, nil
}

func (l *Local) Remove(_ context.Context, path string) error {
	if err := l.fs.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove file %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a file is stored under path.
func (l *Local) Exists(path string) bool {
	ok, err := afero.Exists(l.fs, path)
	return err == nil && ok
}

// Handler serves the stored files over HTTP.
func (l *Local) Handler() http.Handler {
	return http.FileServer(afero.NewHttpFs(l.fs))
}
