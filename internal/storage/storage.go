// Package storage keeps uploaded product photos and archived quote documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Buckets used by the application.
const (
	BucketProducts  = "produtos"
	BucketDocuments = "documentos"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// ErrInvalidName is returned for bucket or object names that would escape the root.
var ErrInvalidName = errors.New("storage: invalid object name")

// Store persists objects and reports the public URL they are served from.
type Store interface {
	Put(ctx context.Context, bucket, name string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, bucket, name string) (io.ReadCloser, error)
}

// Disk stores objects below Root and serves them under BaseURL.
type Disk struct {
	Root    string
	BaseURL string
}

// Put writes the object atomically through a temp file in the bucket directory.
func (d Disk) Put(ctx context.Context, bucket, name string, r io.Reader, _ string) (string, error) {
	target, err := d.resolve(bucket, name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("storage: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("storage: rename: %w", err)
	}
	return d.URL(bucket, name), nil
}

// Open returns a reader for an existing object.
func (d Disk) Open(_ context.Context, bucket, name string) (io.ReadCloser, error) {
	target, err := d.resolve(bucket, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	return f, nil
}

// URL returns the public URL of bucket/name.
func (d Disk) URL(bucket, name string) string {
	base := strings.TrimRight(d.BaseURL, "/")
	if base == "" {
		base = "/files"
	}
	return base + "/" + path.Join(bucket, name)
}

// Handler serves the stored files read-only.
func (d Disk) Handler() http.Handler {
	return http.FileServer(http.Dir(d.Root))
}

func (d Disk) resolve(bucket, name string) (string, error) {
	if strings.TrimSpace(d.Root) == "" {
		return "", errors.New("storage: root not configured")
	}
	clean := path.Clean("/" + bucket + "/" + name)
	parts := strings.SplitN(strings.TrimPrefix(clean, "/"), "/", 2)
	if len(parts) != 2 || parts[0] != bucket || parts[1] == "" || strings.Contains(bucket, "/") {
		return "", ErrInvalidName
	}
	return filepath.Join(d.Root, filepath.FromSlash(clean)), nil
}
