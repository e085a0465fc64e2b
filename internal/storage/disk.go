package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs as files under <root>/photos and serves them from
// <urlPrefix>/photos/<name>.
type DiskStore struct {
	dir       string
	urlPrefix string
}

// NewDiskStore creates the photo directory if needed.
func NewDiskStore(root, urlPrefix string) (*DiskStore, error) {
	dir := filepath.Join(root, PhotoDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &DiskStore{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

func (s *DiskStore) photoURL(name string) string {
	return path.Join(s.urlPrefix, PhotoDir, name)
}

// Put writes data to a temp file and renames it into place.
func (s *DiskStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}

	return s.photoURL(name), nil
}

// Delete removes a stored blob.
func (s *DiskStore) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// List returns every stored blob, skipping in-progress temp files.
func (s *DiskStore) List(ctx context.Context) ([]Object, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		objects = append(objects, Object{
			Name:    e.Name(),
			URL:     s.photoURL(e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return objects, nil
}

// NameFromURL reverses photoURL(). Only the path is compared, so absolute URLs
// pointing at this server map to the same name as root-relative ones.
func (s *DiskStore) NameFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	prefix := path.Join(s.urlPrefix, PhotoDir) + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(u.Path, prefix)
	return name, validName(name)
}

// Handler serves stored photos. Mount it at the URL prefix.
func (s *DiskStore) Handler() http.Handler {
	prefix := path.Join(s.urlPrefix, PhotoDir) + "/"
	return http.StripPrefix(prefix, http.FileServer(http.Dir(s.dir)))
}

var _ BlobStore = (*DiskStore)(nil)
