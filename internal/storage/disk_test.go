package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*DiskStore, string) {
	t.Helper()
	root := t.TempDir()
	s, err := NewDiskStore(root, "/uploads/")
	require.NoError(t, err)
	return s, root
}

func TestDiskStorePut(t *testing.T) {
	s, root := newTestStore(t)

	url, err := s.Put(context.Background(), "abc.jpg", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photos/abc.jpg", url)

	got, err := os.ReadFile(filepath.Join(root, "photos", "abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestDiskStoreRejectsPaths(t *testing.T) {
	s, _ := newTestStore(t)

	for _, name := range []string{"", "..", "../evil.jpg", "a/b.jpg", `a\b.jpg`} {
		_, err := s.Put(context.Background(), name, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestDiskStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.Put(ctx, "one.jpg", []byte("1"))
	require.NoError(t, err)
	_, err = s.Put(ctx, "two.jpg", []byte("22"))
	require.NoError(t, err)

	objects, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 2)

	require.NoError(t, s.Delete(ctx, "one.jpg"))
	require.NoError(t, s.Delete(ctx, "one.jpg"))

	objects, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "two.jpg", objects[0].Name)
	assert.Equal(t, "/uploads/photos/two.jpg", objects[0].URL)
	assert.Equal(t, int64(2), objects[0].Size)
}

func TestDiskStoreNameFromURL(t *testing.T) {
	s, _ := newTestStore(t)

	name, ok := s.NameFromURL("/uploads/photos/abc.jpg")
	assert.True(t, ok)
	assert.Equal(t, "abc.jpg", name)

	name, ok = s.NameFromURL("http://clinic.example:8080/uploads/photos/abc.jpg")
	assert.True(t, ok)
	assert.Equal(t, "abc.jpg", name)

	_, ok = s.NameFromURL("https://elsewhere.example/photos/abc.jpg")
	assert.False(t, ok)
	_, ok = s.NameFromURL("/uploads/photos/../secret")
	assert.False(t, ok)
}

func TestDiskStoreHandler(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Put(context.Background(), "abc.jpg", []byte("jpegbytes"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/photos/abc.jpg", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpegbytes", rec.Body.String())
}
