package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"petcare-inventory-api/internal/imaging"
	"petcare-inventory-api/internal/model"
	"petcare-inventory-api/internal/repository"
	"petcare-inventory-api/internal/storage"
	"petcare-inventory-api/pkg/uid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingStore fails the test if Put is reached.
type countingStore struct {
	storage.BlobStore
	puts int
}

func (s *countingStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	s.puts++
	return s.BlobStore.Put(ctx, name, data)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func newDiskStore(t *testing.T) (*storage.DiskStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewDiskStore(root, "/uploads")
	require.NoError(t, err)
	return store, root
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	disk, _ := newDiskStore(t)
	store := &countingStore{BlobStore: disk}
	svc := NewPhotoService(store, zap.NewNop())

	for _, data := range [][]byte{nil, {}} {
		url, err := svc.Upload(context.Background(), data, "photo.png")
		assert.Empty(t, url)
		assert.ErrorIs(t, err, ErrNoFile)
		assert.EqualError(t, err, "no file uploaded")
	}
	assert.Zero(t, store.puts)
}

func TestUploadStoresUnderGeneratedName(t *testing.T) {
	disk, root := newDiskStore(t)
	svc := NewPhotoService(disk, zap.NewNop())

	url, err := svc.Upload(context.Background(), pngBytes(t), "../../etc/passwd")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/photos/"), url)
	name := strings.TrimPrefix(url, "/uploads/photos/")
	assert.True(t, strings.HasSuffix(name, imaging.Extension))
	assert.True(t, uid.IsValid(strings.TrimSuffix(name, imaging.Extension)))

	_, err = os.Stat(filepath.Join(root, "photos", name))
	assert.NoError(t, err)
}

func TestUploadNamesAreUnique(t *testing.T) {
	disk, _ := newDiskStore(t)
	svc := NewPhotoService(disk, zap.NewNop())

	first, err := svc.Upload(context.Background(), pngBytes(t), "same.png")
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), pngBytes(t), "same.png")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestUploadRejectsNonImage(t *testing.T) {
	disk, _ := newDiskStore(t)
	store := &countingStore{BlobStore: disk}
	svc := NewPhotoService(store, zap.NewNop())

	_, err := svc.Upload(context.Background(), []byte("just some text"), "notes.txt")

	var unsupported *imaging.UnsupportedFormatError
	assert.True(t, errors.As(err, &unsupported))
	assert.Zero(t, store.puts)
}

func TestPhotoJanitorRemovesOnlyOldOrphans(t *testing.T) {
	ctx := context.Background()
	disk, root := newDiskStore(t)
	repo := repository.NewMemoryInventoryRepository()

	keptURL, err := disk.Put(ctx, "kept.jpg", []byte("k"))
	require.NoError(t, err)
	_, err = disk.Put(ctx, "orphan.jpg", []byte("o"))
	require.NoError(t, err)
	_, err = disk.Put(ctx, "fresh.jpg", []byte("f"))
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	for _, name := range []string{"kept.jpg", "orphan.jpg"} {
		require.NoError(t, os.Chtimes(filepath.Join(root, "photos", name), old, old))
	}

	require.NoError(t, repo.Add(ctx, &model.InventoryItem{ID: "1", Name: "x", PhotoURL: &keptURL}))

	janitor := NewPhotoJanitor(repo, disk, JanitorConfig{MinAge: time.Hour}, zap.NewNop())
	removed, err := janitor.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	objects, err := disk.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(objects))
	for _, o := range objects {
		names = append(names, o.Name)
	}
	assert.ElementsMatch(t, []string{"kept.jpg", "fresh.jpg"}, names)
}

func TestPhotoJanitorKeepsAbsoluteURLReference(t *testing.T) {
	ctx := context.Background()
	disk, root := newDiskStore(t)
	repo := repository.NewMemoryInventoryRepository()

	_, err := disk.Put(ctx, "x.jpg", []byte("x"))
	require.NoError(t, err)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "photos", "x.jpg"), old, old))

	absolute := "http://clinic.example/uploads/photos/x.jpg"
	require.NoError(t, repo.Add(ctx, &model.InventoryItem{ID: "1", Name: "x", PhotoURL: &absolute}))

	janitor := NewPhotoJanitor(repo, disk, JanitorConfig{MinAge: time.Hour}, zap.NewNop())
	removed, err := janitor.RunNow(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = os.Stat(filepath.Join(root, "photos", "x.jpg"))
	assert.NoError(t, err)
}

func TestPhotoJanitorStartStop(t *testing.T) {
	disk, _ := newDiskStore(t)
	janitor := NewPhotoJanitor(repository.NewMemoryInventoryRepository(), disk, JanitorConfig{Interval: time.Millisecond}, zap.NewNop())

	janitor.Start()
	janitor.Start()
	time.Sleep(5 * time.Millisecond)
	janitor.Stop()
	janitor.Stop()
}
