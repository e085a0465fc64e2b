package service

import (
	"context"
	"fmt"

	"petcare-inventory-api/internal/imaging"
	"petcare-inventory-api/internal/storage"
	"petcare-inventory-api/pkg/uid"

	"go.uber.org/zap"
)

// PhotoService stores uploaded item photos. It never touches inventory
// records; callers put the returned URL into a create or update request.
type PhotoService struct {
	store  storage.BlobStore
	logger *zap.Logger
}

// NewPhotoService creates a photo service over store.
func NewPhotoService(store storage.BlobStore, logger *zap.Logger) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoService{store: store, logger: logger}
}

// Upload normalizes data to JPEG, stores it under a fresh random name and
// returns its URL. fileName is only logged.
func (s *PhotoService) Upload(ctx context.Context, data []byte, fileName string) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFile
	}

	processed, err := imaging.Process(data)
	if err != nil {
		return "", err
	}

	name := uid.FileName(imaging.Extension)
	url, err := s.store.Put(ctx, name, processed)
	if err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}

	s.logger.Info("photo uploaded",
		zap.String("original_name", fileName),
		zap.String("stored_name", name),
		zap.Int("bytes", len(processed)),
	)
	return url, nil
}
