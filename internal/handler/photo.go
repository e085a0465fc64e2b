package handler

import (
	"errors"
	"io"
	"net/http"

	"petcare-inventory-api/internal/imaging"
	"petcare-inventory-api/internal/service"
	"petcare-inventory-api/pkg/apierror"
	"petcare-inventory-api/pkg/response"

	"go.uber.org/zap"
)

// PhotoHandler handles photo uploads.
type PhotoHandler struct {
	photoService *service.PhotoService
	maxBytes     int64
	logger       *zap.Logger
}

// UploadResponse is the body returned for a stored photo.
type UploadResponse struct {
	URL string `json:"url"`
}

// NewPhotoHandler creates a new photo handler. maxBytes bounds the whole
// multipart request.
func NewPhotoHandler(photoService *service.PhotoService, maxBytes int64, logger *zap.Logger) *PhotoHandler {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoHandler{photoService: photoService, maxBytes: maxBytes, logger: logger}
}

// Upload handles POST /api/v1/photos with a multipart "file" field.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	var (
		data     []byte
		fileName string
	)

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		fileName = header.Filename
		data, err = io.ReadAll(file)
		if err != nil {
			h.rejectBody(w, err)
			return
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// Fall through with no data; the service reports it.
	default:
		h.rejectBody(w, err)
		return
	}

	url, err := h.photoService.Upload(r.Context(), data, fileName)
	if err != nil {
		var unsupported *imaging.UnsupportedFormatError
		switch {
		case errors.Is(err, service.ErrNoFile):
			response.Error(w, apierror.BadRequest(err.Error()))
		case errors.As(err, &unsupported):
			response.Error(w, apierror.BadRequest(err.Error()))
		default:
			h.logger.Error("photo upload failed", zap.Error(err))
			response.Error(w, err)
		}
		return
	}

	response.Raw(w, http.StatusCreated, UploadResponse{URL: url})
}

func (h *PhotoHandler) rejectBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, apierror.PayloadTooLarge("file too large"))
		return
	}
	response.Error(w, apierror.BadRequest("invalid multipart form"))
}
