package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"petcare-inventory-api/internal/middleware"
	"petcare-inventory-api/internal/model"
	"petcare-inventory-api/internal/service"
	"petcare-inventory-api/pkg/apierror"
	"petcare-inventory-api/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxItemBodyBytes bounds create and update payloads.
const maxItemBodyBytes = 1 << 20

// InventoryHandler handles inventory-related HTTP requests.
type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// List handles GET /api/v1/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryService.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, items, int64(len(items)))
}

// Get handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.inventoryService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if item == nil {
		response.NotFound(w)
		return
	}
	response.OK(w, item)
}

// Search handles GET /api/v1/inventory/search?q=
func (h *InventoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.Error(w, apierror.BadRequest("search query must not be blank"))
		return
	}

	items, err := h.inventoryService.Search(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, items, int64(len(items)))
}

// Create handles POST /api/v1/inventory
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	item, err := h.inventoryService.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, item)
}

// Update handles PUT /api/v1/inventory/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	item, err := h.inventoryService.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if item == nil {
		response.NotFound(w)
		return
	}
	response.OK(w, item)
}

// Delete handles DELETE /api/v1/inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.inventoryService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		response.NotFound(w)
		return
	}
	response.NoContent(w)
}

// decode reads and validates an item payload. On failure it has already
// written the response.
func (h *InventoryHandler) decode(w http.ResponseWriter, r *http.Request) (*model.ItemRequest, bool) {
	var req model.ItemRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxItemBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return nil, false
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.Error(w, apierror.ValidationError("invalid inventory item", errs...))
		return nil, false
	}
	return &req, true
}

// fail maps service errors to responses. Anything unexpected is logged and
// reported as a generic 500.
func (h *InventoryHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var dup *service.DuplicateNameError
	if errors.As(err, &dup) {
		response.Duplicate(w, dup.Error())
		return
	}

	h.logger.Error("inventory request failed",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	response.Error(w, err)
}
