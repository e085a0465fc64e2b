package handler

import (
	"net/http"
	"runtime"
	"time"

	"petcare-inventory-api/internal/repository"
	"petcare-inventory-api/internal/service"
	"petcare-inventory-api/pkg/apierror"
	"petcare-inventory-api/pkg/response"

	"go.uber.org/zap"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	inventoryService *service.InventoryService
	inventoryRepo    repository.InventoryRepository
	janitor          *service.PhotoJanitor
	dbType           string
	startTime        time.Time
	logger           *zap.Logger
}

// AdminConfig wires an AdminHandler. Janitor is optional.
type AdminConfig struct {
	InventoryService *service.InventoryService
	InventoryRepo    repository.InventoryRepository
	Janitor          *service.PhotoJanitor
	DBType           string
	Logger           *zap.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(cfg AdminConfig) *AdminHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		inventoryService: cfg.InventoryService,
		inventoryRepo:    cfg.InventoryRepo,
		janitor:          cfg.Janitor,
		dbType:           cfg.DBType,
		startTime:        time.Now(),
		logger:           logger,
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	if h.inventoryRepo != nil {
		repoStats, err := h.inventoryRepo.GetStats(ctx)
		if err != nil {
			stats["database"] = map[string]interface{}{"status": "error", "error": err.Error()}
		} else {
			repoStats["status"] = "connected"
			stats["database"] = repoStats
		}
	} else {
		stats["database"] = map[string]interface{}{"status": "not_configured"}
	}

	if h.inventoryService != nil {
		inv, err := h.inventoryService.Stats(ctx)
		if err != nil {
			h.logger.Warn("failed to compute inventory stats", zap.Error(err))
		} else {
			stats["inventory"] = inv
		}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// CleanupResponse reports a manual photo sweep.
type CleanupResponse struct {
	Removed int `json:"removed"`
}

// CleanupPhotos handles POST /api/v1/admin/photos/cleanup
func (h *AdminHandler) CleanupPhotos(w http.ResponseWriter, r *http.Request) {
	if h.janitor == nil {
		response.Error(w, apierror.ServiceUnavailable("photo cleanup is not configured"))
		return
	}

	removed, err := h.janitor.RunNow(r.Context())
	if err != nil {
		h.logger.Error("manual photo cleanup failed", zap.Error(err))
		response.Error(w, err)
		return
	}
	response.OK(w, CleanupResponse{Removed: removed})
}
