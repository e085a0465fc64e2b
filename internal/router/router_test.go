package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petcare-inventory-api/internal/auth"
	"petcare-inventory-api/internal/handler"
	"petcare-inventory-api/internal/middleware"
	"petcare-inventory-api/internal/repository"
	"petcare-inventory-api/internal/service"
	"petcare-inventory-api/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "router-secret"

func token(t *testing.T, role string) string {
	t.Helper()
	claims := auth.Claims{
		Username: "tester",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	repo := repository.NewMemoryInventoryRepository()
	svc := service.NewInventoryService(repo, nil, logger)

	store, err := storage.NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	return New(Config{
		Handler:          handler.New("petcare-inventory-api", "test", repo),
		InventoryHandler: handler.NewInventoryHandler(svc, logger),
		PhotoHandler:     handler.NewPhotoHandler(service.NewPhotoService(store, logger), 0, logger),
		IdentityHandler:  handler.NewIdentityHandler(),
		AdminHandler:     handler.NewAdminHandler(handler.AdminConfig{InventoryService: svc, InventoryRepo: repo, DBType: "memory"}),
		AuthMiddleware:   middleware.NewAuthMiddleware(middleware.AuthConfig{Validator: auth.NewValidator(secret)}),
		Photos:           store.Handler(),
		PhotoPrefix:      "/uploads/photos",
		Logger:           logger,
	})
}

func request(h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/status", "/api/v1/health", "/api/v1/ready"} {
		rec := request(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), path)
	}
}

func TestInventoryRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	rec := request(r, http.MethodGet, "/api/v1/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = request(r, http.MethodGet, "/api/v1/inventory", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWritesRequireAdmin(t *testing.T) {
	r := newTestRouter(t)
	staff := token(t, "STAFF")
	admin := token(t, "ROLE_ADMIN")
	item := map[string]any{"name": "Bandage", "quantity": 2, "category": "Supply", "supplier": "MedCo"}

	rec := request(r, http.MethodGet, "/api/v1/inventory", staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = request(r, http.MethodPost, "/api/v1/inventory", staff, item)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(r, http.MethodPost, "/api/v1/photos", staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(r, http.MethodGet, "/api/v1/admin/stats", staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = request(r, http.MethodPost, "/api/v1/inventory", admin, item)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = request(r, http.MethodGet, "/api/v1/admin/stats", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchIsNotTreatedAsID(t *testing.T) {
	r := newTestRouter(t)
	bearer := token(t, "ADMIN")

	rec := request(r, http.MethodPost, "/api/v1/inventory", bearer,
		map[string]any{"name": "Heartworm Pills", "quantity": 1, "category": "Medication", "supplier": "VetPharm"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = request(r, http.MethodGet, "/api/v1/inventory/search?q=heart", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Heartworm Pills")
}

func TestIdentityRoutes(t *testing.T) {
	r := newTestRouter(t)
	bearer := token(t, "admin")

	rec := request(r, http.MethodGet, "/api/v1/auth/me", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":{"username":"tester","role":"ADMIN"}}`, rec.Body.String())

	rec = request(r, http.MethodGet, "/api/v1/users/me", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"roles":[{"name":"ADMIN"}]`)
}

func TestPhotoFilesArePublic(t *testing.T) {
	r := newTestRouter(t)

	rec := request(r, http.MethodGet, "/uploads/photos/missing.jpg", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
