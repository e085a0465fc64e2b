package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"petcare-inventory-api/internal/model"
	"petcare-inventory-api/internal/repository"
	"petcare-inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// brokenRepository fails every read.
type brokenRepository struct {
	repository.InventoryRepository
}

func (brokenRepository) GetAll(ctx context.Context) ([]model.InventoryItem, error) {
	return nil, errors.New("connection refused")
}

func newInventoryRouter(t *testing.T, repo repository.InventoryRepository) http.Handler {
	t.Helper()
	svc := service.NewInventoryService(repo, nil, zap.NewNop())
	require.NotNil(t, svc)
	h := NewInventoryHandler(svc, zap.NewNop())

	r := chi.NewRouter()
	r.Get("/inventory", h.List)
	r.Get("/inventory/search", h.Search)
	r.Post("/inventory", h.Create)
	r.Get("/inventory/{id}", h.Get)
	r.Put("/inventory/{id}", h.Update)
	r.Delete("/inventory/{id}", h.Delete)
	return r
}

func do(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type itemEnvelope struct {
	Success bool                `json:"success"`
	Data    model.InventoryItem `json:"data"`
}

type listEnvelope struct {
	Success bool                  `json:"success"`
	Data    []model.InventoryItem `json:"data"`
	Meta    struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func itemBody(name string) map[string]any {
	return map[string]any{
		"name":     name,
		"quantity": 4,
		"category": "Food",
		"supplier": "PetCo",
	}
}

func create(t *testing.T, h http.Handler, name string) model.InventoryItem {
	t.Helper()
	return createBody(t, h, itemBody(name))
}

func createBody(t *testing.T, h http.Handler, body map[string]any) model.InventoryItem {
	t.Helper()
	rec := do(h, http.MethodPost, "/inventory", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env itemEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func TestInventoryCreateAndGet(t *testing.T) {
	h := newInventoryRouter(t, repository.NewMemoryInventoryRepository())

	item := create(t, h, "Kibble")
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Kibble", item.Name)
	assert.Equal(t, 4, item.Quantity)

	rec := do(h, http.MethodGet, "/inventory/"+item.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env itemEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, item.ID, env.Data.ID)
}

func TestInventoryGetMissingHasEmptyBody(t *testing.T) {
	h := newInventoryRouter(t, repository.NewMemoryInventoryRepository())

	rec := do(h, http.MethodGet, "/inventory/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestInventoryCreateDuplicate(t *testing.T) {
	h := newInventoryRouter(t, repository.NewMemoryInventoryRepository())
	create(t, h, "Flea Drops")

	rec := do(h, http.MethodPost, "/inventory", itemBody("  FLEA drops "))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["duplicate"])
	assert.Equal(t, "flea drops already exists", body["message"])

	list := do(h, http.MethodGet, "/inventory", nil)
	var env listEnvelope
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &env))
	assert.Len(t, env.Data, 1)
}

func TestInventoryCreateValidation(t *testing.T) {
	h := newInventoryRouter(t, repository.NewMemoryInventoryRepository())

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", "{"},
		{"blank name", itemBody("  ")},
		{"negative quantity", map[string]any{"name": "X", "quantity": -1, "category": "Food", "supplier": "S"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/inventory", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestInventoryUpdate(t *testing.T) {
	h := newInventoryRouter(t, repository.NewMemoryInventoryRepository())
	first := create(t, h, "Collar")
	create(t, h, "Leash")

	t.Run("missing", func(t *testing.T) {
		rec := do(h, http.MethodPut, "/inventory/missing", itemBody("Anything"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("collides with another item", func(t *testing.T) {
		rec := do(h, http.MethodPut, "/inventory/"+first.ID, itemBody("leash"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"duplicate":true`)
	})

	t.Run("self rename", func(t *testing.T) {
		body := itemBody("COLLAR")
		body["quantity"] = 9
		rec := do(h, http.MethodPut, "/inventory/"+first.ID, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var env itemEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Equal(t, "COLLAR", env.Data.Name)
		assert.Equal(t, 9, env.Data.Quantity)
	})
}

func TestInventoryDelete(t *testing.T) {
	h := newInventoryRouter(t, repository.NewMemoryInventoryRepository())
	item := create(t, h, "Shampoo")

	rec := do(h, http.MethodDelete, "/inventory/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodDelete, "/inventory/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInventorySearch(t *testing.T) {
	h := newInventoryRouter(t, repository.NewMemoryInventoryRepository())
	create(t, h, "Dog Food")
	litter := itemBody("Cat Litter")
	litter["category"] = "Hygiene"
	litter["supplier"] = "Litterbox Co"
	createBody(t, h, litter)

	rec := do(h, http.MethodGet, "/inventory/search?q=FOOD", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Dog Food", env.Data[0].Name)
	assert.Equal(t, int64(1), env.Meta.Total)

	rec = do(h, http.MethodGet, "/inventory/search?q=co", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env = listEnvelope{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Len(t, env.Data, 2)

	rec = do(h, http.MethodGet, "/inventory/search?q=%20%20", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// vanishingRepository deletes an item right after writing an update to it.
type vanishingRepository struct {
	*repository.MemoryInventoryRepository
}

func (r vanishingRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	if err := r.MemoryInventoryRepository.Update(ctx, item); err != nil {
		return err
	}
	return r.MemoryInventoryRepository.Delete(ctx, item.ID)
}

func TestInventoryUpdateRespondsWithWrittenItem(t *testing.T) {
	h := newInventoryRouter(t, vanishingRepository{repository.NewMemoryInventoryRepository()})
	item := create(t, h, "Collar")

	body := itemBody("Collar XL")
	body["quantity"] = 2
	rec := do(h, http.MethodPut, "/inventory/"+item.ID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env itemEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, item.ID, env.Data.ID)
	assert.Equal(t, "Collar XL", env.Data.Name)
	assert.Equal(t, 2, env.Data.Quantity)
}

func TestInventoryListRepositoryError(t *testing.T) {
	h := newInventoryRouter(t, brokenRepository{})

	rec := do(h, http.MethodGet, "/inventory", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "connection refused"))
}
