package apierror

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	err := ValidationError("invalid item", FieldError{Field: "name", Message: "name is required"})

	var body map[string]any
	require.NoError(t, json.Unmarshal(err.ToJSON(), &body))

	assert.Equal(t, false, body["success"])
	inner := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", inner["code"])
	assert.Equal(t, "invalid item", inner["message"])
	assert.Len(t, inner["details"], 1)
}

func TestToJSONOmitsEmptyDetails(t *testing.T) {
	assert.NotContains(t, string(BadRequest("nope").ToJSON()), "details")
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("").StatusCode)
	assert.Equal(t, "Authentication required", Unauthorized("").Message)
	assert.Equal(t, "Access denied", Forbidden("").Message)
	assert.Equal(t, http.StatusNotFound, NotFound("").StatusCode)
	assert.Equal(t, http.StatusInternalServerError, InternalError("").StatusCode)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Forbidden("admins only"))

	apiErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
