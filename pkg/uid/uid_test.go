package uid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsValidAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		assert.True(t, IsValid(id))
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestIsValidRejectsGarbage(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("not-a-uuid"))
}

func TestFileName(t *testing.T) {
	name := FileName(".jpg")
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.True(t, IsValid(strings.TrimSuffix(name, ".jpg")))
}
