package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		l := New(env)
		assert.NotNil(t, l, env)
	}
}

func TestNewLevels(t *testing.T) {
	assert.False(t, New("production").Core().Enabled(zap.DebugLevel))
	assert.True(t, New("development").Core().Enabled(zap.DebugLevel))
}
