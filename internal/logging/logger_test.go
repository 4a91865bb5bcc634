package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerV2_WritesComponentAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	UseCore(core)
	defer Configure("info", "json")

	NewLoggerV2("products").Info("Products loaded", Fields{"count": 3, "search": "lamp"})

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "Products loaded", entries[0].Message)
	assert.Equal(t, "products", ctx["component"])
	assert.EqualValues(t, 3, ctx["count"])
	assert.Equal(t, "lamp", ctx["search"])
}

func TestInfof(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	UseCore(core)
	defer Configure("info", "json")

	Infof("Legacy: loaded %d orders", 4)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Legacy: loaded 4 orders", logs.All()[0].Message)
}

func TestConfigure_UnknownLevelFallsBackToInfo(t *testing.T) {
	Configure("verbose", "console")
	defer Configure("info", "json")

	assert.Equal(t, zapcore.InfoLevel, level.Level())
}
