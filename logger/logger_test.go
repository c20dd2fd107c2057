package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aisgo/posibel/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestValidateConfig(t *testing.T) {
	for _, cfg := range []Config{{}, {Level: "warn", Format: "CONSOLE"}, {Level: "debug", Format: "json"}} {
		assert.NoError(t, ValidateConfig(cfg), "%+v", cfg)
	}
	assert.Error(t, ValidateConfig(Config{Level: "verbose"}))
	assert.Error(t, ValidateConfig(Config{Format: "logfmt"}))
}

func TestNewLoggerLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":  zap.DebugLevel,
		"error":  zap.ErrorLevel,
		"":       zap.InfoLevel,
		"bogus!": zap.InfoLevel,
	}
	for level, want := range cases {
		core := NewLogger(Config{Level: level}).Core()
		assert.True(t, core.Enabled(want), level)
		if want > zap.DebugLevel {
			assert.False(t, core.Enabled(want-1), level)
		}
	}
}

func TestNewLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "posibel.log")

	log := NewLogger(Config{Format: "json", Output: path, MaxBackups: 1})
	log.Warn("stock below threshold", zap.Int64("shop_id", 9))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"shop_id":9`)
	assert.Contains(t, string(raw), `"level":"WARN"`)
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := &Logger{Logger: zap.New(core)}

	log.WithContext(context.Background()).Info("bare")

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = identity.NewContext(ctx, &identity.Identity{UserID: 7, OrganizationID: 3, RoleID: 1})
	log.WithContext(ctx).Info("scoped")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].Context)
	assert.Equal(t, map[string]any{
		"request_id":      "req-1",
		"organization_id": int64(3),
		"user_id":         int64(7),
	}, entries[1].ContextMap())
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}

func TestNewNop(t *testing.T) {
	assert.False(t, NewNop().Core().Enabled(zap.FatalLevel))
}
