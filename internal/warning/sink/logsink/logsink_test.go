package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelguard/internal/warning"
	"pixelguard/pkg/domain"
)

func newLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestLogWarning(t *testing.T) {
	t.Run("critical warnings log at error level", func(t *testing.T) {
		logger, buf := newLogger()
		w := warning.New(domain.WarningSpeedhackDetected, domain.ModuleSpeedhack)
		w.ID = uuid.New()

		LogWarning(context.Background(), logger, w, "tick", "42")

		recs := records(t, buf)
		require.Len(t, recs, 1)
		assert.Equal(t, "ERROR", recs[0]["level"])
		assert.Equal(t, "SPEEDHACK_DETECTED", recs[0]["code"])
		assert.Equal(t, "tamper detected", recs[0]["error"])
		assert.Equal(t, "42", recs[0]["tick"])
		assert.Equal(t, w.ID.String(), recs[0]["warning_id"])
	})

	t.Run("attributes are flattened", func(t *testing.T) {
		logger, buf := newLogger()
		w := warning.New(domain.WarningTeleportDetected, domain.ModuleTeleport).WithAttr("target", "player")

		LogWarning(context.Background(), logger, w)

		recs := records(t, buf)
		require.Len(t, recs, 1)
		assert.Equal(t, "WARN", recs[0]["level"])
		assert.Equal(t, "player", recs[0]["target"])
	})

	t.Run("nil logger is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() {
			LogWarning(context.Background(), nil, warning.New(domain.WarningTimeChanged, domain.ModuleSecuredTime))
		})
	})
}

func TestSinkSampling(t *testing.T) {
	logger, buf := newLogger()
	sink := New(logger, WithSampler(warning.NewSampler(0)))

	require.NoError(t, sink.Handle(context.Background(), warning.New(domain.WarningTeleportDetected, domain.ModuleTeleport)))
	assert.Empty(t, buf.String())

	require.NoError(t, sink.Handle(context.Background(), warning.New(domain.WarningMemoryTamper, domain.ModuleSecuredMemory)))
	assert.Len(t, records(t, buf), 1)
}

func TestSinkOnBus(t *testing.T) {
	logger, buf := newLogger()
	bus := warning.NewBus()
	sub := bus.Subscribe("log", New(logger).Handle)
	defer sub.Close()

	bus.Emit(context.Background(), warning.New(domain.WarningInjectionDetected, domain.ModuleIntegrity))

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "integrity", recs[0]["source"])
	assert.NotEqual(t, uuid.Nil.String(), recs[0]["warning_id"])
}
