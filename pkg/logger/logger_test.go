package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchaudit/punchaudit-backend/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("audit-service", &buf).
		WithComponent("service").
		WithRequestID("abc").
		WithRunID("req_0123456789ab").
		WithError(errors.New("boom"))

	log.Info().Msg("analysis complete")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "audit-service", entry["service"])
	assert.Equal(t, "service", entry["component"])
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "req_0123456789ab", entry["run_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "analysis complete", entry["message"])
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("audit-service", &buf).SetLevel("warn")

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.NotZero(t, buf.Len())

	same := log.SetLevel("not-a-level")
	assert.Equal(t, log, same)
}
