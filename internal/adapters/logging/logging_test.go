package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Log(level, message string, metadata map[string]interface{}) {
	r.lines = append(r.lines, level+" "+message)
}

func fixedClock() *shared.MockClock {
	return shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestConsoleLogger_TextFormatFiltersBelowLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, "s1", "warn", "text", fixedClock())

	// Act
	logger.Log(common.LevelInfo, "ignored", nil)
	logger.Log(common.LevelWarn, "duplicate record", map[string]interface{}{"tier": "Grouped", "id": "ab12"})

	// Assert
	assert.Equal(t, "[2024-03-01T12:00:00Z] [s1] WARN: duplicate record id=ab12 tier=Grouped\n", buf.String())
}

func TestConsoleLogger_JSONFormat(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, "s1", "debug", "json", fixedClock())

	// Act
	logger.Log(common.LevelDebug, "dispatching", map[string]interface{}{"n": 3})

	// Assert
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, "dispatching", line["message"])
	assert.Equal(t, "s1", line["session"])
	assert.Equal(t, float64(3), line["metadata"].(map[string]interface{})["n"])
}

func TestMultiLogger_FansOutAndSkipsNil(t *testing.T) {
	// Arrange
	a, b := &recordingLogger{}, &recordingLogger{}
	logger := NewMultiLogger(a, nil, NewLevelFilter(b, common.LevelError))

	// Act
	logger.Log(common.LevelInfo, "applied", nil)
	logger.Log(common.LevelError, "failed", nil)

	// Assert
	assert.Equal(t, []string{"INFO applied", "ERROR failed"}, a.lines)
	assert.Equal(t, []string{"ERROR failed"}, b.lines)
}
