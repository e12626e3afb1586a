package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

var levelRank = map[string]int{
	common.LevelDebug: 0,
	common.LevelInfo:  1,
	common.LevelWarn:  2,
	common.LevelError: 3,
}

// ConsoleLogger writes engine log lines to a writer in text or JSON form
type ConsoleLogger struct {
	mu       sync.Mutex
	out      io.Writer
	clock    shared.Clock
	session  string
	minLevel int
	json     bool
}

// NewConsoleLogger creates a console logger. level is one of debug, info,
// warn, error (case-insensitive); format is "json" or "text".
// If clock is nil, uses RealClock.
func NewConsoleLogger(out io.Writer, session, level, format string, clock shared.Clock) *ConsoleLogger {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	rank, ok := levelRank[strings.ToUpper(level)]
	if !ok {
		rank = levelRank[common.LevelInfo]
	}
	return &ConsoleLogger{
		out:      out,
		clock:    clock,
		session:  session,
		minLevel: rank,
		json:     format == "json",
	}
}

// Enabled reports whether lines at level pass the filter
func (l *ConsoleLogger) Enabled(level string) bool {
	rank, ok := levelRank[level]
	return !ok || rank >= l.minLevel
}

func (l *ConsoleLogger) Log(level, message string, metadata map[string]interface{}) {
	if !l.Enabled(level) {
		return
	}
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.json {
		line := map[string]interface{}{
			"time":    now.Format(time.RFC3339),
			"session": l.session,
			"level":   level,
			"message": message,
		}
		if len(metadata) > 0 {
			line["metadata"] = metadata
		}
		if data, err := json.Marshal(line); err == nil {
			fmt.Fprintln(l.out, string(data))
			return
		}
	}

	fmt.Fprintf(l.out, "[%s] [%s] %s: %s%s\n",
		now.Format(time.RFC3339),
		l.session,
		level,
		message,
		formatMetadata(metadata),
	)
}

// formatMetadata renders metadata as sorted key=value pairs
func formatMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	return b.String()
}
