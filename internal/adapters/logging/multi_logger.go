package logging

import "github.com/andrescamacho/bob-go/internal/application/common"

// MultiLogger fans every line out to several sinks
type MultiLogger struct {
	sinks []common.Logger
}

// NewMultiLogger skips nil sinks
func NewMultiLogger(sinks ...common.Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiLogger) Log(level, message string, metadata map[string]interface{}) {
	for _, s := range m.sinks {
		s.Log(level, message, metadata)
	}
}

// LevelFilter forwards only lines at or above the given level
type LevelFilter struct {
	next     common.Logger
	minLevel int
}

func NewLevelFilter(next common.Logger, level string) *LevelFilter {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank[common.LevelInfo]
	}
	return &LevelFilter{next: next, minLevel: rank}
}

func (f *LevelFilter) Log(level, message string, metadata map[string]interface{}) {
	if rank, ok := levelRank[level]; ok && rank < f.minLevel {
		return
	}
	f.next.Log(level, message, metadata)
}
