package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

// EngineLogEntry represents a persisted engine log entry
type EngineLogEntry struct {
	ID        int
	Session   string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormEngineLogRepository persists engine log lines. It also serves as a
// common.Logger sink for one CLI session.
type GormEngineLogRepository struct {
	db      *gorm.DB
	clock   shared.Clock
	session string

	dedupCache   map[string]time.Time // key: session+message, value: last logged time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormEngineLogRepository creates a new engine log repository.
// If clock is nil, uses RealClock.
func NewGormEngineLogRepository(db *gorm.DB, session string, clock shared.Clock) *GormEngineLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormEngineLogRepository{
		db:           db,
		clock:        clock,
		session:      session,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log satisfies common.Logger; write failures are dropped
func (r *GormEngineLogRepository) Log(level, message string, metadata map[string]interface{}) {
	_ = r.Write(context.Background(), level, message, metadata)
}

// Write stores a log entry with time-windowed deduplication
func (r *GormEngineLogRepository) Write(ctx context.Context, level, message string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := r.session + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache()
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	var metadataJSON string
	if len(metadata) > 0 {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	entry := &EngineLogModel{
		Session:   r.session,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// cleanupDedupCache removes entries older than the dedup window.
// Must be called while holding dedupMu.
func (r *GormEngineLogRepository) cleanupDedupCache() {
	cutoff := r.clock.Now().Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs retrieves the latest logs of a session with optional filtering
func (r *GormEngineLogRepository) GetLogs(ctx context.Context, session string, limit int, level *string, since *time.Time) ([]EngineLogEntry, error) {
	var models []EngineLogModel

	query := r.db.WithContext(ctx).Where("session = ?", session)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if since != nil {
		query = query.Where("timestamp > ?", *since)
	}
	query = query.Order("timestamp DESC").Order("id DESC").Limit(limit)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]EngineLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}
		entries[i] = EngineLogEntry{
			ID:        model.ID,
			Session:   model.Session,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}
	return entries, nil
}
