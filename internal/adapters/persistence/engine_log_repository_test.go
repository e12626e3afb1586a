package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/adapters/persistence"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
	"github.com/andrescamacho/bob-go/internal/infrastructure/database"
)

func TestEngineLogRepository_DeduplicatesWithinWindow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	db, err := database.NewTestConnection()
	require.NoError(t, err)
	defer database.Close(db)
	clock := shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	repo := persistence.NewGormEngineLogRepository(db, "s1", clock)

	// Act
	require.NoError(t, repo.Write(ctx, "WARN", "Invalid slot reference", map[string]interface{}{"slot": 9}))
	clock.Advance(10 * time.Second)
	require.NoError(t, repo.Write(ctx, "WARN", "Invalid slot reference", map[string]interface{}{"slot": 9}))
	clock.Advance(61 * time.Second)
	repo.Log("WARN", "Invalid slot reference", nil)
	repo.Log("INFO", "Replacement applied", map[string]interface{}{"tier": "all"})

	// Assert
	logs, err := repo.GetLogs(ctx, "s1", 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "Replacement applied", logs[0].Message)
	assert.Equal(t, "all", logs[0].Metadata["tier"])

	level := "WARN"
	warnings, err := repo.GetLogs(ctx, "s1", 10, &level, nil)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
	assert.Equal(t, float64(9), warnings[1].Metadata["slot"])

	other, err := repo.GetLogs(ctx, "s2", 10, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, other)
}
