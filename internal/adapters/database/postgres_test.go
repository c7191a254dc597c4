package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestNewPostgreSQLAdapter requires a real database connection
func TestNewPostgreSQLAdapter(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	adapter, err := NewPostgreSQLAdapter(ctx, DefaultPostgreSQLConfig(databaseURL), zap.NewNop())
	require.NoError(t, err)
	defer adapter.Close()

	assert.NotNil(t, adapter.Pool())
	assert.NotNil(t, adapter.Stats())
	assert.NoError(t, adapter.HealthCheck(ctx))

	queryCtx, cancel := adapter.QueryContext(ctx)
	defer cancel()
	deadline, ok := queryCtx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
}

func TestNewPostgreSQLAdapter_InvalidURL(t *testing.T) {
	_, err := NewPostgreSQLAdapter(context.Background(), DefaultPostgreSQLConfig("not-a-valid-url://"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database URL")
}

func TestDefaultPostgreSQLConfig(t *testing.T) {
	cfg := DefaultPostgreSQLConfig("postgres://localhost/checkout")
	assert.Equal(t, "postgres://localhost/checkout", cfg.DatabaseURL)
	assert.LessOrEqual(t, cfg.MinConns, cfg.MaxConns)
	assert.Equal(t, 2*time.Second, cfg.QueryTimeout)
}
