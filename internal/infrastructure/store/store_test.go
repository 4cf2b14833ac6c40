package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/starter-webapi/config"
	"github.com/oksasatya/starter-webapi/internal/domain/entity"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "store.db")}
	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NoError(t, s.Ping())
	s.RecordMetrics()

	_, err = s.Repo.ReadUser(context.Background(), "6a3c1f0e-3c5a-4a55-9d34-0e9f7f1d2b11")
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}

func TestOpen_SQLiteTwiceKeepsSchema(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "store.db")}
	first, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	first.Close()

	second, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	second.Close()
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DBDriver: "mysql"}, nil)
	assert.ErrorContains(t, err, "mysql")
}
