package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapa-service/internal/config"
)

func testConfig(t *testing.T, port int) (config.Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "mapa.db")
	return config.Config{
		Host:         "127.0.0.1",
		Port:         port,
		AllowOrigins: []string{"*"},
		MaxUploadMB:  1,
		DBDriver:     "sqlite",
		DBDSN:        "file:" + path,
		SessionTTL:   time.Minute,
	}, path
}

func TestRunReturnsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg, path := testConfig(t, busy.Addr().(*net.TCPAddr).Port)
	err = run(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")

	_, err = os.Stat(path)
	assert.NoError(t, err, "store was opened and migrated before serving")
}

func TestRunStopsWithContext(t *testing.T) {
	cfg, _ := testConfig(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, run(ctx, cfg, zerolog.Nop()))
}

func TestRunRejectsUnknownDriver(t *testing.T) {
	cfg, _ := testConfig(t, 0)
	cfg.DBDriver = "oracle"
	err := run(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "unsupported db driver")
}
