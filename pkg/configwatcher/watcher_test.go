package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lms_console_backend/internal/config"
)

func writeConfig(t *testing.T, path string, maxRows int) {
	t.Helper()
	content := "storage:\n  type: local\n  local_path: " + filepath.Join(filepath.Dir(path), "uploads") +
		"\nimport:\n  max_rows: " + strconv.Itoa(maxRows) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg *config.Config) { reloaded <- cfg })
	}()

	// 等待 watcher 注册
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, path, 42)

	select {
	case cfg := <-reloaded:
		require.Equal(t, 42, cfg.Import.MaxRows)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
