package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batnag.toml")
	require.NoError(t, os.WriteFile(path, []byte("[thresholds]\nnag = 2\n"), 0644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	reloaded := make(chan *DaemonConfig, 16)
	w.SetReloadCallback(func(c *DaemonConfig) {
		select {
		case reloaded <- c:
		default:
		}
	})
	require.NoError(t, w.Start())
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("[thresholds]\nnag = 7\n"), 0644))

	// A truncating write may be observed half way, so wait for the final content.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-reloaded:
			if c.Thresholds.Nag == 7 {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatcher_ReportsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batnag.toml")

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	errs := make(chan error, 16)
	w.SetErrorCallback(func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	require.NoError(t, w.Start())
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("[thresholds]\nnag = 300\n"), 0644))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "nag threshold")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batnag.toml")

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	reloaded := make(chan *DaemonConfig, 1)
	w.SetReloadCallback(func(c *DaemonConfig) {
		select {
		case reloaded <- c:
		default:
		}
	})
	require.NoError(t, w.Start())
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0644))

	select {
	case <-reloaded:
		t.Fatal("reload triggered by unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
