package daemon

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_ShutdownRunsHooksInReverse(t *testing.T) {
	l := NewLifecycle(nil)

	var order []string
	l.OnExit("lock", func() error {
		order = append(order, "lock")
		return nil
	})
	l.OnExit("nagbar", func() error {
		order = append(order, "nagbar")
		return errors.New("already gone")
	})
	l.OnExit("libnotify", func() error {
		order = append(order, "libnotify")
		return nil
	})

	l.Shutdown()
	assert.Equal(t, []string{"libnotify", "nagbar", "lock"}, order)

	// Hooks run only once.
	l.Shutdown()
	assert.Len(t, order, 3)
}

func TestLifecycle_OnExitAfterShutdown(t *testing.T) {
	l := NewLifecycle(nil)
	l.Shutdown()

	ran := false
	l.OnExit("late", func() error {
		ran = true
		return nil
	})
	assert.True(t, ran)
}

func TestSignalContext_CancelledBySignal(t *testing.T) {
	ctx, cancel := SignalContext(context.Background(), nil)
	defer cancel()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := SignalContext(parent, nil)
	defer cancel()

	cancelParent()

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled with parent")
	}
}

func TestIsDaemonized(t *testing.T) {
	t.Setenv(daemonEnv, "")
	assert.False(t, IsDaemonized())

	t.Setenv(daemonEnv, "1")
	assert.True(t, IsDaemonized())
}

func TestSpawn(t *testing.T) {
	pid, err := spawn("/bin/sh", []string{"-c", "exit 0"}, false)
	require.NoError(t, err)
	assert.Positive(t, pid)

	_, err = spawn("/nonexistent/batnag", nil, false)
	assert.Error(t, err)
}

func TestDaemonCommand_Output(t *testing.T) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	defer devNull.Close()

	quiet := daemonCommand("/bin/true", []string{"-d"}, devNull, false)
	assert.Same(t, devNull, quiet.Stdin)
	assert.Same(t, devNull, quiet.Stdout)
	assert.Same(t, devNull, quiet.Stderr)
	assert.True(t, quiet.SysProcAttr.Setsid)
	assert.Contains(t, quiet.Env, daemonEnv+"=1")
	assert.Equal(t, []string{"/bin/true", "-d"}, quiet.Args)

	verbose := daemonCommand("/bin/true", nil, devNull, true)
	assert.Same(t, devNull, verbose.Stdin)
	assert.Same(t, os.Stdout, verbose.Stdout)
	assert.Same(t, os.Stderr, verbose.Stderr)
}
