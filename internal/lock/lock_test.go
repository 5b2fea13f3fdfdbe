package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "batnag.pid")

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	assert.Equal(t, path, l.Path())

	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquire_Conflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batnag.pid")

	first, err := Acquire(path)
	require.NoError(t, err)
	defer first.Release()

	second, err := Acquire(path)
	assert.Nil(t, second)
	require.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "pid")

	// The holder's PID is untouched.
	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquire_StaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batnag.pid")
	require.NoError(t, os.WriteFile(path, []byte("999999999\n"), 0o644))

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batnag.pid")

	l, err := Acquire(path)
	require.NoError(t, err)

	require.NoError(t, l.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Second release is a no-op.
	require.NoError(t, l.Release())

	// The lock can be taken again.
	again, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batnag.pid")

	assert.NoError(t, Probe(path), "missing file is free")

	l, err := Acquire(path)
	require.NoError(t, err)
	assert.ErrorIs(t, Probe(path), ErrLocked)

	require.NoError(t, l.Release())
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))
	assert.NoError(t, Probe(path), "unlocked file is free")
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{name: "valid", content: "1234\n", want: 1234},
		{name: "no newline", content: "42", want: 42},
		{name: "garbage", content: "abc", wantErr: true},
		{name: "empty", content: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".pid")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := ReadPID(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
