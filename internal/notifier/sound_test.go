package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/batnag/internal/config"
)

type fakePlayer struct {
	volume     float64
	preloaded  []string
	played     []string
	preloadErr error
	playErr    error
	closed     bool
}

func (p *fakePlayer) SetVolume(v float64) { p.volume = v }

func (p *fakePlayer) Preload(path string) error {
	p.preloaded = append(p.preloaded, path)
	return p.preloadErr
}

func (p *fakePlayer) Play(path string) error {
	p.played = append(p.played, path)
	return p.playErr
}

func (p *fakePlayer) Close() { p.closed = true }

func newTestSound(nag, warn string) (*Sound, *fakePlayer) {
	cfg := config.DefaultDaemonConfig()
	cfg.Sound.Nag = nag
	cfg.Sound.Warn = warn
	cfg.Sound.Volume = 50

	s := NewSound(Deps{Config: cfg})
	p := &fakePlayer{}
	s.player = p
	return s, p
}

func TestSound_Init(t *testing.T) {
	s, p := newTestSound("/sounds/critical.ogg", "/sounds/low.wav")

	require.NoError(t, s.Init())
	assert.Equal(t, 0.5, p.volume)
	assert.Equal(t, []string{"/sounds/critical.ogg", "/sounds/low.wav"}, p.preloaded)
}

func TestSound_InitWithoutFiles(t *testing.T) {
	s, _ := newTestSound("", "")
	assert.Error(t, s.Init())
}

func TestSound_InitPreloadError(t *testing.T) {
	s, p := newTestSound("/sounds/critical.ogg", "")
	p.preloadErr = errors.New("decode failed")
	assert.Error(t, s.Init())
}

func TestSound_NagAndWarn(t *testing.T) {
	s, p := newTestSound("/sounds/critical.ogg", "/sounds/low.wav")

	require.NoError(t, s.Nag(context.Background()))
	require.NoError(t, s.Warn(context.Background()))
	assert.Equal(t, []string{"/sounds/critical.ogg", "/sounds/low.wav"}, p.played)
}

func TestSound_PlaybackErrorsAreNotReturned(t *testing.T) {
	s, p := newTestSound("/sounds/critical.ogg", "")
	p.playErr = errors.New("no audio device")

	assert.NoError(t, s.Nag(context.Background()))
	// Warn has no file configured and plays nothing.
	assert.NoError(t, s.Warn(context.Background()))
	assert.Len(t, p.played, 1)
}

func TestSound_Cleanup(t *testing.T) {
	s, p := newTestSound("/sounds/critical.ogg", "")
	s.Cleanup()
	assert.True(t, p.closed)
}
