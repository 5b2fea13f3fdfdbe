package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jmylchreest/batnag/internal/audio"
)

// SoundName is the registry name of the audio module.
const SoundName = "sound"

// player is the part of audio.Player used by Sound.
type player interface {
	SetVolume(volume float64)
	Preload(path string) error
	Play(path string) error
	Close()
}

// Sound plays an alert sound. Playback problems are logged rather than
// returned, since retrying a broken sound file would never succeed.
type Sound struct {
	player   player
	nagFile  string
	warnFile string
	volume   int
	logger   *slog.Logger
}

// NewSound creates the sound module.
func NewSound(deps Deps) *Sound {
	cfg := deps.config()
	logger := deps.logger()
	return &Sound{
		player:   audio.NewPlayer(logger),
		nagFile:  cfg.Sound.Nag,
		warnFile: cfg.Sound.Warn,
		volume:   cfg.Sound.Volume,
		logger:   logger,
	}
}

// Name implements Module.
func (s *Sound) Name() string { return SoundName }

// Init decodes the configured sound files.
func (s *Sound) Init() error {
	if s.nagFile == "" && s.warnFile == "" {
		return errors.New("no sound files configured")
	}

	s.player.SetVolume(float64(s.volume) / 100.0)

	var errs []error
	for _, path := range []string{s.nagFile, s.warnFile} {
		if path == "" {
			continue
		}
		if err := s.player.Preload(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nag plays the critical sound.
func (s *Sound) Nag(ctx context.Context) error {
	s.play("nag", s.nagFile)
	return nil
}

// Warn plays the warning sound.
func (s *Sound) Warn(ctx context.Context) error {
	s.play("warn", s.warnFile)
	return nil
}

// Cleanup releases the speaker.
func (s *Sound) Cleanup() {
	s.player.Close()
}

func (s *Sound) play(kind, path string) {
	if path == "" {
		s.logger.Debug("no sound configured", "kind", kind)
		return
	}
	if err := s.player.Play(path); err != nil {
		s.logger.Warn("failed to play sound", "kind", kind, "path", path, "error", err)
	}
}
