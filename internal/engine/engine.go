package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/batnag/internal/battery"
	"github.com/jmylchreest/batnag/internal/config"
	"github.com/jmylchreest/batnag/internal/notifier"
	"github.com/jmylchreest/batnag/internal/threshold"
	"github.com/jmylchreest/batnag/internal/wall"
)

const (
	// FastInterval replaces the configured interval when the battery is
	// nearly empty.
	FastInterval = 10 * time.Second
	// FastCapacity is the capacity below which FastInterval is used.
	FastCapacity = 10
)

// ErrNoModule is returned by New when neither a nag nor a warn module is selected.
var ErrNoModule = errors.New("no notifier module selected")

// Selection holds the modules used for each alert kind. Either may be nil.
type Selection struct {
	Nagger notifier.Module
	Warner notifier.Module
}

// Modules returns the distinct selected modules, nagger first.
func (s Selection) Modules() []notifier.Module {
	var mods []notifier.Module
	if s.Nagger != nil {
		mods = append(mods, s.Nagger)
	}
	if s.Warner != nil && (s.Nagger == nil || s.Warner.Name() != s.Nagger.Name()) {
		mods = append(mods, s.Warner)
	}
	return mods
}

// Broadcaster sends a message to terminal sessions.
type Broadcaster interface {
	Broadcast(ctx context.Context, kind wall.Kind)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Options configures an Engine.
type Options struct {
	Source          battery.Source
	Thresholds      *threshold.Store
	Selection       Selection
	Interval        time.Duration
	NotifyTerminals bool
	Wall            Broadcaster
	Logger          *slog.Logger
}

// Engine is the poll-think-notify-sleep loop. It is not safe for concurrent
// use; Run owns it until its context is cancelled.
type Engine struct {
	source     battery.Source
	thresholds *threshold.Store
	sel        Selection

	interval        time.Duration
	notifyTerminals bool
	wall            Broadcaster
	sleep           Sleeper
	logger          *slog.Logger

	warned  bool
	episode *episode
}

// episode is a continuous span of discharging ticks.
type episode struct {
	id      ulid.ULID
	started time.Time
}

// New creates an Engine. It returns ErrNoModule if opts selects no module.
func New(opts Options) (*Engine, error) {
	if opts.Selection.Nagger == nil && opts.Selection.Warner == nil {
		return nil, ErrNoModule
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = config.DefaultInterval
	}

	thresholds := opts.Thresholds
	if thresholds == nil {
		thresholds = threshold.NewDefault()
	}

	return &Engine{
		source:          opts.Source,
		thresholds:      thresholds,
		sel:             opts.Selection,
		interval:        interval,
		notifyTerminals: opts.NotifyTerminals && opts.Wall != nil,
		wall:            opts.Wall,
		sleep:           sleepContext,
		logger:          logger,
	}, nil
}

// SetSleeper replaces the function used to wait between ticks.
func (e *Engine) SetSleeper(s Sleeper) {
	if s != nil {
		e.sleep = s
	}
}

// Run polls until ctx is cancelled. A failed nag is retried immediately
// without sleeping.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("battery polling started",
		"interval", e.interval,
		"nag_threshold", e.thresholds.Nag(),
		"warn_threshold", e.thresholds.Warn(),
		"wall", e.notifyTerminals,
	)

	for {
		_, wait, err := e.Tick(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			e.logger.Warn("nag failed, retrying", "error", err)
			continue
		}
		if err := e.sleep(ctx, wait); err != nil {
			return nil
		}
	}
}

// Tick evaluates the battery once and invokes at most one notifier. It
// returns what it did and how long to sleep before the next tick. A non-nil
// error means the nag failed and the tick should be repeated without sleeping.
func (e *Engine) Tick(ctx context.Context) (Action, time.Duration, error) {
	status := e.source.Status()
	if status != battery.StatusDischarging {
		e.endEpisode(status)
		e.warned = false
		if e.thresholds.ClearSnooze() {
			e.logger.Info("snooze cleared", "status", status.String(), "nag_threshold", e.thresholds.Nag())
		}
		return ActionNone, e.interval, nil
	}

	capacity := e.source.Capacity()
	e.beginEpisode(capacity)

	action := ActionNone
	if e.sel.Nagger != nil && capacity <= e.thresholds.Nag() {
		action = ActionNag
		if err := e.nag(ctx, capacity); err != nil {
			return action, 0, err
		}
		e.warned = false
	} else if warn := e.thresholds.Warn(); e.sel.Warner != nil && !e.warned && warn > 0 && capacity <= warn {
		action = ActionWarn
		if err := e.warn(ctx, capacity); err != nil {
			e.logger.Warn("warn failed", "module", e.sel.Warner.Name(), "error", err)
		} else {
			e.warned = true
		}
	}

	return action, e.nextInterval(capacity), nil
}

// nextInterval shortens the poll interval when the battery is nearly empty.
func (e *Engine) nextInterval(capacity uint32) time.Duration {
	if capacity < FastCapacity {
		return FastInterval
	}
	return e.interval
}

func (e *Engine) nag(ctx context.Context, capacity uint32) error {
	e.logger.Info("battery critical",
		"module", e.sel.Nagger.Name(),
		"capacity", capacity,
		"threshold", e.thresholds.Nag(),
		"episode", e.episodeID(),
	)
	if e.notifyTerminals {
		e.wall.Broadcast(ctx, wall.KindCritical)
	}
	return e.sel.Nagger.Nag(ctx)
}

func (e *Engine) warn(ctx context.Context, capacity uint32) error {
	e.logger.Info("battery low",
		"module", e.sel.Warner.Name(),
		"capacity", capacity,
		"threshold", e.thresholds.Warn(),
		"episode", e.episodeID(),
	)
	if e.notifyTerminals {
		e.wall.Broadcast(ctx, wall.KindLow)
	}
	return e.sel.Warner.Warn(ctx)
}

func (e *Engine) beginEpisode(capacity uint32) {
	if e.episode != nil {
		return
	}
	e.episode = &episode{id: ulid.Make(), started: time.Now()}
	e.logger.Debug("discharging", "episode", e.episode.id.String(), "capacity", capacity)
}

func (e *Engine) endEpisode(status battery.Status) {
	if e.episode == nil {
		return
	}
	e.logger.Debug("no longer discharging",
		"episode", e.episode.id.String(),
		"status", status.String(),
		"started", humanize.Time(e.episode.started),
	)
	e.episode = nil
}

func (e *Engine) episodeID() string {
	if e.episode == nil {
		return ""
	}
	return e.episode.id.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
