package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/jmylchreest/batnag/internal/battery"
	"github.com/jmylchreest/batnag/internal/threshold"
)

// NagbarName is the registry name of the i3-nagbar module.
const NagbarName = "nagbar"

const nagbarPollInterval = time.Second

// Nagbar shows alerts with i3-nagbar. The dialog is launched without waiting
// for it; while it is up the battery is re-checked every second.
type Nagbar struct {
	path         string
	warnDisplay  time.Duration
	pollInterval time.Duration

	source     battery.Source
	thresholds *threshold.Store
	logger     *slog.Logger

	command func(name string, args ...string) *exec.Cmd
}

// NewNagbar creates the nagbar module.
func NewNagbar(deps Deps) *Nagbar {
	cfg := deps.config()
	return &Nagbar{
		path:         cfg.Nagbar.Path,
		warnDisplay:  cfg.Nagbar.WarnDisplay.Duration(),
		pollInterval: nagbarPollInterval,
		source:       deps.Source,
		thresholds:   deps.Thresholds,
		logger:       deps.logger(),
		command:      exec.Command,
	}
}

// Name implements Module.
func (n *Nagbar) Name() string { return NagbarName }

// Init implements Module.
func (n *Nagbar) Init() error { return nil }

// Cleanup implements Module.
func (n *Nagbar) Cleanup() {}

// Nag shows an error bar until the battery is no longer critical.
// It returns ErrDialogExited if the bar was closed while still critical.
func (n *Nagbar) Nag(ctx context.Context) error {
	d, err := n.launch("error", CriticalBody)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		if !battery.IsCritical(n.source, n.thresholds) {
			d.terminate()
			n.logger.Debug("battery no longer critical, closed nagbar")
			return nil
		}

		if d.exited() {
			return ErrDialogExited
		}

		select {
		case <-ctx.Done():
			d.terminate()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Warn shows a warning bar for the configured display window.
func (n *Nagbar) Warn(ctx context.Context) error {
	d, err := n.launch("warning", LowBody)
	if err != nil {
		return err
	}

	timer := time.NewTimer(n.warnDisplay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-d.done:
	case <-ctx.Done():
		d.terminate()
		return ctx.Err()
	}

	d.terminate()
	return nil
}

// dialog is a running nagbar process reaped by a background goroutine.
type dialog struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (n *Nagbar) launch(severity, message string) (*dialog, error) {
	cmd := n.command(n.path, "-t", severity, "-m", message)
	if err := cmd.Start(); err != nil {
		n.logger.Error("failed to launch nagbar", "path", n.path, "error", err)
		return nil, fmt.Errorf("failed to launch %s: %w", n.path, err)
	}

	d := &dialog{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(d.done)
	}()

	n.logger.Debug("launched nagbar", "pid", cmd.Process.Pid, "type", severity)
	return d, nil
}

func (d *dialog) exited() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// terminate sends SIGTERM and waits for the process to be reaped.
// A process that is already gone is not an error.
func (d *dialog) terminate() {
	if err := d.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		_ = d.cmd.Process.Kill()
	}
	<-d.done
}
