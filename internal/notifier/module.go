package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jmylchreest/batnag/internal/battery"
	"github.com/jmylchreest/batnag/internal/config"
	"github.com/jmylchreest/batnag/internal/threshold"
)

// Alert texts shared by the backends.
const (
	Summary      = "Low battery"
	CriticalBody = "Battery level is critical."
	LowBody      = "Battery level is low."
)

// ErrDialogExited is returned by Nag when the dialog closed while the battery
// was still critical, so the caller should show it again.
var ErrDialogExited = errors.New("dialog exited while battery is critical")

// Module is an alert backend.
//
// Init is called once before first use and Cleanup once at exit. Nag and Warn
// block until the alert has been handled; a non-nil error from Nag tells the
// engine to retry without sleeping.
type Module interface {
	Name() string
	Init() error
	Nag(ctx context.Context) error
	Warn(ctx context.Context) error
	Cleanup()
}

// Deps are the collaborators handed to module constructors.
type Deps struct {
	Source     battery.Source
	Thresholds *threshold.Store
	Config     *config.DaemonConfig
	Logger     *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func (d Deps) config() *config.DaemonConfig {
	if d.Config == nil {
		return config.DefaultDaemonConfig()
	}
	return d.Config
}
