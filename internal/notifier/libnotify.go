package notifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/batnag/internal/battery"
	"github.com/jmylchreest/batnag/internal/dbus"
	"github.com/jmylchreest/batnag/internal/threshold"
)

// LibnotifyName is the registry name of the desktop notification module.
const LibnotifyName = "libnotify"

const (
	snoozeAction = "snooze"
	snoozeLabel  = "Snooze"
)

// desktopClient is the part of dbus.Client used by Libnotify.
type desktopClient interface {
	Connect() error
	Notify(n *dbus.Notification) (uint32, error)
	CloseNotification(id uint32) error
	SetActionHandler(handler dbus.ActionHandler)
	SetCloseHandler(handler dbus.CloseHandler)
	Close() error
}

// Libnotify sends freedesktop desktop notifications over the session bus.
// Critical notifications never expire and replace each other, so at most one
// is on screen.
type Libnotify struct {
	mu     sync.Mutex
	client desktopClient
	nagID  uint32

	appName string
	snooze  bool

	source     battery.Source
	thresholds *threshold.Store
	logger     *slog.Logger
}

// NewLibnotify creates the libnotify module.
func NewLibnotify(deps Deps) *Libnotify {
	cfg := deps.config()
	logger := deps.logger()
	return &Libnotify{
		client:     dbus.NewClient(logger),
		appName:    cfg.Libnotify.AppName,
		snooze:     cfg.Libnotify.Snooze,
		source:     deps.Source,
		thresholds: deps.Thresholds,
		logger:     logger,
	}
}

// Name implements Module.
func (l *Libnotify) Name() string { return LibnotifyName }

// Init connects to the notification daemon.
func (l *Libnotify) Init() error {
	l.client.SetActionHandler(l.handleAction)
	l.client.SetCloseHandler(l.handleClose)
	return l.client.Connect()
}

// Nag shows or refreshes the critical notification. Delivery failures are
// logged; the notification is sent again on the next tick.
func (l *Libnotify) Nag(ctx context.Context) error {
	n := dbus.NewNotification(l.appName, Summary, CriticalBody, dbus.UrgencyCritical)
	n.ExpireTimeout = dbus.ExpireNever
	if l.snooze {
		n.AddAction(snoozeAction, snoozeLabel)
	}

	l.mu.Lock()
	n.ReplacesID = l.nagID
	l.mu.Unlock()

	id, err := l.client.Notify(n)
	if err != nil {
		l.logger.Warn("failed to send critical notification", "error", err)
		return nil
	}

	l.mu.Lock()
	l.nagID = id
	l.mu.Unlock()
	return nil
}

// Warn shows the low battery notification.
func (l *Libnotify) Warn(ctx context.Context) error {
	n := dbus.NewNotification(l.appName, Summary, LowBody, dbus.UrgencyNormal)
	_, err := l.client.Notify(n)
	return err
}

// Cleanup closes the critical notification and disconnects.
func (l *Libnotify) Cleanup() {
	l.mu.Lock()
	id := l.nagID
	l.nagID = 0
	l.mu.Unlock()

	if id != 0 {
		if err := l.client.CloseNotification(id); err != nil {
			l.logger.Debug("failed to close notification", "id", id, "error", err)
		}
	}
	if err := l.client.Close(); err != nil {
		l.logger.Debug("failed to close notification client", "error", err)
	}
}

// handleAction snoozes the nag threshold below the current capacity when the
// critical notification's snooze action is invoked while the battery is still
// critical. The snooze lasts until the battery stops discharging.
func (l *Libnotify) handleAction(id uint32, key string) {
	l.mu.Lock()
	current := l.nagID
	l.mu.Unlock()

	if key != snoozeAction || id == 0 || id != current {
		return
	}

	if !battery.IsCritical(l.source, l.thresholds) {
		l.logger.Debug("ignoring snooze, battery not critical")
		return
	}

	capacity := l.source.Capacity()
	if capacity == 0 || !l.thresholds.Snooze(capacity-1) {
		l.logger.Debug("ignoring snooze, threshold cannot go lower", "capacity", capacity)
		return
	}
	l.logger.Info("critical notification snoozed", "capacity", capacity, "nag_threshold", l.thresholds.Nag())
}

func (l *Libnotify) handleClose(id uint32, reason dbus.CloseReason) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == l.nagID {
		l.nagID = 0
	}
}
