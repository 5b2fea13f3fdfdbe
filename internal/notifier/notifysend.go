package notifier

import (
	"context"
	"fmt"
	"os/exec"
)

// NotifySendName is the registry name of the notify-send module.
const NotifySendName = "notify-send"

// runner runs an external command to completion.
type runner func(ctx context.Context, name string, args ...string) error

func execRun(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// NotifySend shows desktop notifications by running notify-send.
type NotifySend struct {
	appName string
	run     runner
}

// NewNotifySend creates the notify-send module.
func NewNotifySend(deps Deps) *NotifySend {
	return &NotifySend{
		appName: deps.config().Libnotify.AppName,
		run:     execRun,
	}
}

// Name implements Module.
func (n *NotifySend) Name() string { return NotifySendName }

// Init checks that notify-send is installed.
func (n *NotifySend) Init() error {
	if _, err := exec.LookPath(NotifySendName); err != nil {
		return fmt.Errorf("failed to find %s: %w", NotifySendName, err)
	}
	return nil
}

// Nag sends a critical notification that does not expire.
func (n *NotifySend) Nag(ctx context.Context) error {
	return n.send(ctx, "critical", "0", CriticalBody)
}

// Warn sends a normal notification.
func (n *NotifySend) Warn(ctx context.Context) error {
	return n.send(ctx, "normal", "-1", LowBody)
}

// Cleanup implements Module.
func (n *NotifySend) Cleanup() {}

func (n *NotifySend) send(ctx context.Context, urgency, expire, body string) error {
	err := n.run(ctx, NotifySendName,
		"--urgency="+urgency,
		"--expire-time="+expire,
		"--app-name="+n.appName,
		"--icon=battery-caution",
		Summary, body)
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", NotifySendName, err)
	}
	return nil
}
