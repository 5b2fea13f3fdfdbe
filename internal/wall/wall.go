package wall

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Kind selects the broadcast message.
type Kind int

const (
	// KindLow is broadcast alongside a warning.
	KindLow Kind = iota
	// KindCritical is broadcast alongside a nag.
	KindCritical
)

// String returns the word used in the broadcast message.
func (k Kind) String() string {
	if k == KindCritical {
		return "critical"
	}
	return "low"
}

// Message returns the broadcast text for k.
func Message(k Kind) string {
	return fmt.Sprintf("Battery level is %s.", k)
}

const (
	// DefaultCommand is the broadcast executable.
	DefaultCommand = "wall"
	// displaySeconds is passed to wall's --timeout.
	displaySeconds = "10"
	runTimeout     = 5 * time.Second
)

// Runner runs an external command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Broadcaster sends battery messages to terminals.
type Broadcaster struct {
	command string
	runner  Runner
	logger  *slog.Logger
}

// NewBroadcaster creates a Broadcaster using DefaultCommand and ExecRunner.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		command: DefaultCommand,
		runner:  ExecRunner{},
		logger:  logger,
	}
}

// SetRunner replaces the command runner.
func (b *Broadcaster) SetRunner(r Runner) {
	b.runner = r
}

// SetCommand replaces the broadcast executable.
func (b *Broadcaster) SetCommand(command string) {
	if command != "" {
		b.command = command
	}
}

// Broadcast sends the message for kind. The command's outcome is only logged.
func (b *Broadcaster) Broadcast(ctx context.Context, kind Kind) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if err := b.runner.Run(ctx, b.command, "-t", displaySeconds, Message(kind)); err != nil {
		b.logger.Debug("wall broadcast failed", "kind", kind.String(), "error", err)
	}
}
