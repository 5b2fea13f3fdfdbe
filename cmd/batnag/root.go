package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/batnag/internal/battery"
	"github.com/jmylchreest/batnag/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.DaemonConfig
	globalOpts struct {
		verbose    bool
		configPath string
		source     string
	}
	logger *slog.Logger
)

// rootCmd runs the battery monitor.
var rootCmd = &cobra.Command{
	Use:   "batnag",
	Short: "Nag about low battery levels",
	Long: `batnag watches the battery and alerts when it runs low.

While discharging, the battery is polled every interval. At or below the
warn threshold the warn module is invoked once per discharge; at or below
the nag threshold the nag module is invoked on every poll until the
battery is charged or recovers. Terminal sessions are notified with wall
unless --no-wall is given.

Modules: run 'batnag --mods' to list the compiled-in notifier modules.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadDaemonConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("source") {
			cfg.Battery.Source = globalOpts.source
		}
		return nil
	},
	RunE: runDaemon,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalOpts.verbose, "verbose", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/batnag/batnag.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.source, "source", battery.KindSysfs,
		"Battery source (sysfs, upower)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelInfo
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
