package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/batnag/internal/battery"
	"github.com/jmylchreest/batnag/internal/config"
	"github.com/jmylchreest/batnag/internal/daemon"
	"github.com/jmylchreest/batnag/internal/engine"
	"github.com/jmylchreest/batnag/internal/lock"
	"github.com/jmylchreest/batnag/internal/notifier"
	"github.com/jmylchreest/batnag/internal/threshold"
	"github.com/jmylchreest/batnag/internal/wall"
)

var daemonOpts struct {
	daemonize bool
	interval  int
	noWall    bool
	nag       string
	warn      string
	nagLevel  uint32
	warnLevel uint32
	listMods  bool
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&daemonOpts.daemonize, "daemon", "d", false,
		"Run in the background")
	flags.IntVarP(&daemonOpts.interval, "interval", "i", int(config.DefaultInterval/time.Second),
		"Poll interval in seconds")
	flags.BoolVarP(&daemonOpts.noWall, "no-wall", "n", false,
		"Do not broadcast alerts to terminals with wall")
	flags.StringVar(&daemonOpts.nag, "nag", config.DefaultNagModule,
		"Module used at the critical level (empty to disable)")
	flags.StringVar(&daemonOpts.warn, "warn", "",
		"Module used at the warning level")
	flags.Uint32Var(&daemonOpts.nagLevel, "tn", threshold.DefaultNag,
		"Critical threshold in percent")
	flags.Uint32Var(&daemonOpts.warnLevel, "tw", threshold.DefaultWarn,
		"Warning threshold in percent")
	flags.BoolVar(&daemonOpts.listMods, "mods", false,
		"List available notifier modules and exit")
}

// applyFlags overlays explicitly set command line flags on the configuration.
func applyFlags(cmd *cobra.Command, c *config.DaemonConfig) {
	flags := cmd.Flags()
	if flags.Changed("interval") {
		c.Poll.Interval = config.Duration(time.Duration(daemonOpts.interval) * time.Second)
	}
	if flags.Changed("no-wall") {
		c.Wall.Enabled = !daemonOpts.noWall
	}
	if flags.Changed("nag") {
		c.Modules.Nag = daemonOpts.nag
	}
	if flags.Changed("warn") {
		c.Modules.Warn = daemonOpts.warn
	}
	if flags.Changed("tn") {
		c.Thresholds.Nag = daemonOpts.nagLevel
	}
	if flags.Changed("tw") {
		c.Thresholds.Warn = daemonOpts.warnLevel
	}
}

// selectModules resolves the configured module names against the registry.
func selectModules(registry *notifier.Registry, nag, warn string) (engine.Selection, error) {
	var sel engine.Selection
	if nag != "" {
		if sel.Nagger = registry.Lookup(nag); sel.Nagger == nil {
			return sel, fmt.Errorf("unknown nag module %q", nag)
		}
	}
	if warn != "" {
		if sel.Warner = registry.Lookup(warn); sel.Warner == nil {
			return sel, fmt.Errorf("unknown warn module %q", warn)
		}
	}
	if sel.Nagger == nil && sel.Warner == nil {
		return sel, engine.ErrNoModule
	}
	return sel, nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	source, err := battery.New(battery.Options{
		Kind:         cfg.Battery.Source,
		StatusPath:   cfg.Battery.StatusPath,
		CapacityPath: cfg.Battery.CapacityPath,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	thresholds := threshold.New(cfg.Thresholds.Nag, cfg.Thresholds.Warn)
	registry := notifier.NewDefaultRegistry(notifier.Deps{
		Source:     source,
		Thresholds: thresholds,
		Config:     cfg,
		Logger:     logger,
	})

	if daemonOpts.listMods {
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
		return nil
	}

	sel, err := selectModules(registry, cfg.Modules.Nag, cfg.Modules.Warn)
	if err != nil {
		return err
	}

	if thresholds.Inconsistent() {
		logger.Warn("nag threshold is not below warn threshold, warnings will never fire",
			"nag", thresholds.Nag(), "warn", thresholds.Warn())
	}

	if daemonOpts.daemonize && !daemon.IsDaemonized() {
		// Fail here rather than in the detached child so the exit code is seen.
		if err := lock.Probe(cfg.Lock.Path); err != nil {
			return err
		}
		pid, err := daemon.Daemonize(os.Args[1:], globalOpts.verbose)
		if err != nil {
			return err
		}
		logger.Info("started in background", "pid", pid)
		return nil
	}

	lifecycle := daemon.NewLifecycle(logger)
	defer lifecycle.Shutdown()

	instance, err := lock.Acquire(cfg.Lock.Path)
	if err != nil {
		return err
	}
	lifecycle.OnExit("instance lock", instance.Release)

	for _, m := range sel.Modules() {
		if err := m.Init(); err != nil {
			return fmt.Errorf("failed to initialize module %s: %w", m.Name(), err)
		}
		lifecycle.OnExit("module "+m.Name(), func() error {
			m.Cleanup()
			return nil
		})
	}

	ctx, cancel := daemon.SignalContext(context.Background(), logger)
	defer cancel()

	startConfigWatcher(cmd, lifecycle, thresholds)

	broadcaster := wall.NewBroadcaster(logger)
	broadcaster.SetCommand(cfg.Wall.Command)

	eng, err := engine.New(engine.Options{
		Source:          source,
		Thresholds:      thresholds,
		Selection:       sel,
		Interval:        cfg.Poll.Interval.Duration(),
		NotifyTerminals: cfg.Wall.Enabled,
		Wall:            broadcaster,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting batnag",
		"version", version,
		"source", cfg.Battery.Source,
		"nag", moduleName(sel.Nagger),
		"warn", moduleName(sel.Warner),
		"lock", instance.Path(),
	)

	if err := eng.Run(ctx); err != nil {
		return err
	}
	logger.Info("batnag stopped")
	return nil
}

// startConfigWatcher applies threshold changes from the config file while
// running. Thresholds given on the command line stay pinned.
func startConfigWatcher(cmd *cobra.Command, lifecycle *daemon.Lifecycle, thresholds *threshold.Store) {
	path := globalOpts.configPath
	if path == "" {
		var err error
		if path, err = config.DaemonConfigPath(); err != nil {
			logger.Debug("config hot reload disabled", "error", err)
			return
		}
	}

	watcher, err := config.NewWatcher(path, logger)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
		return
	}

	pinNag := cmd.Flags().Changed("tn")
	pinWarn := cmd.Flags().Changed("tw")
	watcher.SetReloadCallback(func(newConfig *config.DaemonConfig) {
		reloadThresholds(thresholds, newConfig, pinNag, pinWarn)
	})
	watcher.SetErrorCallback(func(err error) {
		logger.Warn("rejected config reload, keeping current thresholds", "path", path, "error", err)
	})

	if err := watcher.Start(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
		return
	}
	lifecycle.OnExit("config watcher", watcher.Stop)
}

// reloadThresholds applies reloaded thresholds that are not pinned on the
// command line. An active snooze stays in effect.
func reloadThresholds(thresholds *threshold.Store, newConfig *config.DaemonConfig, pinNag, pinWarn bool) {
	if !pinNag {
		thresholds.SetNag(newConfig.Thresholds.Nag)
	}
	if !pinWarn {
		thresholds.SetWarn(newConfig.Thresholds.Warn)
	}
	logger.Info("thresholds reloaded",
		"nag", thresholds.Nag(),
		"warn", thresholds.Warn(),
		"snoozed", thresholds.Snoozed(),
	)
	if thresholds.Inconsistent() {
		logger.Warn("nag threshold is not below warn threshold, warnings will never fire",
			"nag", thresholds.Nag(), "warn", thresholds.Warn())
	}
}

func moduleName(m notifier.Module) string {
	if m == nil {
		return "none"
	}
	return m.Name()
}
