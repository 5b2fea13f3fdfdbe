package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/batnag/internal/battery"
	"github.com/jmylchreest/batnag/internal/threshold"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "10s", "1m", "1m30s", or a bare integer number of seconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Bare integers are seconds, matching the --interval flag
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '10s', '1m' or seconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default configuration values.
const (
	DefaultInterval    = 60 * time.Second
	DefaultNagModule   = "nagbar"
	DefaultWarnDisplay = 10 * time.Second
	DefaultAppName     = "batnag"
	DefaultNagbarPath  = "i3-nagbar"
	DefaultVolume      = 80
)

// DaemonConfig is the configuration for batnag.
// Loaded from ~/.config/batnag/batnag.toml
type DaemonConfig struct {
	Poll       PollConfig      `toml:"poll"`
	Thresholds ThresholdConfig `toml:"thresholds"`
	Modules    ModulesConfig   `toml:"modules"`
	Wall       WallConfig      `toml:"wall"`
	Battery    BatteryConfig   `toml:"battery"`
	Nagbar     NagbarConfig    `toml:"nagbar"`
	Libnotify  LibnotifyConfig `toml:"libnotify"`
	Sound      SoundConfig     `toml:"sound"`
	Lock       LockConfig      `toml:"lock"`
}

// PollConfig controls the polling cadence.
type PollConfig struct {
	Interval Duration `toml:"interval"` // e.g. "60s", "2m" or 60
}

// ThresholdConfig holds battery percentages.
type ThresholdConfig struct {
	Nag  uint32 `toml:"nag"`  // Critical level
	Warn uint32 `toml:"warn"` // Warning level, 0 disables
}

// ModulesConfig selects the notifier modules by name.
type ModulesConfig struct {
	Nag  string `toml:"nag"`
	Warn string `toml:"warn"`
}

// WallConfig controls terminal broadcasts.
type WallConfig struct {
	Enabled bool   `toml:"enabled"`
	Command string `toml:"command"`
}

// BatteryConfig selects the battery source.
type BatteryConfig struct {
	Source       string `toml:"source"` // "sysfs" or "upower"
	StatusPath   string `toml:"status_path"`
	CapacityPath string `toml:"capacity_path"`
}

// NagbarConfig configures the i3-nagbar module.
type NagbarConfig struct {
	Path        string   `toml:"path"`
	WarnDisplay Duration `toml:"warn_display"` // How long the warning bar stays up
}

// LibnotifyConfig configures the desktop notification module.
type LibnotifyConfig struct {
	AppName string `toml:"app_name"`
	Snooze  bool   `toml:"snooze"` // Offer a snooze action on critical notifications
}

// SoundConfig configures the sound module.
type SoundConfig struct {
	Nag    string `toml:"nag"`  // Sound file played at the critical level
	Warn   string `toml:"warn"` // Sound file played at the warning level
	Volume int    `toml:"volume"`
}

// LockConfig configures the single instance lock.
type LockConfig struct {
	Path string `toml:"path"`
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Poll: PollConfig{
			Interval: Duration(DefaultInterval),
		},
		Thresholds: ThresholdConfig{
			Nag:  threshold.DefaultNag,
			Warn: threshold.DefaultWarn,
		},
		Modules: ModulesConfig{
			Nag:  DefaultNagModule,
			Warn: "",
		},
		Wall: WallConfig{
			Enabled: true,
			Command: "wall",
		},
		Battery: BatteryConfig{
			Source:       battery.KindSysfs,
			StatusPath:   battery.DefaultStatusPath,
			CapacityPath: battery.DefaultCapacityPath,
		},
		Nagbar: NagbarConfig{
			Path:        DefaultNagbarPath,
			WarnDisplay: Duration(DefaultWarnDisplay),
		},
		Libnotify: LibnotifyConfig{
			AppName: DefaultAppName,
			Snooze:  true,
		},
		Sound: SoundConfig{
			Volume: DefaultVolume,
		},
		Lock: LockConfig{
			Path: DefaultLockPath(),
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func DaemonConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "batnag", "batnag.toml"), nil
}

// DefaultLockPath returns the instance lock path.
// Uses XDG_RUNTIME_DIR if set, otherwise the OS temp directory.
func DefaultLockPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "batnag.pid")
}

// LoadDaemonConfig loads the daemon configuration from path.
// If path is empty, uses DaemonConfigPath. A missing file yields the defaults.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		var err error
		path, err = DaemonConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid.
// A nag threshold at or above the warn threshold is allowed and only reported
// at startup.
func (c *DaemonConfig) Validate() error {
	if c.Poll.Interval.Duration() <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Poll.Interval.Duration())
	}

	if c.Thresholds.Nag > battery.MaxCapacity {
		return fmt.Errorf("nag threshold must be between 0 and 100, got %d", c.Thresholds.Nag)
	}
	if c.Thresholds.Warn > battery.MaxCapacity {
		return fmt.Errorf("warn threshold must be between 0 and 100, got %d", c.Thresholds.Warn)
	}

	switch c.Battery.Source {
	case battery.KindSysfs, battery.KindUPower:
	default:
		return fmt.Errorf("invalid battery source %q, must be one of: %v",
			c.Battery.Source, []string{battery.KindSysfs, battery.KindUPower})
	}

	if c.Nagbar.WarnDisplay.Duration() < 0 {
		return fmt.Errorf("nagbar warn_display must not be negative, got %s", c.Nagbar.WarnDisplay.Duration())
	}

	if c.Sound.Volume < 0 || c.Sound.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Sound.Volume)
	}

	return nil
}
