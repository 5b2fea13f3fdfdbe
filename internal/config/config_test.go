package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batnag.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultDaemonConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()

	assert.Equal(t, 60*time.Second, cfg.Poll.Interval.Duration())
	assert.Equal(t, uint32(2), cfg.Thresholds.Nag)
	assert.Equal(t, uint32(5), cfg.Thresholds.Warn)
	assert.Equal(t, "nagbar", cfg.Modules.Nag)
	assert.Empty(t, cfg.Modules.Warn)
	assert.True(t, cfg.Wall.Enabled)
	assert.Equal(t, "sysfs", cfg.Battery.Source)
	assert.Equal(t, "/sys/class/power_supply/BAT0/status", cfg.Battery.StatusPath)
	assert.Equal(t, 10*time.Second, cfg.Nagbar.WarnDisplay.Duration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadDaemonConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadDaemonConfig("/nonexistent/path/batnag.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig(), cfg)
}

func TestLoadDaemonConfig_ParsesTOML(t *testing.T) {
	path := writeConfig(t, `
[poll]
interval = "2m"

[thresholds]
nag = 4
warn = 15

[modules]
nag = "libnotify"
warn = "sound"

[wall]
enabled = false

[battery]
source = "upower"

[nagbar]
path = "/usr/bin/i3-nagbar"
warn_display = 30

[libnotify]
app_name = "power"
snooze = false

[sound]
nag = "~/sounds/critical.ogg"
warn = "~/sounds/low.wav"
volume = 40
`)

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Poll.Interval.Duration())
	assert.Equal(t, uint32(4), cfg.Thresholds.Nag)
	assert.Equal(t, uint32(15), cfg.Thresholds.Warn)
	assert.Equal(t, "libnotify", cfg.Modules.Nag)
	assert.Equal(t, "sound", cfg.Modules.Warn)
	assert.False(t, cfg.Wall.Enabled)
	assert.Equal(t, "upower", cfg.Battery.Source)
	assert.Equal(t, "/usr/bin/i3-nagbar", cfg.Nagbar.Path)
	assert.Equal(t, 30*time.Second, cfg.Nagbar.WarnDisplay.Duration())
	assert.Equal(t, "power", cfg.Libnotify.AppName)
	assert.False(t, cfg.Libnotify.Snooze)
	assert.Equal(t, "~/sounds/critical.ogg", cfg.Sound.Nag)
	assert.Equal(t, 40, cfg.Sound.Volume)
}

func TestLoadDaemonConfig_PartialConfig(t *testing.T) {
	path := writeConfig(t, `
[thresholds]
warn = 20
`)

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)

	// Changed field
	assert.Equal(t, uint32(20), cfg.Thresholds.Warn)

	// Unchanged fields keep their defaults
	assert.Equal(t, uint32(2), cfg.Thresholds.Nag)
	assert.Equal(t, 60*time.Second, cfg.Poll.Interval.Duration())
	assert.Equal(t, "nagbar", cfg.Modules.Nag)
}

func TestLoadDaemonConfig_InvalidTOML(t *testing.T) {
	path := writeConfig(t, `this is not valid toml [`)

	_, err := LoadDaemonConfig(path)
	assert.Error(t, err)
}

func TestLoadDaemonConfig_NagAboveWarnIsAccepted(t *testing.T) {
	path := writeConfig(t, `
[thresholds]
nag = 10
warn = 5
`)

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), cfg.Thresholds.Nag)
}

func TestDaemonConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *DaemonConfig)
		wantErr string
	}{
		{"defaults", func(c *DaemonConfig) {}, ""},
		{"zero interval", func(c *DaemonConfig) { c.Poll.Interval = 0 }, "poll interval"},
		{"nag too high", func(c *DaemonConfig) { c.Thresholds.Nag = 101 }, "nag threshold"},
		{"warn too high", func(c *DaemonConfig) { c.Thresholds.Warn = 200 }, "warn threshold"},
		{"bad source", func(c *DaemonConfig) { c.Battery.Source = "acpi" }, "battery source"},
		{"negative display", func(c *DaemonConfig) { c.Nagbar.WarnDisplay = Duration(-time.Second) }, "warn_display"},
		{"bad volume", func(c *DaemonConfig) { c.Sound.Volume = 150 }, "volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDaemonConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"60", 60 * time.Second, false},
		{"10s", 10 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration())
		})
	}
}

func TestDaemonConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path, err := DaemonConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/batnag/batnag.toml", path)
}

func TestDefaultLockPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/batnag.pid", DefaultLockPath())

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Equal(t, filepath.Join(os.TempDir(), "batnag.pid"), DefaultLockPath())
}
