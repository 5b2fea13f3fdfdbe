package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/batnag/internal/battery"
	"github.com/jmylchreest/batnag/internal/engine"
	"github.com/jmylchreest/batnag/internal/lock"
	"github.com/jmylchreest/batnag/internal/threshold"
)

var statusOpts struct {
	format string
}

// Output formats accepted by --format.
const (
	formatWaybar = "waybar"
	formatJSON   = "json"
	formatYAML   = "yaml"
	formatPlain  = "plain"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text"`
	Alt        string `json:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage int    `json:"percentage"`
}

// StatusReport is a one-shot battery reading classified against the thresholds.
type StatusReport struct {
	Status        string        `json:"status" yaml:"status"`
	Capacity      uint32        `json:"capacity" yaml:"capacity"`
	State         string        `json:"state" yaml:"state"`
	NagThreshold  uint32        `json:"nag_threshold" yaml:"nag_threshold"`
	WarnThreshold uint32        `json:"warn_threshold" yaml:"warn_threshold"`
	Source        string        `json:"source" yaml:"source"`
	Daemon        *DaemonStatus `json:"daemon,omitempty" yaml:"daemon,omitempty"`
}

// DaemonStatus describes a running batnag instance.
type DaemonStatus struct {
	PID   int       `json:"pid" yaml:"pid"`
	Since time.Time `json:"since" yaml:"since"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the battery state",
	Long: `Read the battery once and print it classified against the thresholds.

The state is one of idle (not discharging), normal, warned (within the warn
band) or critical (at or below the nag threshold).

With --format waybar the output suits Waybar's custom module:

  "custom/battery": {
    "exec": "batnag status --format waybar",
    "interval": 30,
    "return-type": "json"
  }`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", formatPlain,
		"Output format (waybar, json, yaml, plain)")
}

func runStatus(cmd *cobra.Command, args []string) error {
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
	report := buildReport(battery.Read(source), thresholds, cfg.Battery.Source)
	report.Daemon = daemonStatus(cfg.Lock.Path)

	return writeStatus(cmd.OutOrStdout(), report, statusOpts.format)
}

// buildReport classifies a reading.
func buildReport(r battery.Reading, thresholds *threshold.Store, source string) StatusReport {
	return StatusReport{
		Status:        r.Status.String(),
		Capacity:      r.Capacity,
		State:         engine.Classify(r, thresholds).String(),
		NagThreshold:  thresholds.Nag(),
		WarnThreshold: thresholds.Warn(),
		Source:        source,
	}
}

// daemonStatus returns the running instance holding the lock at path, if any.
func daemonStatus(path string) *DaemonStatus {
	if err := lock.Probe(path); !errors.Is(err, lock.ErrLocked) {
		return nil
	}

	pid, err := lock.ReadPID(path)
	if err != nil {
		logger.Debug("failed to read PID file", "path", path, "error", err)
		return nil
	}

	status := &DaemonStatus{PID: pid}
	if info, err := os.Stat(path); err == nil {
		status.Since = info.ModTime()
	}
	return status
}

func writeStatus(w io.Writer, report StatusReport, format string) error {
	switch format {
	case formatWaybar:
		return json.NewEncoder(w).Encode(waybarStatus(report))
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return err
		}
		return encoder.Close()
	case formatPlain:
		_, err := fmt.Fprintln(w, plainStatus(report))
		return err
	default:
		return fmt.Errorf("unknown format %q, must be one of: %v",
			format, []string{formatWaybar, formatJSON, formatYAML, formatPlain})
	}
}

// waybarStatus maps the report onto Waybar's module format. The state is used
// as both alt and CSS class.
func waybarStatus(report StatusReport) WaybarStatus {
	return WaybarStatus{
		Text:       fmt.Sprintf("%d%%", report.Capacity),
		Alt:        report.State,
		Tooltip:    tooltip(report),
		Class:      report.State,
		Percentage: int(report.Capacity),
	}
}

func tooltip(report StatusReport) string {
	lines := []string{
		fmt.Sprintf("%s, %d%%", report.Status, report.Capacity),
		fmt.Sprintf("Nag at %d%%, warn at %d%%", report.NagThreshold, report.WarnThreshold),
	}
	if report.Daemon != nil {
		lines = append(lines, fmt.Sprintf("batnag running (pid %d)", report.Daemon.PID))
	}
	return strings.Join(lines, "\n")
}

func plainStatus(report StatusReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d%% (%s; nag at %d%%, warn at %d%%)",
		report.Status, report.Capacity, report.State, report.NagThreshold, report.WarnThreshold)

	if d := report.Daemon; d != nil {
		fmt.Fprintf(&b, "\ndaemon: pid %d", d.PID)
		if !d.Since.IsZero() {
			fmt.Fprintf(&b, ", started %s", humanize.Time(d.Since))
		}
	} else {
		b.WriteString("\ndaemon: not running")
	}
	return b.String()
}
