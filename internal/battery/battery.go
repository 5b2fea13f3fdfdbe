package battery

import (
	"fmt"
	"log/slog"

	"github.com/jmylchreest/batnag/internal/threshold"
)

// Status is the charge status of the battery.
type Status int

const (
	// StatusUnknown covers every state that is neither charging nor discharging
	// (full, not charging, unreadable source).
	StatusUnknown Status = iota
	// StatusCharging means the battery is being charged.
	StatusCharging
	// StatusDischarging means the system is running on battery.
	StatusDischarging
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusCharging:
		return "charging"
	case StatusDischarging:
		return "discharging"
	default:
		return "unknown"
	}
}

// MaxCapacity is the upper bound of a capacity reading.
const MaxCapacity = 100

// Source reports the instantaneous battery state. Implementations must not
// cache values between calls.
type Source interface {
	Status() Status
	Capacity() uint32
}

// Reading is a single observation of the battery.
type Reading struct {
	Status   Status `json:"status" yaml:"status"`
	Capacity uint32 `json:"capacity" yaml:"capacity"`
}

// Read takes a fresh reading from src.
func Read(src Source) Reading {
	return Reading{
		Status:   src.Status(),
		Capacity: src.Capacity(),
	}
}

// IsCritical reports whether the battery is discharging at or below the
// current nag threshold.
func IsCritical(src Source, thresholds *threshold.Store) bool {
	return src.Status() == StatusDischarging && src.Capacity() <= thresholds.Nag()
}

// Source kinds accepted by New.
const (
	KindSysfs  = "sysfs"
	KindUPower = "upower"
)

// Options configures New.
type Options struct {
	Kind         string
	StatusPath   string
	CapacityPath string
	Logger       *slog.Logger
}

// New creates the battery source selected by opts.Kind.
func New(opts Options) (Source, error) {
	switch opts.Kind {
	case "", KindSysfs:
		return NewSysfsSource(opts.StatusPath, opts.CapacityPath), nil
	case KindUPower:
		return NewUPowerSource(opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown battery source %q", opts.Kind)
	}
}
