package engine

import (
	"github.com/jmylchreest/batnag/internal/battery"
	"github.com/jmylchreest/batnag/internal/threshold"
)

// State classifies a battery reading against the thresholds.
type State int

const (
	// StateIdle means the battery is not discharging.
	StateIdle State = iota
	// StateNormal means discharging above the warn threshold.
	StateNormal
	// StateWarned means discharging within the warn band.
	StateWarned
	// StateCritical means discharging at or below the nag threshold.
	StateCritical
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateWarned:
		return "warned"
	case StateCritical:
		return "critical"
	default:
		return "idle"
	}
}

// Classify maps a reading to a State using the current thresholds.
func Classify(r battery.Reading, thresholds *threshold.Store) State {
	if r.Status != battery.StatusDischarging {
		return StateIdle
	}
	if r.Capacity <= thresholds.Nag() {
		return StateCritical
	}
	if warn := thresholds.Warn(); warn > 0 && r.Capacity <= warn {
		return StateWarned
	}
	return StateNormal
}

// Action is what a tick did.
type Action int

const (
	// ActionNone means no notifier was invoked.
	ActionNone Action = iota
	// ActionWarn means the warn notifier was invoked.
	ActionWarn
	// ActionNag means the nag notifier was invoked.
	ActionNag
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionNag:
		return "nag"
	default:
		return "none"
	}
}
