package threshold

import "sync/atomic"

// Default threshold values in percent.
const (
	DefaultNag  = 2
	DefaultWarn = 5
)

// noSnooze marks the snooze slot as empty.
const noSnooze = -1

// Store is the shared threshold cell. The zero value is not useful; use New.
//
// Notifier modules may change the thresholds while a notification is being
// shown, so callers must read them fresh on every check.
//
// A snooze lowers the effective nag threshold without touching the
// configured one, so clearing it restores the configured value.
type Store struct {
	nag    atomic.Uint32
	warn   atomic.Uint32
	snooze atomic.Int64
}

// New creates a Store with the given thresholds.
func New(nag, warn uint32) *Store {
	s := &Store{}
	s.nag.Store(nag)
	s.warn.Store(warn)
	s.snooze.Store(noSnooze)
	return s
}

// NewDefault creates a Store with DefaultNag and DefaultWarn.
func NewDefault() *Store {
	return New(DefaultNag, DefaultWarn)
}

// Nag returns the effective critical threshold: the configured value, or a
// lower snoozed one.
func (s *Store) Nag() uint32 {
	nag := s.nag.Load()
	if v := s.snooze.Load(); v >= 0 && uint32(v) < nag {
		return uint32(v)
	}
	return nag
}

// SetNag sets the configured critical threshold. A snooze below v stays in
// effect.
func (s *Store) SetNag(v uint32) {
	s.nag.Store(v)
}

// Snooze lowers the effective critical threshold to v until ClearSnooze.
// It never raises the threshold and reports whether v was applied.
func (s *Store) Snooze(v uint32) bool {
	for {
		current := s.snooze.Load()
		if v >= s.Nag() {
			return false
		}
		if s.snooze.CompareAndSwap(current, int64(v)) {
			return true
		}
	}
}

// ClearSnooze restores the configured critical threshold and reports whether
// a snooze was in effect.
func (s *Store) ClearSnooze() bool {
	v := s.snooze.Swap(noSnooze)
	return v >= 0 && uint32(v) < s.nag.Load()
}

// Snoozed reports whether a snooze currently lowers the critical threshold.
func (s *Store) Snoozed() bool {
	v := s.snooze.Load()
	return v >= 0 && uint32(v) < s.nag.Load()
}

// Warn returns the warning threshold. Zero disables warnings.
func (s *Store) Warn() uint32 {
	return s.warn.Load()
}

// SetWarn sets the warning threshold.
func (s *Store) SetWarn(v uint32) {
	s.warn.Store(v)
}

// Inconsistent reports whether a configured warning can never fire because
// the nag threshold is at or above it.
func (s *Store) Inconsistent() bool {
	warn := s.Warn()
	return warn > 0 && s.Nag() >= warn
}
