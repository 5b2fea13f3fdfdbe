package battery

import (
	"bytes"
	"io"
	"os"
	"strconv"
)

// Default sysfs paths of the first battery.
const (
	DefaultStatusPath   = "/sys/class/power_supply/BAT0/status"
	DefaultCapacityPath = "/sys/class/power_supply/BAT0/capacity"
)

const (
	statusReadSize   = 16
	capacityReadSize = 4
)

// SysfsSource reads the power_supply class attributes exposed by the kernel.
type SysfsSource struct {
	StatusPath   string
	CapacityPath string
}

// NewSysfsSource creates a SysfsSource. Empty paths fall back to BAT0.
func NewSysfsSource(statusPath, capacityPath string) *SysfsSource {
	if statusPath == "" {
		statusPath = DefaultStatusPath
	}
	if capacityPath == "" {
		capacityPath = DefaultCapacityPath
	}
	return &SysfsSource{
		StatusPath:   statusPath,
		CapacityPath: capacityPath,
	}
}

// Status reads the status attribute.
func (s *SysfsSource) Status() Status {
	buf, ok := readHead(s.StatusPath, statusReadSize)
	if !ok {
		return StatusUnknown
	}
	return ParseStatus(buf)
}

// Capacity reads the capacity attribute.
func (s *SysfsSource) Capacity() uint32 {
	buf, ok := readHead(s.CapacityPath, capacityReadSize)
	if !ok {
		return 0
	}
	return ParseCapacity(buf)
}

// ParseStatus maps the leading text of a status attribute to a Status.
func ParseStatus(buf []byte) Status {
	switch {
	case bytes.HasPrefix(buf, []byte("Charging")):
		return StatusCharging
	case bytes.HasPrefix(buf, []byte("Discharging")):
		return StatusDischarging
	default:
		return StatusUnknown
	}
}

// ParseCapacity parses the leading decimal digits of buf, ignoring leading
// blanks. Anything unparsable yields 0; values above MaxCapacity are clamped.
func ParseCapacity(buf []byte) uint32 {
	buf = bytes.TrimLeft(buf, " \t")

	end := 0
	for end < len(buf) && buf[end] >= '0' && buf[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	v, err := strconv.ParseUint(string(buf[:end]), 10, 32)
	if err != nil {
		return 0
	}
	return min(uint32(v), MaxCapacity)
}

// readHead reads at most n bytes from the start of path.
func readHead(path string, n int) ([]byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, false
	}
	return buf[:read], true
}
