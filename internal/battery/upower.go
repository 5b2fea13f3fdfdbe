package battery

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	// UPowerBusName is the well-known name of the UPower daemon.
	UPowerBusName = "org.freedesktop.UPower"
	// UPowerDisplayDevice is the composite device UPower exposes for the
	// desktop battery indicator.
	UPowerDisplayDevice = dbus.ObjectPath("/org/freedesktop/UPower/devices/DisplayDevice")

	upowerDeviceInterface = "org.freedesktop.UPower.Device"
)

// UPower device states as defined by org.freedesktop.UPower.Device.State.
const (
	upowerStateCharging    uint32 = 1
	upowerStateDischarging uint32 = 2
)

// UPowerSource reads the battery state from UPower over the system bus.
type UPowerSource struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	path   dbus.ObjectPath
	logger *slog.Logger
}

// NewUPowerSource creates a source for the UPower display device.
// The bus connection is established lazily on the first read.
func NewUPowerSource(logger *slog.Logger) *UPowerSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &UPowerSource{
		path:   UPowerDisplayDevice,
		logger: logger,
	}
}

// Status reads the State property of the device.
func (u *UPowerSource) Status() Status {
	v, err := u.property("State")
	if err != nil {
		u.logger.Debug("failed to read upower state", "error", err)
		return StatusUnknown
	}
	state, ok := v.Value().(uint32)
	if !ok {
		return StatusUnknown
	}
	return upowerStatus(state)
}

// Capacity reads the Percentage property of the device.
func (u *UPowerSource) Capacity() uint32 {
	v, err := u.property("Percentage")
	if err != nil {
		u.logger.Debug("failed to read upower percentage", "error", err)
		return 0
	}
	pct, ok := v.Value().(float64)
	if !ok {
		return 0
	}
	return upowerCapacity(pct)
}

func (u *UPowerSource) property(name string) (dbus.Variant, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.conn == nil {
		conn, err := dbus.SystemBus()
		if err != nil {
			return dbus.Variant{}, fmt.Errorf("failed to connect to system bus: %w", err)
		}
		u.conn = conn
	}

	return u.conn.Object(UPowerBusName, u.path).GetProperty(upowerDeviceInterface + "." + name)
}

func upowerStatus(state uint32) Status {
	switch state {
	case upowerStateCharging:
		return StatusCharging
	case upowerStateDischarging:
		return StatusDischarging
	default:
		return StatusUnknown
	}
}

func upowerCapacity(pct float64) uint32 {
	if math.IsNaN(pct) || pct <= 0 {
		return 0
	}
	return min(uint32(math.Round(pct)), MaxCapacity)
}
