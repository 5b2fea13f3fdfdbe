package dbus

import (
	"github.com/godbus/dbus/v5"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	// DBusBusName is the bus name of the notification daemon.
	DBusBusName = "org.freedesktop.Notifications"
)

// Urgency levels from the freedesktop.org notification specification.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// Expiration timeouts with special meaning to the notification daemon.
const (
	ExpireDefault int32 = -1
	ExpireNever   int32 = 0
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved by the protocol.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Notification holds the arguments of an org.freedesktop.Notifications.Notify call.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// NewNotification creates a device notification with the given urgency.
// The icon follows the urgency: dialog-information, dialog-warning or dialog-error.
func NewNotification(appName, summary, body string, urgency byte) *Notification {
	n := &Notification{
		AppName: appName,
		Summary: summary,
		Body:    body,
		Hints: map[string]dbus.Variant{
			"urgency":  dbus.MakeVariant(urgency),
			"category": dbus.MakeVariant("device"),
		},
		ExpireTimeout: ExpireDefault,
	}

	switch urgency {
	case UrgencyLow:
		n.AppIcon = "dialog-information"
	case UrgencyCritical:
		n.AppIcon = "dialog-error"
	default:
		n.AppIcon = "dialog-warning"
	}

	return n
}

// AddAction appends an action button to the notification.
func (n *Notification) AddAction(key, label string) {
	n.Actions = append(n.Actions, key, label)
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *Notification) Urgency() byte {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return b
		}
	}
	return UrgencyNormal
}
