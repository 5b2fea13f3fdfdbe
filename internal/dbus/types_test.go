package dbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestCloseReasonString(t *testing.T) {
	tests := []struct {
		reason   CloseReason
		expected string
	}{
		{CloseReasonExpired, "expired"},
		{CloseReasonDismissed, "dismissed"},
		{CloseReasonClosed, "closed"},
		{CloseReasonUndefined, "undefined"},
		{CloseReason(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reason.String())
		})
	}
}

func TestNewNotification(t *testing.T) {
	tests := []struct {
		name    string
		urgency byte
		icon    string
	}{
		{"low", UrgencyLow, "dialog-information"},
		{"normal", UrgencyNormal, "dialog-warning"},
		{"critical", UrgencyCritical, "dialog-error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNotification("batnag", "Low battery", "Battery level is low.", tt.urgency)
			assert.Equal(t, "batnag", n.AppName)
			assert.Equal(t, "Low battery", n.Summary)
			assert.Equal(t, tt.icon, n.AppIcon)
			assert.Equal(t, tt.urgency, n.Urgency())
			assert.Equal(t, dbus.MakeVariant("device"), n.Hints["category"])
			assert.Equal(t, ExpireDefault, n.ExpireTimeout)
		})
	}
}

func TestAddAction(t *testing.T) {
	n := NewNotification("batnag", "s", "b", UrgencyCritical)
	n.AddAction("snooze", "Snooze")
	n.AddAction("default", "Open")
	assert.Equal(t, []string{"snooze", "Snooze", "default", "Open"}, n.Actions)
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		name     string
		hints    map[string]dbus.Variant
		expected byte
	}{
		{
			name:     "no hint",
			hints:    nil,
			expected: UrgencyNormal,
		},
		{
			name:     "critical urgency",
			hints:    map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))},
			expected: UrgencyCritical,
		},
		{
			name:     "wrong type returns normal",
			hints:    map[string]dbus.Variant{"urgency": dbus.MakeVariant("high")},
			expected: UrgencyNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Notification{Hints: tt.hints}
			assert.Equal(t, tt.expected, n.Urgency())
		})
	}
}
