package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifySend(t *testing.T) {
	tests := []struct {
		name     string
		call     func(n *NotifySend) error
		expected []string
	}{
		{
			name: "nag",
			call: func(n *NotifySend) error { return n.Nag(context.Background()) },
			expected: []string{
				"--urgency=critical", "--expire-time=0", "--app-name=batnag",
				"--icon=battery-caution", "Low battery", "Battery level is critical.",
			},
		},
		{
			name: "warn",
			call: func(n *NotifySend) error { return n.Warn(context.Background()) },
			expected: []string{
				"--urgency=normal", "--expire-time=-1", "--app-name=batnag",
				"--icon=battery-caution", "Low battery", "Battery level is low.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotName string
			var gotArgs []string
			n := NewNotifySend(Deps{})
			n.run = func(ctx context.Context, name string, args ...string) error {
				gotName = name
				gotArgs = args
				return nil
			}

			require.NoError(t, tt.call(n))
			assert.Equal(t, "notify-send", gotName)
			assert.Equal(t, tt.expected, gotArgs)
		})
	}
}

func TestNotifySend_Failure(t *testing.T) {
	n := NewNotifySend(Deps{})
	n.run = func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 1")
	}

	err := n.Nag(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run notify-send")
}
