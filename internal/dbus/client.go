package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// ActionHandler is called when the user invokes an action on a notification.
type ActionHandler func(id uint32, actionKey string)

// CloseHandler is called when the daemon reports a notification as closed.
type CloseHandler func(id uint32, reason CloseReason)

// Client sends notifications to the session notification daemon.
type Client struct {
	mu     sync.RWMutex
	conn   *dbus.Conn
	logger *slog.Logger

	onAction ActionHandler
	onClose  CloseHandler

	signals chan *dbus.Signal
	done    chan struct{}
}

// NewClient creates a new Client. Call Connect before sending.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		logger: logger,
	}
}

// SetActionHandler sets the handler for ActionInvoked signals.
func (c *Client) SetActionHandler(handler ActionHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAction = handler
}

// SetCloseHandler sets the handler for NotificationClosed signals.
func (c *Client) SetCloseHandler(handler CloseHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = handler
}

// Connect connects to the session bus and subscribes to notification signals.
func (c *Client) Connect() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
	); err != nil {
		return fmt.Errorf("failed to add signal match: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.signals = make(chan *dbus.Signal, 16)
	c.done = make(chan struct{})
	c.mu.Unlock()

	conn.Signal(c.signals)
	go c.processSignals(c.signals, c.done)

	c.logger.Debug("connected to notification daemon", "interface", DBusInterface)
	return nil
}

// Notify sends a notification and returns the id assigned by the daemon.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (c *Client) Notify(n *Notification) (uint32, error) {
	obj, err := c.object()
	if err != nil {
		return 0, err
	}

	actions := n.Actions
	if actions == nil {
		actions = []string{}
	}
	hints := n.Hints
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}

	var id uint32
	call := obj.Call(DBusInterface+".Notify", 0,
		n.AppName, n.ReplacesID, n.AppIcon, n.Summary, n.Body, actions, hints, n.ExpireTimeout)
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}

	c.logger.Debug("sent notification", "id", id, "summary", n.Summary, "urgency", n.Urgency())
	return id, nil
}

// CloseNotification asks the daemon to close the notification with id.
// D-Bus method: CloseNotification(u)
func (c *Client) CloseNotification(id uint32) error {
	obj, err := c.object()
	if err != nil {
		return err
	}

	if err := obj.Call(DBusInterface+".CloseNotification", 0, id).Err; err != nil {
		return fmt.Errorf("failed to close notification %d: %w", id, err)
	}
	return nil
}

// Close unsubscribes from signals. The shared session bus connection stays open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	c.conn.RemoveSignal(c.signals)
	err := c.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
	)
	close(c.done)
	c.conn = nil

	if err != nil {
		return fmt.Errorf("failed to remove signal match: %w", err)
	}
	return nil
}

func (c *Client) object() (dbus.BusObject, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.conn == nil {
		return nil, fmt.Errorf("not connected to D-Bus")
	}
	return c.conn.Object(DBusBusName, DBusPath), nil
}

// processSignals dispatches notification signals until done is closed.
func (c *Client) processSignals(ch <-chan *dbus.Signal, done <-chan struct{}) {
	for {
		select {
		case sig, ok := <-ch:
			if !ok {
				return
			}
			c.handleSignal(sig)
		case <-done:
			return
		}
	}
}

// handleSignal parses an ActionInvoked or NotificationClosed signal and
// invokes the matching handler.
func (c *Client) handleSignal(sig *dbus.Signal) {
	if sig == nil || len(sig.Body) < 2 {
		return
	}

	id, ok := sig.Body[0].(uint32)
	if !ok {
		return
	}

	c.mu.RLock()
	onAction := c.onAction
	onClose := c.onClose
	c.mu.RUnlock()

	switch sig.Name {
	case DBusInterface + ".ActionInvoked":
		key, ok := sig.Body[1].(string)
		if !ok {
			c.logger.Warn("invalid ActionInvoked signal", "id", id)
			return
		}
		c.logger.Debug("action invoked", "id", id, "action_key", key)
		if onAction != nil {
			onAction(id, key)
		}

	case DBusInterface + ".NotificationClosed":
		reason, ok := sig.Body[1].(uint32)
		if !ok {
			c.logger.Warn("invalid NotificationClosed signal", "id", id)
			return
		}
		c.logger.Debug("notification closed", "id", id, "reason", CloseReason(reason).String())
		if onClose != nil {
			onClose(id, CloseReason(reason))
		}
	}
}
