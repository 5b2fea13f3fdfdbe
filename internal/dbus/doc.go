// Package dbus is a client for the org.freedesktop.Notifications D-Bus
// interface. It sends notifications to the running notification daemon and
// dispatches the ActionInvoked and NotificationClosed signals it emits.
package dbus
