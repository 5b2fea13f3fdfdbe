// Package notifier defines the pluggable alert backends used by the
// escalation engine and the registry that selects them by name.
package notifier
