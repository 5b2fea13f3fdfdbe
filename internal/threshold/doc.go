// Package threshold holds the nag and warn battery thresholds shared between
// the CLI, the escalation engine, the config watcher and notifier modules.
package threshold
