// Package lock provides the single instance lock: an exclusive flock(2) held
// on a PID file for the lifetime of the daemon.
package lock
