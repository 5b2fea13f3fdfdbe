// Package battery reads the charge status and capacity of the system battery.
// Readings are best effort: an unreadable source reports an unknown status and
// zero capacity instead of an error, since it is polled again on the next tick.
package battery
