// Package daemon provides the process lifecycle for batnag.
// It runs exit hooks in reverse registration order, turns termination
// signals into context cancellation and detaches the process from its
// controlling terminal.
package daemon
