// Package engine runs the battery polling loop. Each tick reads the battery,
// decides between nagging, warning and idling, invokes the selected notifier
// modules and picks the next poll interval.
package engine
