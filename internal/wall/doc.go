// Package wall broadcasts low battery messages to every logged in terminal
// using the host's wall(1) command.
package wall
