// Package procs reports how many processes are active on the host.
package procs

import "errors"

// ErrUnsupported indicates the platform offers no process count query.
var ErrUnsupported = errors.New("procs: not supported on this platform")

// Count returns the number of active processes.
func Count() (int, error) {
	return count()
}
