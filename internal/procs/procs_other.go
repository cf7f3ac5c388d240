//go:build !linux

package procs

func count() (int, error) {
	return 0, ErrUnsupported
}
