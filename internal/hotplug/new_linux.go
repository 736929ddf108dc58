//go:build linux

package hotplug

// New returns the platform hot-plug source for the current GOOS.
func New() (Source, error) { return NewLinuxSource() }
