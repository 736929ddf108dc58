//go:build !linux

package hotplug

// otherSource is a no-op hot-plug source for platforms without a
// kobject-uevent-equivalent wired up yet. Enumerate always returns no
// devices and Events never fires; the daemon still starts, it just
// never discovers hardware on its own, matching the behavior of a
// reactor with one fewer live source rather than failing startup.
type otherSource struct {
	events chan Event
}

// NewPlatformSource returns the no-op Source used on non-Linux
// platforms.
func NewPlatformSource() (Source, error) {
	return &otherSource{events: make(chan Event)}, nil
}

func (s *otherSource) Enumerate() ([]Event, error) { return nil, nil }
func (s *otherSource) Events() <-chan Event        { return s.events }
func (s *otherSource) Close() error {
	close(s.events)
	return nil
}
