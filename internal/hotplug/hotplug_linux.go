//go:build linux

package hotplug

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	hidrawSysfsDir = "/sys/class/hidraw"
)

// netlinkSource subscribes to NETLINK_KOBJECT_UEVENT, the same
// mechanism udev itself uses, filtering to hidraw subsystem events.
type netlinkSource struct {
	fd     int
	events chan Event
	done   chan struct{}
}

// NewLinuxSource opens a kobject-uevent netlink socket and starts
// reading it in a background goroutine. Close stops the goroutine and
// closes the socket.
func NewLinuxSource() (Source, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, fmt.Errorf("hotplug: opening netlink socket: %w", err)
	}
	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: 1}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("hotplug: binding netlink socket: %w", err)
	}

	s := &netlinkSource{
		fd:     fd,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *netlinkSource) readLoop() {
	defer close(s.events)
	buf := make([]byte, 8192)
	for {
		n, _, err := unix.Recvfrom(s.fd, buf, 0)
		select {
		case <-s.done:
			return
		default:
		}
		if err != nil {
			return
		}
		if ev, ok := parseUevent(buf[:n]); ok {
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		}
	}
}

// parseUevent decodes one NUL-separated kobject-uevent message into
// an Event, filtered to the hidraw subsystem ("events for
// the raw-HID subsystem"; non-matching events, and sysnames not
// starting with hidraw, are discarded here rather than forwarded for
// the caller to filter).
func parseUevent(raw []byte) (Event, bool) {
	fields := bytes.Split(raw, []byte{0})
	var action, subsystem, devpath string
	for _, f := range fields {
		s := string(f)
		switch {
		case strings.HasPrefix(s, "ACTION="):
			action = strings.TrimPrefix(s, "ACTION=")
		case strings.HasPrefix(s, "SUBSYSTEM="):
			subsystem = strings.TrimPrefix(s, "SUBSYSTEM=")
		case strings.HasPrefix(s, "DEVPATH="):
			devpath = strings.TrimPrefix(s, "DEVPATH=")
		}
	}
	if subsystem != "hidraw" || devpath == "" {
		return Event{}, false
	}
	sysname := filepath.Base(devpath)
	if !strings.HasPrefix(sysname, "hidraw") {
		return Event{}, false
	}
	// DEVPATH is relative to the sysfs mount point.
	sysPath := filepath.Join("/sys", devpath)
	switch action {
	case "remove":
		return Event{Sysname: sysname, Action: ActionRemove, DevicePath: sysPath}, true
	case "add", "change":
		return Event{Sysname: sysname, Action: ActionAdd, DevicePath: sysPath}, true
	default:
		return Event{}, false
	}
}

// Enumerate lists every node currently under /sys/class/hidraw, in the
// order the kernel returns the directory entries (not sorted).
func (s *netlinkSource) Enumerate() ([]Event, error) {
	dir, err := os.Open(hidrawSysfsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entries, err := dir.ReadDir(-1)
	_ = dir.Close()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "hidraw") {
			names = append(names, e.Name())
		}
	}

	out := make([]Event, 0, len(names))
	for _, name := range names {
		out = append(out, Event{
			Sysname:    name,
			Action:     ActionAdd,
			DevicePath: filepath.Join(hidrawSysfsDir, name),
		})
	}
	return out, nil
}

func (s *netlinkSource) Events() <-chan Event { return s.events }

func (s *netlinkSource) Close() error {
	close(s.done)
	return unix.Close(s.fd)
}
