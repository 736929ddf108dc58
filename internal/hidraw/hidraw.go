// Package hidraw provides the per-transaction open/read/write/close
// seam a vendor driver plugs into to talk to a raw-HID node: the node
// is opened per transaction, never held open, so concurrent drivers
// targeting different reports on the same node need no
// reference-counted open state.
//
// Concrete vendor wire protocols are out of scope for this repository;
// this package only provides the transaction primitive. No other
// package in this repository calls it, and it has no unit tests.
package hidraw

import (
	"os"

	"github.com/ratbagd/ratbagd/internal/log"
)

// Node wraps a raw-HID device node path. Each Transact call opens,
// performs one request/response exchange, and closes — mirroring the
// lifecycle rather than caching an *os.File.
type Node struct {
	Path     string
	Sysname  string
	RawLog   log.RawLogger
}

// New returns a Node for path, tagged with sysname for raw-log lines.
// rawLog may be nil (equivalent to a no-op logger).
func New(path, sysname string, rawLog log.RawLogger) *Node {
	if rawLog == nil {
		rawLog = log.NewRaw(nil)
	}
	return &Node{Path: path, Sysname: sysname, RawLog: rawLog}
}

// Transact opens the node, writes req (if non-empty), reads up to
// len(respBuf) bytes into respBuf, and closes the node, returning the
// number of bytes read. Every request and response is mirrored to the
// raw logger.
func (n *Node) Transact(req []byte, respBuf []byte) (int, error) {
	f, err := os.OpenFile(n.Path, os.O_RDWR, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if len(req) > 0 {
		n.RawLog.Log(n.Sysname, true, req)
		if _, err := f.Write(req); err != nil {
			return 0, err
		}
	}
	if len(respBuf) == 0 {
		return 0, nil
	}
	nRead, err := f.Read(respBuf)
	if err != nil {
		return 0, err
	}
	n.RawLog.Log(n.Sysname, false, respBuf[:nRead])
	return nRead, nil
}
