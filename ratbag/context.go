package ratbag

import "sync/atomic"

// Context is the process-wide root. It holds only the test-mode flag
// and a refcount, and is refcounted the same way a Device is, though
// in practice its lifetime is the daemon's lifetime.
//
// A Context does not own the driver registry, the device registry,
// the reactor or the bus connection: the daemon constructs those
// (ratbag/driver, internal/registry, ...) alongside it, and passes the
// Context to the driver registry's Lookup for its TestMode flag.
type Context struct {
	// TestMode, when true, causes driver selection to fall back to a
	// named test driver instead of failing when no descriptor-database
	// entry matches.
	TestMode bool

	refcount int32
}

// NewContext creates a Context with a refcount of one.
func NewContext(testMode bool) *Context {
	return &Context{TestMode: testMode, refcount: 1}
}

// Ref increments the context's reference count.
func (c *Context) Ref() { atomic.AddInt32(&c.refcount, 1) }

// Unref decrements the context's reference count, returning true if it
// reached zero (the caller is then responsible for releasing whatever
// it owns on the Context's behalf: bus connection, reactor, etc.).
func (c *Context) Unref() bool {
	return atomic.AddInt32(&c.refcount, -1) == 0
}
