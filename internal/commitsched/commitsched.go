// Package commitsched implements the commit scheduler: Commit on the
// bus does not perform the wire transaction
// inline. It enqueues a deferred task on the reactor, replies to the
// method immediately, and the deferred task does the actual work.
//
// Deferred work is posted through a single-threaded reactor instead of
// a bare goroutine, so a commit never races the bus dispatcher or the
// poll loop over the same Device.
package commitsched

import (
	"github.com/ratbagd/ratbagd/ratbag"
)

// Callbacks lets the bus surface (C5) react to a commit's outcome
// without commitsched importing it (avoiding an import cycle between
// the bus layer and the scheduler it drives).
type Callbacks struct {
	// OnCommitSucceeded is invoked after every dirty flag in dev's
	// subtree has been cleared, so the caller can emit IsDirty
	// changed signals for every profile.
	OnCommitSucceeded func(dev *ratbag.Device)
	// OnCommitFailed is invoked on a commit failure, before the
	// caller re-reads/re-emits every child property (step
	// 4: "emits a device-level Resync signal").
	OnCommitFailed func(dev *ratbag.Device, err error)
}

// Scheduler defers commit tasks onto a single-threaded executor (the
// reactor's Post) so a long wire transaction never blocks the bus
// dispatcher.
type Scheduler struct {
	post func(func())
	cb   Callbacks
}

// New returns a Scheduler that posts deferred commit tasks via post
// (normally (*reactor.Reactor).Post).
func New(post func(func()), cb Callbacks) *Scheduler {
	return &Scheduler{post: post, cb: cb}
}

// Enqueue schedules a commit for dev. It takes a strong reference to
// dev immediately (released when the deferred task completes) so a
// concurrent removal cannot free dev out from under the in-flight
// task ("Cancellation and timeouts": "the task holds a strong
// reference, so the Device is not freed mid-write"). Returns
// immediately; the caller (the bus Commit method) replies to its
// caller right after this returns, before the task has run.
func (s *Scheduler) Enqueue(dev *ratbag.Device) {
	dev.Ref()
	s.post(func() {
		defer dev.Unref()
		s.runCommit(dev)
	})
}

func (s *Scheduler) runCommit(dev *ratbag.Device) {
	if dev.Driver == nil {
		s.fail(dev, ratbag.ErrImplementation("device has no bound driver"))
		return
	}

	if err := dev.Driver.Commit(dev); err != nil {
		s.fail(dev, err)
		return
	}

	// The active-profile wire command, when needed, is issued
	// separately from the bulk dirty-subtree write so a driver that
	// has no dedicated command for it (does not implement
	// ActiveProfileSetter) need not special-case the absence; it is
	// invoked only if a profile's active-dirty bit is set during
	// commit.
	if setter, ok := dev.Driver.(ratbag.ActiveProfileSetter); ok {
		for i := range dev.Profiles {
			p := &dev.Profiles[i]
			if p.IsActiveDirty {
				if err := setter.SetActiveProfile(dev, p.Index); err != nil {
					s.fail(dev, err)
					return
				}
			}
		}
	}

	for i := range dev.Profiles {
		dev.Profiles[i].ClearDirty()
	}
	if s.cb.OnCommitSucceeded != nil {
		s.cb.OnCommitSucceeded(dev)
	}
}

func (s *Scheduler) fail(dev *ratbag.Device, err error) {
	if s.cb.OnCommitFailed != nil {
		s.cb.OnCommitFailed(dev, err)
	}
}
