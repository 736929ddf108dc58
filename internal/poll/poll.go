// Package poll implements the active-resolution poll loop: every 2
// seconds, ask each attached device's driver to re-read its active
// resolution, and notify subscribers when it changed — catching
// hardware-side changes like a physical DPI-switch button press that
// the daemon did not itself cause.
//
// Each tick re-arms a one-shot time.Timer from within its own callback
// rather than running off a recurring time.Ticker, so a slow tick body
// cannot cause ticks to queue up.
package poll

import "time"

// DefaultInterval is the compile-time poll period: fixed, with no
// back-off and no jitter.
const DefaultInterval = 2 * time.Second

// Loop is the re-arming poll timer. Construct one with New and start
// it with Start; Stop cancels the next scheduled tick.
type Loop struct {
	interval time.Duration
	post     func(func())
	tick     func()

	timer *time.Timer
}

// New returns a Loop that, once started, invokes tick every interval,
// with both the tick body and the re-arm scheduled via post (normally
// (*reactor.Reactor).Post) so everything runs on the single reactor
// goroutine.
func New(interval time.Duration, post func(func()), tick func()) *Loop {
	return &Loop{interval: interval, post: post, tick: tick}
}

// Start arms the first tick.
func (l *Loop) Start() {
	l.arm()
}

// Stop cancels the next scheduled tick. A tick already posted to the
// reactor still runs.
func (l *Loop) Stop() {
	if l.timer != nil {
		l.timer.Stop()
	}
}

func (l *Loop) arm() {
	l.timer = time.AfterFunc(l.interval, func() {
		l.post(func() {
			l.tick()
			l.arm()
		})
	})
}
