package list

import (
	"sync"
	"time"
)

// DefaultBannerTTL is how long a success banner stays up.
const DefaultBannerTTL = 3 * time.Second

// Timer is the stoppable handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc schedules on the runtime timer.
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Banner is a transient success notice. At most one timer is pending at a
// time; a timer that fires after being superseded has no effect.
type Banner struct {
	mu      sync.Mutex
	ttl     time.Duration
	after   AfterFunc
	visible bool
	gen     uint64
	timer   Timer
	closed  bool
}

// NewBanner builds a banner that hides itself ttl after Show.
func NewBanner(ttl time.Duration, after AfterFunc) *Banner {
	if ttl <= 0 {
		ttl = DefaultBannerTTL
	}
	if after == nil {
		after = RealAfterFunc
	}
	return &Banner{ttl: ttl, after: after}
}

// Show raises the banner and restarts the dismissal window.
func (b *Banner) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.stopLocked()
	b.visible = true
	gen := b.gen
	b.timer = b.after(b.ttl, func() { b.expire(gen) })
}

// Dismiss hides the banner and cancels the pending timer.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	b.visible = false
}

// Visible reports whether the banner is up.
func (b *Banner) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

// Pending reports whether a dismissal timer is outstanding.
func (b *Banner) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timer != nil
}

// Close dismisses the banner for good.
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	b.visible = false
	b.closed = true
}

func (b *Banner) stopLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
}

func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	b.visible = false
	b.timer = nil
}
