package syncer

import (
	"sync"
	"time"
)

// Activity is the agent's stand-in for a browser's page-visibility
// signal: the session counts as foregrounded for a window after the last
// local interaction, and polling slows down outside it.
type Activity struct {
	mu     sync.Mutex
	last   time.Time
	window time.Duration
	now    func() time.Time
}

// NewActivity creates a monitor that reports visible for window after
// each Touch. A fresh monitor starts visible.
func NewActivity(window time.Duration) *Activity {
	if window <= 0 {
		window = 2 * time.Minute
	}
	return &Activity{window: window, now: time.Now, last: time.Now()}
}

// Touch marks the session as recently active.
func (a *Activity) Touch() {
	a.mu.Lock()
	a.last = a.now()
	a.mu.Unlock()
}

// Visible reports whether the session counts as foregrounded.
func (a *Activity) Visible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now().Sub(a.last) < a.window
}
