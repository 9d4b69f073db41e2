// Package syncer keeps a locally held copy of a remote list document
// consistent with other devices editing the same document. The remote
// store is read/write only — no change streams — so the substitute for a
// push subscription is an adaptive polling channel per subscribed list,
// paired with an optimistic mutation pipeline for local edits.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/ferndale/pantryd/internal/model"
	"github.com/ferndale/pantryd/internal/remote"
	"github.com/ferndale/pantryd/internal/sanitize"
)

// Fetcher fetches the raw remote document for one list.
type Fetcher func(ctx context.Context) (map[string]any, error)

// ChannelConfig holds the polling cadence for one channel.
type ChannelConfig struct {
	// ActiveInterval is the fast cadence used while the session is
	// foregrounded.
	ActiveInterval time.Duration
	// HiddenInterval is the slow cadence used while it is not, to
	// conserve read quota.
	HiddenInterval time.Duration
	// MaxInterval is the hard ceiling on backoff.
	MaxInterval time.Duration
	// Jitter bounds the random delay added to every schedule, so many
	// open clients of the same list do not poll in lockstep.
	Jitter time.Duration
}

// DefaultChannelConfig mirrors the cadence a browser client would use.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		ActiveInterval: 10 * time.Second,
		HiddenInterval: 60 * time.Second,
		MaxInterval:    5 * time.Minute,
		Jitter:         400 * time.Millisecond,
	}
}

// Channel polls one list document on an adaptive interval. Poll failures
// never surface to the consumer; the channel degrades to slower polling
// and the last successfully sanitized document remains current.
type Channel struct {
	cfg     ChannelConfig
	fetch   Fetcher
	visible func() bool
	onDoc   func(model.ListDocument)
	log     *slog.Logger

	mu       sync.Mutex
	interval time.Duration
	limited  bool

	cancelOnce sync.Once
	done       chan struct{}
	stopped    chan struct{}
	trigger    chan struct{}
}

// NewChannel creates a polling channel. visible may be nil, in which case
// the session is always treated as foregrounded. onDoc receives every
// successfully fetched document, already sanitized.
func NewChannel(cfg ChannelConfig, fetch Fetcher, visible func() bool, onDoc func(model.ListDocument), log *slog.Logger) *Channel {
	if cfg.ActiveInterval <= 0 {
		cfg = DefaultChannelConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Channel{
		cfg:      cfg,
		fetch:    fetch,
		visible:  visible,
		onDoc:    onDoc,
		log:      log,
		interval: cfg.ActiveInterval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		trigger:  make(chan struct{}, 1),
	}
}

// Start begins the polling loop.
func (c *Channel) Start(ctx context.Context) {
	go func() {
		defer close(c.stopped)
		for {
			timer := time.NewTimer(c.delay())
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-c.done:
				timer.Stop()
				return
			case <-c.trigger:
				timer.Stop()
			case <-timer.C:
			}

			c.pollOnce(ctx)

			select {
			case <-c.done:
				return
			default:
			}
		}
	}()
}

// Cancel stops the channel and prevents further transitions. It is safe
// to call repeatedly, including from within the document callback.
func (c *Channel) Cancel() {
	c.cancelOnce.Do(func() { close(c.done) })
}

// TriggerImmediate forces the next poll to run with zero delay, so an
// optimistic local write shortens the window in which other viewers see
// stale remote state.
func (c *Channel) TriggerImmediate() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Interval returns the current base polling interval.
func (c *Channel) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// pollOnce runs a single poll cycle and updates the interval for the
// next one.
func (c *Channel) pollOnce(ctx context.Context) {
	// Visibility guard runs before any remote call.
	if c.visible != nil && !c.visible() {
		c.setInterval(c.cfg.HiddenInterval)
		return
	}

	raw, err := c.fetch(ctx)
	switch {
	case err == nil:
		c.deliver(sanitize.Document(raw))
		c.onSuccess()
	case errors.Is(err, remote.ErrNotFound):
		// Missing document means start fresh, not failure.
		c.deliver(sanitize.Document(nil))
		c.onSuccess()
	case errors.Is(err, remote.ErrRateLimited):
		c.onRateLimited()
	case errors.Is(err, context.Canceled):
	default:
		c.onTransientError(err)
	}
}

func (c *Channel) deliver(doc model.ListDocument) {
	if c.onDoc == nil {
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	c.onDoc(doc)
}

// onSuccess resets to the fast cadence. Recovery from a rate limit is a
// single-shot reset that only happens here, after an actual successful
// poll, never on the mere absence of an error.
func (c *Channel) onSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = c.cfg.ActiveInterval
	c.limited = false
}

func (c *Channel) onRateLimited() {
	c.mu.Lock()
	next := c.interval * 2
	if next > c.cfg.MaxInterval {
		next = c.cfg.MaxInterval
	}
	c.interval = next
	c.limited = true
	c.mu.Unlock()
	c.log.Warn("poll rate limited, backing off", "interval", next)
}

// onTransientError applies a moderate, non-exponential backoff. Network
// blips are assumed more transient than quota exhaustion, but an
// interval already elevated by rate limiting stays elevated.
func (c *Channel) onTransientError(err error) {
	c.mu.Lock()
	if !c.limited {
		next := 3 * c.cfg.ActiveInterval
		if next > c.cfg.MaxInterval {
			next = c.cfg.MaxInterval
		}
		c.interval = next
	}
	interval := c.interval
	c.mu.Unlock()
	c.log.Warn("poll failed", "error", err, "interval", interval)
}

func (c *Channel) setInterval(d time.Duration) {
	c.mu.Lock()
	c.interval = d
	c.mu.Unlock()
}

func (c *Channel) delay() time.Duration {
	d := c.Interval()
	if c.cfg.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(c.cfg.Jitter)))
	}
	return d
}
