package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferndale/pantryd/internal/model"
	"github.com/ferndale/pantryd/internal/remote"
)

func testChannelConfig() ChannelConfig {
	return ChannelConfig{
		ActiveInterval: 10 * time.Second,
		HiddenInterval: 60 * time.Second,
		MaxInterval:    5 * time.Minute,
	}
}

// scriptedFetcher returns each response in order, then repeats the last.
type scriptedFetcher struct {
	responses []error
	calls     int
}

func (f *scriptedFetcher) fetch(context.Context) (map[string]any, error) {
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	if err := f.responses[i]; err != nil {
		return nil, err
	}
	return map[string]any{"items": []any{}}, nil
}

func TestRateLimitBackoffDoublesAndCaps(t *testing.T) {
	f := &scriptedFetcher{responses: []error{remote.ErrRateLimited}}
	c := NewChannel(testChannelConfig(), f.fetch, nil, nil, nil)

	want := []time.Duration{
		20 * time.Second, 40 * time.Second, 80 * time.Second,
		160 * time.Second, 300 * time.Second, 300 * time.Second,
	}
	prev := c.Interval()
	for i, w := range want {
		c.pollOnce(context.Background())
		got := c.Interval()
		if got != w {
			t.Errorf("after rate limit %d: interval = %v, want %v", i+1, got, w)
		}
		if got < prev {
			t.Errorf("backoff decreased: %v -> %v", prev, got)
		}
		prev = got
	}
}

func TestSuccessResetsBackoff(t *testing.T) {
	f := &scriptedFetcher{responses: []error{
		remote.ErrRateLimited, remote.ErrRateLimited, nil,
	}}
	var delivered int
	c := NewChannel(testChannelConfig(), f.fetch, nil, func(model.ListDocument) { delivered++ }, nil)

	c.pollOnce(context.Background())
	c.pollOnce(context.Background())
	if c.Interval() != 40*time.Second {
		t.Fatalf("interval = %v before success", c.Interval())
	}

	c.pollOnce(context.Background())
	if c.Interval() != 10*time.Second {
		t.Errorf("interval = %v after success, want active", c.Interval())
	}
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
}

func TestTransientErrorModerateBackoff(t *testing.T) {
	f := &scriptedFetcher{responses: []error{errors.New("connection reset")}}
	c := NewChannel(testChannelConfig(), f.fetch, nil, nil, nil)

	c.pollOnce(context.Background())
	if c.Interval() != 30*time.Second {
		t.Errorf("interval = %v, want 3x active", c.Interval())
	}

	// Repeats do not compound.
	c.pollOnce(context.Background())
	if c.Interval() != 30*time.Second {
		t.Errorf("interval = %v after second transient error", c.Interval())
	}
}

func TestTransientErrorDoesNotUndoRateLimitBackoff(t *testing.T) {
	f := &scriptedFetcher{responses: []error{
		remote.ErrRateLimited, remote.ErrRateLimited, remote.ErrRateLimited,
		errors.New("timeout"),
	}}
	c := NewChannel(testChannelConfig(), f.fetch, nil, nil, nil)

	for i := 0; i < 3; i++ {
		c.pollOnce(context.Background())
	}
	elevated := c.Interval()
	c.pollOnce(context.Background())
	if c.Interval() < elevated {
		t.Errorf("transient error lowered rate-limit backoff: %v -> %v", elevated, c.Interval())
	}
}

func TestHiddenSkipsFetch(t *testing.T) {
	f := &scriptedFetcher{responses: []error{remote.ErrRateLimited}}
	visible := false
	c := NewChannel(testChannelConfig(), f.fetch, func() bool { return visible }, nil, nil)

	// Elevate backoff first, then hide.
	visible = true
	c.pollOnce(context.Background())
	c.pollOnce(context.Background())

	visible = false
	calls := f.calls
	c.pollOnce(context.Background())
	if f.calls != calls {
		t.Error("hidden poll still hit the network")
	}
	if c.Interval() != 60*time.Second {
		t.Errorf("interval = %v, want hidden interval regardless of backoff", c.Interval())
	}
}

func TestNotFoundDeliversFreshDocument(t *testing.T) {
	f := &scriptedFetcher{responses: []error{remote.ErrNotFound}}
	var got *model.ListDocument
	c := NewChannel(testChannelConfig(), f.fetch, nil, func(d model.ListDocument) { got = &d }, nil)

	c.pollOnce(context.Background())
	if got == nil {
		t.Fatal("missing document should deliver a fresh one")
	}
	if len(got.Items) != 0 || len(got.History) != 0 {
		t.Errorf("fresh doc = %+v", got)
	}
	if c.Interval() != 10*time.Second {
		t.Errorf("interval = %v, not-found is not a failure", c.Interval())
	}
}

func TestCancelIdempotentAndFromCallback(t *testing.T) {
	f := &scriptedFetcher{responses: []error{nil}}
	var c *Channel
	c = NewChannel(testChannelConfig(), f.fetch, nil, func(model.ListDocument) {
		c.Cancel() // cancelling from within the callback must be safe
	}, nil)

	c.pollOnce(context.Background())
	c.Cancel()
	c.Cancel()
}

func TestTriggerImmediate(t *testing.T) {
	cfg := testChannelConfig()
	cfg.ActiveInterval = time.Hour // the loop only wakes when triggered
	f := &scriptedFetcher{responses: []error{nil}}
	polled := make(chan struct{}, 4)
	c := NewChannel(cfg, f.fetch, nil, func(model.ListDocument) { polled <- struct{}{} }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	defer c.Cancel()

	c.TriggerImmediate()
	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("triggered poll never ran")
	}
}

func TestJitterBounded(t *testing.T) {
	cfg := testChannelConfig()
	cfg.Jitter = 300 * time.Millisecond
	c := NewChannel(cfg, nil, nil, nil, nil)

	for i := 0; i < 50; i++ {
		d := c.delay()
		if d < cfg.ActiveInterval || d >= cfg.ActiveInterval+cfg.Jitter {
			t.Fatalf("delay %v outside [interval, interval+jitter)", d)
		}
	}
}
