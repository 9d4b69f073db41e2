package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ferndale/pantryd/internal/cache"
	"github.com/ferndale/pantryd/internal/model"
	"github.com/ferndale/pantryd/internal/remote"
	"github.com/ferndale/pantryd/internal/sanitize"
)

// Engine manages the session/channel pair for every subscribed list and
// routes each list to the remote store or the local cache.
type Engine struct {
	remote   RemoteStore // nil when running offline-only
	cache    *cache.Cache
	cfg      ChannelConfig
	activity *Activity
	log      *slog.Logger

	mu   sync.Mutex
	subs map[string]*Subscription
}

// NewEngine creates a sync engine. remoteStore may be nil, in which case
// only offline-prefixed lists can be subscribed.
func NewEngine(remoteStore RemoteStore, localCache *cache.Cache, cfg ChannelConfig, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ActiveInterval <= 0 {
		cfg = DefaultChannelConfig()
	}
	return &Engine{
		remote:   remoteStore,
		cache:    localCache,
		cfg:      cfg,
		activity: NewActivity(2 * time.Minute),
		log:      log,
		subs:     make(map[string]*Subscription),
	}
}

// Subscription is the handle for one subscribed list. Consumers must call
// Cancel on teardown so orphaned timers stop consuming read quota.
type Subscription struct {
	session *Session
	channel *Channel // nil for offline lists

	cancelOnce sync.Once
	unregister func()
}

// Session returns the mutation pipeline for this list.
func (s *Subscription) Session() *Session { return s.session }

// Cancel tears the subscription down. Safe to call multiple times.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		if s.channel != nil {
			s.channel.Cancel()
		}
		s.unregister()
	})
}

// Subscribe starts synchronizing one list and invokes onChange with the
// initial document and every subsequent remote change. Setup failures
// (the initial fetch failing outright after retries) are the only errors
// surfaced; everything after setup degrades silently.
func (e *Engine) Subscribe(ctx context.Context, listID string, onChange func(model.ListDocument)) (*Subscription, error) {
	e.mu.Lock()
	if existing, ok := e.subs[listID]; ok {
		e.mu.Unlock()
		return existing, nil
	}
	e.mu.Unlock()

	if IsOffline(listID) {
		return e.subscribeOffline(listID, onChange)
	}
	if e.remote == nil {
		return nil, fmt.Errorf("subscribe %s: no remote store configured", listID)
	}
	return e.subscribeRemote(ctx, listID, onChange)
}

func (e *Engine) subscribeOffline(listID string, onChange func(model.ListDocument)) (*Subscription, error) {
	cached, err := e.cache.Get(listID)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", listID, err)
	}
	doc := sanitize.Document(cached)

	session := NewSession(listID, doc, cachePersister{cache: e.cache}, e.log)
	session.activity = e.activity
	sub := e.register(listID, session, nil)
	if onChange != nil {
		onChange(session.Document())
	}
	return sub, nil
}

func (e *Engine) subscribeRemote(ctx context.Context, listID string, onChange func(model.ListDocument)) (*Subscription, error) {
	doc, err := e.initialFetch(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", listID, err)
	}

	session := NewSession(listID, doc, remotePersister{store: e.remote}, e.log)
	session.activity = e.activity

	channel := NewChannel(e.cfg,
		func(ctx context.Context) (map[string]any, error) { return e.remote.Read(ctx, listID) },
		e.activity.Visible,
		func(fresh model.ListDocument) {
			session.setFromRemote(fresh)
			if onChange != nil {
				onChange(fresh)
			}
		},
		e.log.With("list", listID),
	)
	session.channel = channel

	sub := e.register(listID, session, channel)
	if onChange != nil {
		onChange(session.Document())
	}
	channel.Start(ctx)
	return sub, nil
}

// initialFetch is the one place with a retry affordance: if the first
// read fails outright the consumer gets a hard error and may try again.
// A missing document means first access, so the list is created fresh.
func (e *Engine) initialFetch(ctx context.Context, listID string) (model.ListDocument, error) {
	var raw map[string]any
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var readErr error
		raw, readErr = e.remote.Read(ctx, listID)
		if readErr == nil || errors.Is(readErr, remote.ErrNotFound) {
			return readErr
		}
		return retry.RetryableError(readErr)
	})

	switch {
	case err == nil:
		return sanitize.Document(raw), nil
	case errors.Is(err, remote.ErrNotFound):
		doc := sanitize.Document(nil)
		if writeErr := e.remote.Write(ctx, listID, doc); writeErr != nil {
			e.log.Warn("create fresh list failed", "list", listID, "error", writeErr)
		}
		return doc, nil
	default:
		return model.ListDocument{}, fmt.Errorf("initial fetch: %w", err)
	}
}

func (e *Engine) register(listID string, session *Session, channel *Channel) *Subscription {
	sub := &Subscription{
		session: session,
		channel: channel,
		unregister: func() {
			e.mu.Lock()
			delete(e.subs, listID)
			e.mu.Unlock()
		},
	}
	e.mu.Lock()
	e.subs[listID] = sub
	e.mu.Unlock()
	return sub
}

// Touch marks the agent as foregrounded, speeding polling back up.
func (e *Engine) Touch() { e.activity.Touch() }

// Close cancels every subscription and waits for pending persists.
func (e *Engine) Close() {
	e.mu.Lock()
	subs := make([]*Subscription, 0, len(e.subs))
	for _, sub := range e.subs {
		subs = append(subs, sub)
	}
	e.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
		sub.session.Flush()
	}
}
