package syncer

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ferndale/pantryd/internal/grocery"
	"github.com/ferndale/pantryd/internal/history"
	"github.com/ferndale/pantryd/internal/model"
	"github.com/ferndale/pantryd/internal/sanitize"
)

// OfflinePrefix marks list IDs that route exclusively to the local cache.
// The routing decision is made once per session.
const OfflinePrefix = "offline-"

// IsOffline reports whether a list ID routes to the local cache.
func IsOffline(listID string) bool {
	return strings.HasPrefix(listID, OfflinePrefix)
}

const persistTimeout = 15 * time.Second

// Persister writes a document to wherever the list is routed. PersistItems
// is the field-level variant: it must leave the document's other fields
// (notably history) untouched on the remote side.
type Persister interface {
	PersistDocument(ctx context.Context, listID string, doc model.ListDocument) error
	PersistItems(ctx context.Context, listID string, doc model.ListDocument) error
}

// Session owns the in-memory document for one list and runs the
// optimistic mutation pipeline: mutations apply to local state
// synchronously and persist in the background, fire and forget. A failed
// persist is logged, never rolled back; local optimistic state stays the
// system of record until the next successful poll replaces it.
type Session struct {
	listID   string
	persist  Persister
	channel  *Channel // nudged after a successful persist; nil offline
	activity *Activity
	log      *slog.Logger

	mu        sync.Mutex
	doc       model.ListDocument
	dirty     bool
	itemsOnly bool
	flushing  bool
	idle      chan struct{} // closed while no flusher is running
}

// NewSession creates a session seeded with the given document.
func NewSession(listID string, seed model.ListDocument, persist Persister, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	idle := make(chan struct{})
	close(idle)
	return &Session{
		listID:    listID,
		persist:   persist,
		log:       log.With("list", listID),
		doc:       sanitize.Document(seed),
		itemsOnly: true,
		idle:      idle,
	}
}

// Document returns a copy of the current in-memory document.
func (s *Session) Document() model.ListDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Apply folds a whole-document mutation into the latest in-memory state.
// The transform always receives the most recently computed document, so
// mutations racing ahead of a pending write still stack instead of
// clobbering each other.
func (s *Session) Apply(transform func(model.ListDocument) model.ListDocument) {
	s.apply(transform, false)
}

// ApplyItems folds a mutation that touches only the item list. When every
// pending mutation is items-only, persistence uses the field-level patch
// so concurrently written history is not overwritten remotely.
func (s *Session) ApplyItems(transform func([]model.Item) []model.Item) {
	s.apply(func(doc model.ListDocument) model.ListDocument {
		doc.Items = transform(doc.Items)
		return doc
	}, true)
}

// AddText parses free-form text ("2 lbs chicken, milk and eggs") into
// items and appends them to the list as one items-only mutation. Returns
// the items that were added, IDs assigned.
func (s *Session) AddText(text string) []model.Item {
	parsed := grocery.ParseText(text)
	if len(parsed) == 0 {
		return nil
	}
	added := make([]model.Item, 0, len(parsed))
	for _, p := range parsed {
		added = append(added, p.Item(uuid.NewString()))
	}
	s.ApplyItems(func(items []model.Item) []model.Item {
		return append(items, added...)
	})
	return added
}

// RecordPurchases folds a batch of purchase events into the document's
// history as a single mutation, so N events cost one write.
func (s *Session) RecordPurchases(events []model.PurchaseEvent) {
	s.Apply(func(doc model.ListDocument) model.ListDocument {
		doc.History = history.Accumulate(doc.History, events, time.Now().UTC())
		return doc
	})
}

func (s *Session) apply(transform func(model.ListDocument) model.ListDocument, itemsOnly bool) {
	s.mu.Lock()
	s.doc = sanitize.Document(transform(s.doc))
	s.dirty = true
	if !itemsOnly {
		s.itemsOnly = false
	}
	start := !s.flushing
	if start {
		s.flushing = true
		s.idle = make(chan struct{})
	}
	s.mu.Unlock()

	if s.activity != nil {
		s.activity.Touch()
	}
	if start {
		go s.flush()
	}
}

// flush drains pending mutations. Each pass snapshots the latest state,
// so writes issued while a persist is in flight coalesce into the next
// one rather than reviving a stale snapshot.
func (s *Session) flush() {
	for {
		s.mu.Lock()
		if !s.dirty {
			s.flushing = false
			close(s.idle)
			s.mu.Unlock()
			return
		}
		doc := s.doc.Clone()
		itemsOnly := s.itemsOnly
		s.dirty = false
		s.itemsOnly = true
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		var err error
		if itemsOnly {
			err = s.persist.PersistItems(ctx, s.listID, doc)
		} else {
			err = s.persist.PersistDocument(ctx, s.listID, doc)
		}
		cancel()

		if err != nil {
			// Accepted risk of the offline-first design: the optimistic
			// local state stands, and the write is lost if the session
			// ends before another mutation retriggers persistence.
			s.log.Warn("persist failed, keeping optimistic local state", "error", err)
			continue
		}
		if s.channel != nil {
			s.channel.TriggerImmediate()
		}
	}
}

// Flush blocks until no persist is pending. Used in tests and shutdown.
func (s *Session) Flush() {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	<-idle
}

// setFromRemote replaces the in-memory document with a freshly polled
// one. Pending local mutations are not merged; the poll that follows
// their persist will bring them back (whole-document last-write-wins).
func (s *Session) setFromRemote(doc model.ListDocument) {
	s.mu.Lock()
	if !s.dirty {
		s.doc = doc
	}
	s.mu.Unlock()
}
