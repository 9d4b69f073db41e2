package syncer

import (
	"context"

	"github.com/ferndale/pantryd/internal/cache"
	"github.com/ferndale/pantryd/internal/model"
)

// RemoteStore is the slice of the remote adapter the sync engine needs.
// *remote.Store satisfies it.
type RemoteStore interface {
	Read(ctx context.Context, listID string) (map[string]any, error)
	Write(ctx context.Context, listID string, doc model.ListDocument) error
	Patch(ctx context.Context, listID string, fields map[string]any) error
	Exists(ctx context.Context, listID string) (bool, error)
}

type remotePersister struct {
	store RemoteStore
}

func (p remotePersister) PersistDocument(ctx context.Context, listID string, doc model.ListDocument) error {
	return p.store.Write(ctx, listID, doc)
}

// PersistItems patches only the items field, leaving history and
// membership untouched for concurrent writers.
func (p remotePersister) PersistItems(ctx context.Context, listID string, doc model.ListDocument) error {
	return p.store.Patch(ctx, listID, map[string]any{"items": doc.Items})
}

type cachePersister struct {
	cache *cache.Cache
}

func (p cachePersister) PersistDocument(_ context.Context, listID string, doc model.ListDocument) error {
	return p.cache.Put(listID, doc)
}

// The cache holds whole documents, so the items-only variant is the same
// full write.
func (p cachePersister) PersistItems(ctx context.Context, listID string, doc model.ListDocument) error {
	return p.PersistDocument(ctx, listID, doc)
}
