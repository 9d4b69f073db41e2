package sanitize

import (
	"reflect"
	"testing"
	"time"

	"github.com/ferndale/pantryd/internal/model"
)

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	old := Now
	Now = func() time.Time { return now }
	t.Cleanup(func() { Now = old })
	return now
}

func TestDocumentDefaults(t *testing.T) {
	cases := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"empty map", map[string]any{}},
		{"wrong type", 42},
		{"string", "not a document"},
		{"nil pointer", (*model.ListDocument)(nil)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := Document(tc.raw)
			if doc.Items == nil || len(doc.Items) != 0 {
				t.Errorf("items = %v, want empty slice", doc.Items)
			}
			if doc.History == nil || len(doc.History) != 0 {
				t.Errorf("history = %v, want empty slice", doc.History)
			}
		})
	}
}

func TestDocumentFieldCoercion(t *testing.T) {
	fixedNow(t)

	doc := Document(map[string]any{
		"items": []any{
			map[string]any{"id": "a1", "name": "Milk", "completed": true, "category": "Dairy"},
			map[string]any{"quantity": 2},
		},
		"ownerId": "user-1",
		"members": []any{"user-1", "user-2"},
	})

	if len(doc.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(doc.Items))
	}
	if doc.Items[0].Name != "Milk" || !doc.Items[0].Completed {
		t.Errorf("item[0] = %+v", doc.Items[0])
	}
	second := doc.Items[1]
	if second.Name != "" || second.Category != "" || second.Completed {
		t.Errorf("missing fields not defaulted: %+v", second)
	}
	if second.Quantity == nil || *second.Quantity != 2 {
		t.Errorf("quantity = %v, want 2", second.Quantity)
	}
	if doc.OwnerID != "user-1" || len(doc.Members) != 2 {
		t.Errorf("ownerId=%q members=%v", doc.OwnerID, doc.Members)
	}
}

func TestTimestampCoercion(t *testing.T) {
	now := fixedNow(t)

	cases := []struct {
		name string
		in   any
		want string
	}{
		{"rfc3339 string kept", "2025-01-02T03:04:05Z", "2025-01-02T03:04:05Z"},
		{"date-only string", "2025-01-02", "2025-01-02T00:00:00Z"},
		{"native time", time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC), "2025-06-01T08:30:00Z"},
		{"seconds object", map[string]any{"seconds": 1735689600}, "2025-01-01T00:00:00Z"},
		{"garbage defaults to now", []any{"nope"}, now.Format(time.RFC3339)},
		{"empty string defaults to now", "", now.Format(time.RFC3339)},
		{"unparseable string defaults to now", "last tuesday", now.Format(time.RFC3339)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := Document(map[string]any{
				"history": []any{map[string]any{"name": "Milk", "lastPurchased": tc.in}},
			})
			if got := doc.History[0].LastPurchased; got != tc.want {
				t.Errorf("lastPurchased = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLastAddedAlias(t *testing.T) {
	fixedNow(t)

	doc := Document(map[string]any{
		"history": []any{map[string]any{"name": "Bread", "lastAdded": "2024-11-05T00:00:00Z"}},
	})
	h := doc.History[0]
	if h.LastPurchased != "2024-11-05T00:00:00Z" {
		t.Errorf("lastPurchased = %q", h.LastPurchased)
	}
	if h.FirstPurchased != "2024-11-05T00:00:00Z" {
		t.Errorf("firstPurchased = %q", h.FirstPurchased)
	}

	// New fields win when present.
	doc = Document(map[string]any{
		"history": []any{map[string]any{
			"name":          "Bread",
			"lastAdded":     "2024-11-05T00:00:00Z",
			"lastPurchased": "2025-02-01T00:00:00Z",
		}},
	})
	if doc.History[0].LastPurchased != "2025-02-01T00:00:00Z" {
		t.Errorf("lastPurchased = %q, want new field to win", doc.History[0].LastPurchased)
	}
}

func TestPriceEntries(t *testing.T) {
	fixedNow(t)

	doc := Document(map[string]any{
		"history": []any{map[string]any{
			"name":      "Eggs",
			"frequency": 2,
			"prices": []any{
				map[string]any{"price": 3.5, "currency": "USD", "purchaseDate": "2025-01-01T00:00:00Z"},
				map[string]any{"price": 4, "store": "corner shop"},
			},
		}},
	})
	h := doc.History[0]
	if len(h.Prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(h.Prices))
	}
	if h.Prices[0].Price == nil || *h.Prices[0].Price != 3.5 {
		t.Errorf("price[0] = %v", h.Prices[0].Price)
	}
	if h.Prices[1].PurchaseDate == "" {
		t.Error("missing purchaseDate not defaulted")
	}
	if h.Frequency != 2 {
		t.Errorf("frequency = %d", h.Frequency)
	}
}

func TestIdempotence(t *testing.T) {
	fixedNow(t)

	inputs := []any{
		nil,
		map[string]any{},
		map[string]any{
			"items": []any{map[string]any{"id": "x", "name": "Milk", "quantity": 1.5}},
			"history": []any{map[string]any{
				"name":      "Milk",
				"frequency": 3,
				"lastAdded": map[string]any{"seconds": 1700000000},
				"prices":    []any{map[string]any{"price": 2, "purchaseDate": "2025-01-01"}},
				"tags":      []any{"staple"},
				"starred":   true,
			}},
			"members": []any{"a", "b"},
		},
	}
	for _, in := range inputs {
		once := Document(in)
		twice := Document(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("sanitize not idempotent:\n once: %+v\ntwice: %+v", once, twice)
		}
	}
}

func TestDriverShapedInput(t *testing.T) {
	fixedNow(t)

	// Mongo decodes into named map/slice aliases; the sanitizer must not
	// depend on the concrete types.
	type bsonM map[string]any
	type bsonA []any

	doc := Document(bsonM{
		"items":   bsonA{bsonM{"id": "a", "name": "Salt"}},
		"history": bsonA{bsonM{"name": "Salt", "frequency": int32(4)}},
	})
	if len(doc.Items) != 1 || doc.Items[0].Name != "Salt" {
		t.Fatalf("items = %+v", doc.Items)
	}
	if doc.History[0].Frequency != 4 {
		t.Errorf("frequency = %d, want 4", doc.History[0].Frequency)
	}
}
