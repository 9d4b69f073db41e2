// Package sanitize converts arbitrary remote payloads into the canonical
// list document shape. Remote reads can return nested timestamp objects,
// legacy field names, or nothing at all; everything that enters client
// state passes through Document first.
package sanitize

import (
	"reflect"
	"time"

	"github.com/ferndale/pantryd/internal/model"
)

// Now is the clock used for defaulted timestamps. Overridable in tests.
var Now = time.Now

// Document produces a canonical ListDocument from any input shape. It is
// total (never panics, for any input) and idempotent: sanitizing already
// sanitized data is a no-op.
func Document(raw any) model.ListDocument {
	switch v := raw.(type) {
	case model.ListDocument:
		return normalize(v)
	case *model.ListDocument:
		if v == nil {
			return normalize(model.ListDocument{})
		}
		return normalize(*v)
	}

	doc := model.ListDocument{}
	m, ok := asMap(raw)
	if !ok {
		return normalize(doc)
	}

	if items, ok := asSlice(m["items"]); ok {
		for _, it := range items {
			if im, ok := asMap(it); ok {
				doc.Items = append(doc.Items, item(im))
			}
		}
	}
	if hist, ok := asSlice(m["history"]); ok {
		for _, h := range hist {
			if hm, ok := asMap(h); ok {
				doc.History = append(doc.History, historyItem(hm))
			}
		}
	}
	doc.OwnerID = str(m["ownerId"])
	if members, ok := asSlice(m["members"]); ok {
		for _, mem := range members {
			if s := str(mem); s != "" {
				doc.Members = append(doc.Members, s)
			}
		}
	}
	return normalize(doc)
}

// normalize applies field defaults to an already-typed document so that
// both the typed and the map path converge on the same canonical form.
func normalize(doc model.ListDocument) model.ListDocument {
	if doc.Items == nil {
		doc.Items = []model.Item{}
	}
	if doc.History == nil {
		doc.History = []model.HistoryItem{}
	}
	for i := range doc.History {
		h := &doc.History[i]
		if h.Frequency < 0 {
			h.Frequency = 0
		}
		h.LastPurchased = timestamp(h.LastPurchased)
		h.FirstPurchased = timestamp(h.FirstPurchased)
		for j := range h.Prices {
			h.Prices[j].PurchaseDate = timestamp(h.Prices[j].PurchaseDate)
		}
	}
	return doc
}

func item(m map[string]any) model.Item {
	return model.Item{
		ID:           str(m["id"]),
		Name:         str(m["name"]),
		Completed:    boolean(m["completed"]),
		Category:     str(m["category"]),
		Quantity:     number(m["quantity"]),
		Unit:         str(m["unit"]),
		OriginalText: str(m["originalText"]),
	}
}

func historyItem(m map[string]any) model.HistoryItem {
	h := model.HistoryItem{
		Name:           str(m["name"]),
		Category:       str(m["category"]),
		Frequency:      integer(m["frequency"]),
		LastPurchased:  timestamp(m["lastPurchased"]),
		FirstPurchased: timestamp(m["firstPurchased"]),
		AvgDaysBetween: number(m["avgDaysBetween"]),
		LastPrice:      number(m["lastPrice"]),
		AvgPrice:       number(m["avgPrice"]),
		LowestPrice:    number(m["lowestPrice"]),
		HighestPrice:   number(m["highestPrice"]),
		Starred:        boolean(m["starred"]),
	}

	// Legacy documents carried a single lastAdded timestamp.
	if legacy, ok := m["lastAdded"]; ok {
		if _, has := m["lastPurchased"]; !has {
			h.LastPurchased = timestamp(legacy)
		}
		if _, has := m["firstPurchased"]; !has {
			h.FirstPurchased = timestamp(legacy)
		}
	}

	if prices, ok := asSlice(m["prices"]); ok {
		for _, p := range prices {
			if pm, ok := asMap(p); ok {
				h.Prices = append(h.Prices, priceEntry(pm))
			}
		}
	}
	if tags, ok := asSlice(m["tags"]); ok {
		for _, t := range tags {
			if s := str(t); s != "" {
				h.Tags = append(h.Tags, s)
			}
		}
	}
	if h.Frequency < 0 {
		h.Frequency = 0
	}
	return h
}

func priceEntry(m map[string]any) model.PriceEntry {
	return model.PriceEntry{
		Price:        number(m["price"]),
		Currency:     str(m["currency"]),
		PurchaseDate: timestamp(m["purchaseDate"]),
		Store:        str(m["store"]),
		Quantity:     number(m["quantity"]),
	}
}

// timestamp coerces the encodings remote stores have historically used
// into an RFC 3339 string: plain strings, native times, values exposing a
// Time() conversion, and objects with an epoch "seconds" field. Anything
// unrecognized becomes now.
func timestamp(v any) string {
	switch t := v.(type) {
	case string:
		if t == "" {
			break
		}
		if _, err := time.Parse(time.RFC3339, t); err == nil {
			return t
		}
		if parsed, err := time.Parse("2006-01-02T15:04:05.999999999Z0700", t); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
		if parsed, err := time.Parse("2006-01-02", t); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case interface{ Time() time.Time }:
		return t.Time().UTC().Format(time.RFC3339)
	}

	if m, ok := asMap(v); ok {
		if secs := number(m["seconds"]); secs != nil {
			return time.Unix(int64(*secs), 0).UTC().Format(time.RFC3339)
		}
	}
	return Now().UTC().Format(time.RFC3339)
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func boolean(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

func number(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return model.Float(n)
	case float32:
		return model.Float(float64(n))
	case int:
		return model.Float(float64(n))
	case int32:
		return model.Float(float64(n))
	case int64:
		return model.Float(float64(n))
	}
	return nil
}

func integer(v any) int {
	if n := number(v); n != nil {
		return int(*n)
	}
	return 0
}

// asMap and asSlice go through reflection so that driver-specific aliases
// (bson.M, primitive.A) are handled without importing the driver here.

func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	for _, k := range rv.MapKeys() {
		m[k.String()] = rv.MapIndex(k).Interface()
	}
	return m, true
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	s := make([]any, rv.Len())
	for i := range s {
		s[i] = rv.Index(i).Interface()
	}
	return s, true
}
