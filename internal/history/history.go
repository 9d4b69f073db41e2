// Package history folds purchase events into aggregate per-item
// statistics: frequency, date range, purchase cadence and price stats.
package history

import (
	"strings"
	"time"

	"github.com/ferndale/pantryd/internal/model"
)

// Accumulate folds a batch of purchase events into the given history and
// returns the updated slice. The whole batch folds against one in-memory
// read, so the caller pays a single document write for N events instead
// of N read-modify-write round trips.
//
// Matching is by item name, case-insensitive and trimmed.
func Accumulate(items []model.HistoryItem, events []model.PurchaseEvent, now time.Time) []model.HistoryItem {
	index := make(map[string]int, len(items))
	for i, h := range items {
		index[key(h.Name)] = i
	}

	for _, ev := range events {
		name := strings.TrimSpace(ev.Name)
		if name == "" {
			continue
		}

		if i, ok := index[key(name)]; ok {
			items[i] = record(items[i], ev, now)
			continue
		}

		fresh := model.HistoryItem{
			Name:           name,
			Category:       ev.Category,
			Frequency:      1,
			FirstPurchased: now.Format(time.RFC3339),
			LastPurchased:  now.Format(time.RFC3339),
		}
		if ev.Price != nil {
			fresh.Prices = []model.PriceEntry{priceEntry(ev, now)}
			fresh = recomputePriceStats(fresh)
		}
		items = append(items, fresh)
		index[key(name)] = len(items) - 1
	}
	return items
}

// record applies one event to an existing history item.
func record(h model.HistoryItem, ev model.PurchaseEvent, now time.Time) model.HistoryItem {
	h.Frequency++
	h.LastPurchased = now.Format(time.RFC3339)
	if h.FirstPurchased == "" {
		h.FirstPurchased = h.LastPurchased
	}
	if h.Category == "" {
		h.Category = ev.Category
	}
	h.AvgDaysBetween = avgDaysBetween(h.FirstPurchased, h.LastPurchased, h.Frequency)

	if ev.Price != nil {
		h.Prices = append(h.Prices, priceEntry(ev, now))
	}
	if len(h.Prices) > 0 {
		h = recomputePriceStats(h)
	}
	return h
}

// DeletePrice removes one price entry by index and recomputes the derived
// statistics, the only sanctioned way a price entry disappears.
func DeletePrice(h model.HistoryItem, index int) model.HistoryItem {
	if index < 0 || index >= len(h.Prices) {
		return h
	}
	h.Prices = append(h.Prices[:index:index], h.Prices[index+1:]...)
	if len(h.Prices) == 0 {
		h.LastPrice, h.AvgPrice, h.LowestPrice, h.HighestPrice = nil, nil, nil, nil
		return h
	}
	return recomputePriceStats(h)
}

// recomputePriceStats rederives every price statistic from the actual
// entries. This is also the strict repair point for documents whose
// frequency drifted away from their price-entry count: when price
// tracking is on, the stats always reflect the entries that exist.
func recomputePriceStats(h model.HistoryItem) model.HistoryItem {
	var sum, low, high, last float64
	n := 0
	for _, p := range h.Prices {
		if p.Price == nil {
			continue
		}
		v := *p.Price
		if n == 0 {
			low, high = v, v
		}
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
		sum += v
		last = v
		n++
	}
	if n == 0 {
		return h
	}
	h.LastPrice = model.Float(last)
	h.AvgPrice = model.Float(sum / float64(n))
	h.LowestPrice = model.Float(low)
	h.HighestPrice = model.Float(high)
	return h
}

func priceEntry(ev model.PurchaseEvent, now time.Time) model.PriceEntry {
	qty := ev.Quantity
	if qty == nil {
		qty = model.Float(1)
	}
	return model.PriceEntry{
		Price:        ev.Price,
		Currency:     ev.Currency,
		PurchaseDate: now.Format(time.RFC3339),
		Store:        ev.Store,
		Quantity:     qty,
	}
}

// avgDaysBetween spreads the first-to-last span over the purchase count.
func avgDaysBetween(first, last string, frequency int) *float64 {
	if frequency < 2 {
		return nil
	}
	firstT, err1 := time.Parse(time.RFC3339, first)
	lastT, err2 := time.Parse(time.RFC3339, last)
	if err1 != nil || err2 != nil || lastT.Before(firstT) {
		return nil
	}
	days := lastT.Sub(firstT).Hours() / 24
	return model.Float(days / float64(frequency-1))
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
