package model

// Clone returns a deep copy of the document. The mutation pipeline hands
// snapshots to background persistence while the original keeps changing,
// so shared backing arrays are not allowed to escape.
func (d ListDocument) Clone() ListDocument {
	out := d
	out.Items = make([]Item, len(d.Items))
	for i, it := range d.Items {
		out.Items[i] = it.clone()
	}
	out.History = make([]HistoryItem, len(d.History))
	for i, h := range d.History {
		out.History[i] = h.clone()
	}
	if d.Members != nil {
		out.Members = append([]string(nil), d.Members...)
	}
	return out
}

func (it Item) clone() Item {
	it.Quantity = cloneFloat(it.Quantity)
	return it
}

func (h HistoryItem) clone() HistoryItem {
	h.AvgDaysBetween = cloneFloat(h.AvgDaysBetween)
	h.LastPrice = cloneFloat(h.LastPrice)
	h.AvgPrice = cloneFloat(h.AvgPrice)
	h.LowestPrice = cloneFloat(h.LowestPrice)
	h.HighestPrice = cloneFloat(h.HighestPrice)
	if h.Prices != nil {
		prices := make([]PriceEntry, len(h.Prices))
		for i, p := range h.Prices {
			p.Price = cloneFloat(p.Price)
			p.Quantity = cloneFloat(p.Quantity)
			prices[i] = p
		}
		h.Prices = prices
	}
	if h.Tags != nil {
		h.Tags = append([]string(nil), h.Tags...)
	}
	return h
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
