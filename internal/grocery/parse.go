package grocery

import (
	"strconv"
	"strings"

	"github.com/ferndale/pantryd/internal/model"
)

// ParsedItem is one item extracted from free text, before it gets an ID.
type ParsedItem struct {
	Name         string   `json:"name"`
	Quantity     *float64 `json:"quantity,omitempty"`
	Unit         string   `json:"unit,omitempty"`
	OriginalText string   `json:"originalText,omitempty"`
}

// unit aliases normalized to a canonical spelling.
var units = map[string]string{
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"kg": "kg", "kilo": "kg", "kilos": "kg",
	"g": "g", "gram": "g", "grams": "g",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"l": "l", "liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"ml": "ml",
	"gallon": "gallon", "gallons": "gallon", "gal": "gallon",
	"quart": "quart", "quarts": "quart",
	"dozen": "dozen", "doz": "dozen",
	"pack": "pack", "packs": "pack",
	"bag": "bag", "bags": "bag",
	"box": "box", "boxes": "box",
	"can": "can", "cans": "can",
	"bottle": "bottle", "bottles": "bottle",
	"loaf": "loaf", "loaves": "loaf",
	"bunch": "bunch", "bunches": "bunch",
}

// ParseText splits free text ("2 lbs apples, milk and a dozen eggs")
// into parsed items. It never fails; unparseable fragments become items
// with the fragment as the name.
func ParseText(text string) []ParsedItem {
	var items []ParsedItem
	for _, fragment := range splitFragments(text) {
		if item, ok := parseFragment(fragment); ok {
			items = append(items, item)
		}
	}
	return items
}

// Item converts a parsed item into a canonical list item with the given
// ID, categorized by the local rules.
func (p ParsedItem) Item(id string) model.Item {
	return model.Item{
		ID:           id,
		Name:         p.Name,
		Category:     Categorize(p.Name),
		Quantity:     p.Quantity,
		Unit:         p.Unit,
		OriginalText: p.OriginalText,
	}
}

func splitFragments(text string) []string {
	text = strings.NewReplacer("\n", ",", ";", ",", " and ", ",").Replace(text)
	return strings.Split(text, ",")
}

func parseFragment(fragment string) (ParsedItem, bool) {
	original := strings.TrimSpace(fragment)
	if original == "" {
		return ParsedItem{}, false
	}

	words := strings.Fields(original)
	item := ParsedItem{OriginalText: original}

	// Leading quantity: "2", "1.5", "1/2", or the article "a"/"an".
	if len(words) > 1 {
		if qty, ok := parseQuantity(words[0]); ok {
			item.Quantity = qty
			words = words[1:]
		}
	}

	// A unit directly after the quantity, optionally joined by "of"
	// ("2 lbs of apples").
	if item.Quantity != nil && len(words) > 1 {
		if unit, ok := units[strings.ToLower(words[0])]; ok {
			item.Unit = unit
			words = words[1:]
			if len(words) > 1 && strings.EqualFold(words[0], "of") {
				words = words[1:]
			}
		}
	}

	item.Name = strings.Join(words, " ")
	if item.Name == "" {
		return ParsedItem{}, false
	}
	return item, true
}

func parseQuantity(word string) (*float64, bool) {
	lower := strings.ToLower(word)
	if lower == "a" || lower == "an" {
		return model.Float(1), true
	}
	if n, err := strconv.ParseFloat(word, 64); err == nil && n > 0 {
		return model.Float(n), true
	}
	if num, den, ok := strings.Cut(word, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 == nil && err2 == nil && d != 0 {
			return model.Float(n / d), true
		}
	}
	return nil, false
}
