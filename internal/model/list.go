package model

// ListDocument is the unit of synchronization: one remote record holding a
// household's shopping items and purchase history. At most one document
// exists per list ID; the ID is the sole routing key.
type ListDocument struct {
	Items   []Item        `json:"items" bson:"items"`
	History []HistoryItem `json:"history" bson:"history"`
	OwnerID string        `json:"ownerId,omitempty" bson:"ownerId,omitempty"`
	Members []string      `json:"members,omitempty" bson:"members,omitempty"`
}

type Item struct {
	ID           string   `json:"id" bson:"id"`
	Name         string   `json:"name" bson:"name"`
	Completed    bool     `json:"completed" bson:"completed"`
	Category     string   `json:"category" bson:"category"`
	Quantity     *float64 `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Unit         string   `json:"unit,omitempty" bson:"unit,omitempty"`
	OriginalText string   `json:"originalText,omitempty" bson:"originalText,omitempty"`
}

// HistoryItem holds aggregate purchase knowledge for one item name. The
// logical key is the name, matched case-insensitively and trimmed.
type HistoryItem struct {
	Name           string       `json:"name" bson:"name"`
	Category       string       `json:"category" bson:"category"`
	Frequency      int          `json:"frequency" bson:"frequency"`
	LastPurchased  string       `json:"lastPurchased" bson:"lastPurchased"`
	FirstPurchased string       `json:"firstPurchased" bson:"firstPurchased"`
	AvgDaysBetween *float64     `json:"avgDaysBetween,omitempty" bson:"avgDaysBetween,omitempty"`
	Prices         []PriceEntry `json:"prices,omitempty" bson:"prices,omitempty"`
	LastPrice      *float64     `json:"lastPrice,omitempty" bson:"lastPrice,omitempty"`
	AvgPrice       *float64     `json:"avgPrice,omitempty" bson:"avgPrice,omitempty"`
	LowestPrice    *float64     `json:"lowestPrice,omitempty" bson:"lowestPrice,omitempty"`
	HighestPrice   *float64     `json:"highestPrice,omitempty" bson:"highestPrice,omitempty"`
	Starred        bool         `json:"starred,omitempty" bson:"starred,omitempty"`
	Tags           []string     `json:"tags,omitempty" bson:"tags,omitempty"`
}

// PriceEntry records a single observed purchase price. Entries are append
// only; user-initiated deletion recomputes the owner's derived stats.
type PriceEntry struct {
	Price        *float64 `json:"price,omitempty" bson:"price,omitempty"`
	Currency     string   `json:"currency,omitempty" bson:"currency,omitempty"`
	PurchaseDate string   `json:"purchaseDate" bson:"purchaseDate"`
	Store        string   `json:"store,omitempty" bson:"store,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty" bson:"quantity,omitempty"`
}

// PurchaseEvent is a single "this was bought" observation fed to the
// history accumulator.
type PurchaseEvent struct {
	Name     string
	Category string
	Price    *float64
	Currency string
	Store    string
	Quantity *float64
}

// Float returns a pointer to v, for the optional numeric fields above.
func Float(v float64) *float64 { return &v }
