package remote

import (
	"reflect"
	"testing"
)

func TestStripNilFlat(t *testing.T) {
	in := map[string]any{
		"name":  "Milk",
		"price": nil,
		"qty":   2,
	}
	got := StripNil(in).(map[string]any)
	want := map[string]any{"name": "Milk", "qty": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestStripNilNested(t *testing.T) {
	var nilPtr *float64
	in := map[string]any{
		"items": []any{
			map[string]any{"id": "a", "quantity": nil},
			nil,
			map[string]any{"id": "b", "price": nilPtr},
		},
		"history": map[string]any{
			"prices": []any{map[string]any{"price": 3.5, "store": nil}},
		},
	}
	got := StripNil(in).(map[string]any)

	items := got["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected nil slice element removed, got %d items", len(items))
	}
	first := items[0].(map[string]any)
	if _, ok := first["quantity"]; ok {
		t.Error("nested nil field survived")
	}
	second := items[1].(map[string]any)
	if _, ok := second["price"]; ok {
		t.Error("typed nil pointer survived")
	}
	prices := got["history"].(map[string]any)["prices"].([]any)
	if _, ok := prices[0].(map[string]any)["store"]; ok {
		t.Error("doubly nested nil survived")
	}
}

func TestStripNilLeavesValues(t *testing.T) {
	if got := StripNil("plain"); got != "plain" {
		t.Errorf("scalar changed: %v", got)
	}
	if got := StripNil(false); got != false {
		t.Errorf("bool changed: %v", got)
	}
}
