package market

import (
	"testing"
)

func TestNewFeedWarmsUpFullWindow(t *testing.T) {
	f := NewFeed([]string{"EUR/USD", "USD/JPY"}, 60, 1)
	for _, pair := range f.Pairs() {
		w := f.Window(pair)
		if len(w) != 60 {
			t.Fatalf("expected 60 prices for %s, got %d", pair, len(w))
		}
		for _, p := range w {
			if p <= 0 {
				t.Fatalf("expected positive prices, got %f", p)
			}
		}
	}
}

func TestStepKeepsWindowBounded(t *testing.T) {
	f := NewFeed([]string{"EUR/USD"}, 40, 7)
	before := f.Window("EUR/USD")
	f.Step()
	after := f.Window("EUR/USD")
	if len(after) != 40 {
		t.Fatalf("expected bounded window, got %d", len(after))
	}
	if after[len(after)-2] != before[len(before)-1] {
		t.Fatal("expected window to shift by one bar")
	}
}

func TestFeedIsSeeded(t *testing.T) {
	a := NewFeed([]string{"GBP/USD"}, 50, 42).Window("GBP/USD")
	b := NewFeed([]string{"GBP/USD"}, 50, 42).Window("GBP/USD")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical series for identical seeds at %d", i)
		}
	}
}

func TestWindowUnknownPair(t *testing.T) {
	f := NewFeed([]string{"EUR/USD"}, 40, 1)
	if f.Window("XAU/USD") != nil {
		t.Fatal("expected nil window for unknown pair")
	}
}

func TestWindowReturnsCopy(t *testing.T) {
	f := NewFeed([]string{"EUR/USD"}, 40, 1)
	w := f.Window("EUR/USD")
	w[0] = -1
	if f.Window("EUR/USD")[0] == -1 {
		t.Fatal("expected window to be a defensive copy")
	}
}
