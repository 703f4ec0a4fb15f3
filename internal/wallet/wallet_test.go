package wallet

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSnapshotHeld(t *testing.T) {
	snap := Snapshot{
		Cash:  dec("100"),
		"ETH": dec("2"),
		"BTC": dec("0.5"),
		"XRP": decimal.Zero,
	}

	held := snap.Held()
	if len(held) != 2 || held[0] != "BTC" || held[1] != "ETH" {
		t.Errorf("Held() = %v, want [BTC ETH]", held)
	}
}

func TestSnapshotExhausted(t *testing.T) {
	floor := dec("10")

	tests := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"cash only", Snapshot{Cash: dec("100")}, false},
		{"broke with holdings", Snapshot{Cash: dec("2"), "BTC": dec("1")}, false},
		{"broke and empty", Snapshot{Cash: dec("2")}, true},
		{"zero cash no holdings", Snapshot{Cash: decimal.Zero}, true},
		{"cash at floor", Snapshot{Cash: dec("10")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Exhausted(floor); got != tt.want {
				t.Errorf("Exhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyTradeBuy(t *testing.T) {
	snap := Snapshot{Cash: dec("1000")}

	muts, err := ApplyTrade(snap, "BUY", "BTC", dec("500"), dec("0.02"))
	if err != nil {
		t.Fatalf("ApplyTrade: %v", err)
	}

	want := map[string]string{Cash: "500", "BTC": "0.02"}
	for _, m := range muts {
		if m.Delete {
			t.Errorf("unexpected delete of %s", m.Symbol)
			continue
		}
		if w, ok := want[m.Symbol]; !ok || !m.Amount.Equal(dec(w)) {
			t.Errorf("mutation %s = %s, want %s", m.Symbol, m.Amount, w)
		}
		delete(want, m.Symbol)
	}
	if len(want) != 0 {
		t.Errorf("missing mutations: %v", want)
	}
}

func TestApplyTradeSellToZeroDeletesRow(t *testing.T) {
	snap := Snapshot{Cash: dec("0"), "BTC": dec("0.02")}

	muts, err := ApplyTrade(snap, "SELL", "BTC", dec("500"), dec("0.02"))
	if err != nil {
		t.Fatalf("ApplyTrade: %v", err)
	}

	var sawDelete, sawCash bool
	for _, m := range muts {
		switch m.Symbol {
		case "BTC":
			if !m.Delete {
				t.Errorf("BTC row should be deleted, got amount %s", m.Amount)
			}
			sawDelete = true
		case Cash:
			if !m.Amount.Equal(dec("500")) {
				t.Errorf("CASH = %s, want 500", m.Amount)
			}
			sawCash = true
		}
	}
	if !sawDelete || !sawCash {
		t.Errorf("incomplete mutations: %+v", muts)
	}
}

func TestApplyTradePartialSellKeepsRow(t *testing.T) {
	snap := Snapshot{Cash: dec("0"), "BTC": dec("0.04")}

	muts, err := ApplyTrade(snap, "SELL", "BTC", dec("500"), dec("0.02"))
	if err != nil {
		t.Fatalf("ApplyTrade: %v", err)
	}

	for _, m := range muts {
		if m.Symbol == "BTC" {
			if m.Delete || !m.Amount.Equal(dec("0.02")) {
				t.Errorf("BTC mutation = %+v, want amount 0.02", m)
			}
		}
	}
}

func TestApplyTradeUnknownDirection(t *testing.T) {
	if _, err := ApplyTrade(Snapshot{Cash: dec("100")}, "HOLD", "BTC", dec("1"), dec("1")); err == nil {
		t.Error("expected error for unknown direction")
	}
}
