package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBinanceGetPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol = %s, want BTCUSDT", got)
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"25000.00000000"}`))
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, []string{"BTC"}, time.Second)
	price, err := b.GetPrice(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	want := decimal.NewFromInt(25000)
	if !price.Equal(want) {
		t.Errorf("price = %s, want %s", price, want)
	}
}

func TestBinanceGetPriceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, nil, time.Second)
	if _, err := b.GetPrice(context.Background(), "NOPE"); err == nil {
		t.Error("expected error for bad status")
	}
}

func TestBinanceListSymbolsCopies(t *testing.T) {
	b := NewBinance("http://example.invalid", []string{"BTC", "ETH"}, time.Second)

	symbols, err := b.ListSymbols(context.Background())
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	symbols[0] = "DOGE"

	again, _ := b.ListSymbols(context.Background())
	if again[0] != "BTC" {
		t.Error("ListSymbols must not expose internal state")
	}
}
