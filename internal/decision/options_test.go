package decision

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hamsterlabs/cryptohamster/internal/oracle"
	"github.com/hamsterlabs/cryptohamster/internal/wallet"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestResolveBuySell(t *testing.T) {
	both := []string{DirectionBuy, DirectionSell}

	tests := []struct {
		turns uint32
		want  string
	}{
		{66, DirectionBuy},
		{65, DirectionSell},
		{0, DirectionBuy},
		{1, DirectionSell},
	}
	for _, tt := range tests {
		if got := Resolve(both, tt.turns); got != tt.want {
			t.Errorf("Resolve(both, %d) = %s, want %s", tt.turns, got, tt.want)
		}
	}
}

func TestResolveCurrencyWraps(t *testing.T) {
	options := []string{"BTC", "ETH", "DOGE"}

	tests := []struct {
		turns uint32
		want  string
	}{
		{0, "BTC"},
		{2, "DOGE"},
		{3, "BTC"},
		{10, "ETH"},
	}
	for _, tt := range tests {
		if got := Resolve(options, tt.turns); got != tt.want {
			t.Errorf("Resolve(%d) = %s, want %s", tt.turns, got, tt.want)
		}
	}
}

func TestResolveAmountLadder(t *testing.T) {
	options := AmountOptions()
	if len(options) != 10 {
		t.Fatalf("ladder has %d steps, want 10", len(options))
	}

	tests := []struct {
		turns uint32
		want  string
	}{
		{2, "0.3"},
		{0, "0.1"},
		{10, "0.1"},
		{9, "1"},
	}
	for _, tt := range tests {
		if got := Resolve(options, tt.turns); !got.Equal(dec(tt.want)) {
			t.Errorf("Resolve(%d) = %s, want %s", tt.turns, got, tt.want)
		}
	}
}

func TestBuySellOptions(t *testing.T) {
	floor := dec("10")

	tests := []struct {
		name    string
		snap    wallet.Snapshot
		want    []string
		wantErr error
	}{
		{
			name: "cash only can buy",
			snap: wallet.Snapshot{wallet.Cash: dec("100")},
			want: []string{DirectionBuy},
		},
		{
			name: "broke with holdings can sell",
			snap: wallet.Snapshot{wallet.Cash: dec("5"), "BTC": dec("1")},
			want: []string{DirectionSell},
		},
		{
			name: "funded and invested can do both",
			snap: wallet.Snapshot{wallet.Cash: dec("100"), "BTC": dec("1")},
			want: []string{DirectionBuy, DirectionSell},
		},
		{
			name:    "exhausted",
			snap:    wallet.Snapshot{wallet.Cash: dec("5")},
			wantErr: ErrExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuySellOptions(tt.snap, floor)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuySellOptions: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("options = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurrencyOptions(t *testing.T) {
	ctx := context.Background()
	mock := &oracle.Mock{Prices: map[string]decimal.Decimal{
		"BTC": dec("25000"), "DOGE": dec("0.064"), "ETH": dec("1595"),
	}}
	snap := wallet.Snapshot{wallet.Cash: dec("100"), "ETH": dec("2"), "ADA": dec("30")}

	buying, err := CurrencyOptions(ctx, DirectionBuy, snap, mock)
	if err != nil {
		t.Fatalf("CurrencyOptions(BUY): %v", err)
	}
	if !reflect.DeepEqual(buying, []string{"BTC", "DOGE", "ETH"}) {
		t.Errorf("buy options = %v, want oracle catalog", buying)
	}

	selling, err := CurrencyOptions(ctx, DirectionSell, snap, mock)
	if err != nil {
		t.Fatalf("CurrencyOptions(SELL): %v", err)
	}
	if !reflect.DeepEqual(selling, []string{"ADA", "ETH"}) {
		t.Errorf("sell options = %v, want held symbols", selling)
	}

	if _, err := CurrencyOptions(ctx, "HOLD", snap, mock); err == nil {
		t.Error("expected error for unknown direction")
	}

	empty := wallet.Snapshot{wallet.Cash: dec("100")}
	if _, err := CurrencyOptions(ctx, DirectionSell, empty, mock); err == nil {
		t.Error("expected error when nothing is held")
	}
}
