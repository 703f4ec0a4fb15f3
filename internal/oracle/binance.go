package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Binance quotes spot prices from the Binance REST ticker. Symbols are
// plain currency codes (BTC, ETH, ...); quotes come from the USDT pair.
// The catalog is fixed at construction: the hamster only ever trades the
// configured symbols.
type Binance struct {
	baseURL string
	symbols []string
	client  *http.Client
}

// NewBinance creates a Binance-backed oracle over the given symbol catalog.
func NewBinance(baseURL string, symbols []string, timeout time.Duration) *Binance {
	return &Binance{
		baseURL: baseURL,
		symbols: symbols,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetPrice fetches the current USDT price for a symbol.
func (b *Binance) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%sUSDT", b.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("binance ticker %s: status %d", symbol, resp.StatusCode)
	}

	var result struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromString(result.Price)
}

// ListSymbols returns the configured tradable catalog.
func (b *Binance) ListSymbols(_ context.Context) ([]string, error) {
	out := make([]string, len(b.symbols))
	copy(out, b.symbols)
	return out, nil
}
