package oracle

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// PriceOracle supplies quotes and the catalog of tradable symbols.
type PriceOracle interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	ListSymbols(ctx context.Context) ([]string, error)
}

// Mock is a fixed-price oracle for tests and dry runs.
type Mock struct {
	Prices map[string]decimal.Decimal
	// Symbols overrides the catalog; defaults to the priced symbols.
	Symbols []string
}

func (m *Mock) GetPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	price, ok := m.Prices[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for %s", symbol)
	}
	return price, nil
}

func (m *Mock) ListSymbols(_ context.Context) ([]string, error) {
	if m.Symbols != nil {
		return m.Symbols, nil
	}
	symbols := make([]string, 0, len(m.Prices))
	for s := range m.Prices {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, nil
}
