package decision

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hamsterlabs/cryptohamster/internal/oracle"
	"github.com/hamsterlabs/cryptohamster/internal/wallet"
)

// ErrExhausted means the hamster is broke: no cash worth trading and
// nothing held to sell. Terminal business condition, not a crash.
var ErrExhausted = errors.New("wallet exhausted")

// BuySellOptions derives the option set for a BUY_SELL decision from the
// wallet. With nothing held the hamster can only buy; with cash under the
// floor it can only sell what it holds.
func BuySellOptions(snap wallet.Snapshot, floor decimal.Decimal) ([]string, error) {
	held := snap.Held()
	hasCash := snap.Cash().GreaterThanOrEqual(floor)

	switch {
	case len(held) == 0 && !hasCash:
		return nil, ErrExhausted
	case len(held) == 0:
		return []string{DirectionBuy}, nil
	case !hasCash:
		return []string{DirectionSell}, nil
	default:
		return []string{DirectionBuy, DirectionSell}, nil
	}
}

// CurrencyOptions derives the option set for a CURRENCY decision. Buying
// picks from the oracle's catalog; selling picks from what is held.
func CurrencyOptions(ctx context.Context, direction string, snap wallet.Snapshot, o oracle.PriceOracle) ([]string, error) {
	switch direction {
	case DirectionBuy:
		symbols, err := o.ListSymbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("list symbols: %w", err)
		}
		if len(symbols) == 0 {
			return nil, errors.New("oracle catalog is empty")
		}
		return symbols, nil
	case DirectionSell:
		held := snap.Held()
		if len(held) == 0 {
			return nil, errors.New("nothing held to sell")
		}
		return held, nil
	default:
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
}

// AmountOptions is the fixed percentage ladder for AMOUNT decisions:
// 10% to 100% in even steps.
func AmountOptions() []decimal.Decimal {
	options := make([]decimal.Decimal, 10)
	for i := range options {
		options[i] = decimal.New(int64(i+1), -1)
	}
	return options
}

// Resolve maps a turn count onto an option list with wraparound, giving
// every option the same chance no matter how far the hamster ran.
func Resolve[T any](options []T, turns uint32) T {
	return options[int(turns)%len(options)]
}
