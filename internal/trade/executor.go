package trade

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hamsterlabs/cryptohamster/internal/wallet"
)

// Compute turns a resolved decision cycle into trade quantities.
// Buying spends a percentage of cash; selling liquidates a percentage of
// the held currency. Any other direction is a programming error.
func Compute(direction, currency string, pct decimal.Decimal, snap wallet.Snapshot, price decimal.Decimal) (cashAmount, ccyAmount decimal.Decimal, err error) {
	if !price.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("non-positive price %s for %s", price, currency)
	}

	switch direction {
	case "BUY":
		cashAmount = pct.Mul(snap.Cash())
		ccyAmount = cashAmount.Div(price)
	case "SELL":
		ccyAmount = pct.Mul(snap[currency])
		cashAmount = ccyAmount.Mul(price)
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("unknown trade direction %q", direction)
	}
	return cashAmount, ccyAmount, nil
}
