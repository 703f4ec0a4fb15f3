package wallet

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Cash is the reserved symbol for uninvested funds. The row always exists,
// even at zero balance.
const Cash = "CASH"

// Snapshot is the balance sheet at one point in time: symbol -> amount.
type Snapshot map[string]decimal.Decimal

// Cash returns the CASH balance.
func (s Snapshot) Cash() decimal.Decimal {
	return s[Cash]
}

// Held returns the non-CASH symbols with a positive balance, sorted.
func (s Snapshot) Held() []string {
	var out []string
	for sym, amt := range s {
		if sym != Cash && amt.IsPositive() {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// Exhausted reports whether the hamster is broke: cash below the floor
// and nothing held to sell.
func (s Snapshot) Exhausted(floor decimal.Decimal) bool {
	return s.Cash().LessThan(floor) && len(s.Held()) == 0
}

// Mutation is one row change produced by applying a trade.
type Mutation struct {
	Symbol string
	Amount decimal.Decimal
	Delete bool
}

// ApplyTrade computes the row mutations for a trade against the snapshot.
// BUY moves cash into the currency, SELL moves the currency back into cash.
// A non-CASH row driven to zero or below is deleted rather than kept.
func ApplyTrade(s Snapshot, direction, currency string, cashAmount, ccyAmount decimal.Decimal) ([]Mutation, error) {
	switch direction {
	case "BUY":
		return []Mutation{
			{Symbol: Cash, Amount: s.Cash().Sub(cashAmount)},
			{Symbol: currency, Amount: s[currency].Add(ccyAmount)},
		}, nil
	case "SELL":
		remaining := s[currency].Sub(ccyAmount)
		muts := []Mutation{
			{Symbol: Cash, Amount: s.Cash().Add(cashAmount)},
		}
		if remaining.IsPositive() {
			muts = append(muts, Mutation{Symbol: currency, Amount: remaining})
		} else {
			muts = append(muts, Mutation{Symbol: currency, Delete: true})
		}
		return muts, nil
	default:
		return nil, fmt.Errorf("unknown trade direction %q", direction)
	}
}
