package decision

import "github.com/hamsterlabs/cryptohamster/internal/database"

// Decision kinds, in cycle order.
const (
	KindBuySell  = "BUY_SELL"
	KindCurrency = "CURRENCY"
	KindAmount   = "AMOUNT"
)

// Trade directions, also the results of a BUY_SELL decision.
const (
	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

// ResultTimeout marks a decision (or session) abandoned on timeout.
const ResultTimeout = "TIMEOUT"

// NextKind returns the kind of the decision to open after the given one.
// Kinds advance cyclically; a timed-out decision abandons its cycle and
// forces a restart from BUY_SELL.
func NextKind(latest *database.Decision) string {
	if latest == nil {
		return KindBuySell
	}
	if latest.Result != nil && *latest.Result == ResultTimeout {
		return KindBuySell
	}
	switch latest.Kind {
	case KindBuySell:
		return KindCurrency
	case KindCurrency:
		return KindAmount
	default:
		return KindBuySell
	}
}

// NextCycle returns the cycle id for a new decision of the given kind.
// The id increments exactly when a fresh BUY_SELL opens and is carried
// unchanged through the rest of the cycle.
func NextCycle(latest *database.Decision, kind string) uint32 {
	if latest == nil {
		return 1
	}
	if kind == KindBuySell {
		return latest.DecisionCycle + 1
	}
	return latest.DecisionCycle
}
