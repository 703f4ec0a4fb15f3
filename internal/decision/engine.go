package decision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hamsterlabs/cryptohamster/internal/config"
	"github.com/hamsterlabs/cryptohamster/internal/database"
	"github.com/hamsterlabs/cryptohamster/internal/oracle"
	"github.com/hamsterlabs/cryptohamster/internal/trade"
	"github.com/hamsterlabs/cryptohamster/internal/wallet"
	"github.com/hamsterlabs/cryptohamster/internal/wheel"
)

// TradeNotifier receives settled trades (Telegram). May be nil.
type TradeNotifier interface {
	NotifyTrade(direction, currency string, cashAmount, ccyAmount, price decimal.Decimal)
}

// Engine is the timeout-driven state machine that turns wheel readings
// into sessions, decisions and finally trades. All state except the
// small activity window is re-read from the database every tick, which
// makes the loop restartable after a crash.
type Engine struct {
	db       *database.Database
	oracle   oracle.PriceOracle
	notifier TradeNotifier
	cfg      *config.Config

	window wheel.ActivityWindow

	// now is swappable for tests
	now func() time.Time
}

// NewEngine creates the decision engine.
func NewEngine(cfg *config.Config, db *database.Database, o oracle.PriceOracle) *Engine {
	return &Engine{
		db:     db,
		oracle: o,
		cfg:    cfg,
		now:    time.Now,
	}
}

// SetNotifier sets the callback for settled trades.
func (e *Engine) SetNotifier(n TradeNotifier) {
	e.notifier = n
}

// Run drives the engine until the context is cancelled or the wallet is
// exhausted. Transient tick errors are logged and retried on the next
// tick against freshly read state.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	log.Info().
		Dur("tick", e.cfg.TickInterval).
		Dur("quiet", e.cfg.QuietThreshold).
		Dur("decision_timeout", e.cfg.DecisionTimeout).
		Dur("session_timeout", e.cfg.SessionTimeout).
		Msg("Decision engine started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Decision engine stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := e.Tick(ctx); err != nil {
				if errors.Is(err, ErrExhausted) {
					log.Warn().Msg("Hamster is broke, done investing")
					return err
				}
				log.Error().Err(err).Msg("Tick failed, retrying next tick")
			}
		}
	}
}

// Tick runs one pass of the state machine.
func (e *Engine) Tick(ctx context.Context) error {
	now := e.now()

	latest, err := e.db.LatestReading()
	if err != nil {
		return fmt.Errorf("latest reading: %w", err)
	}
	var latestID uint64
	if latest != nil {
		latestID = latest.ID
	}
	e.window.Observe(latestID)
	running := e.window.Running()

	snap, err := e.db.WalletSnapshot()
	if err != nil {
		return fmt.Errorf("wallet snapshot: %w", err)
	}
	if snap.Exhausted(e.cfg.CashFloor) {
		return ErrExhausted
	}

	sess, err := e.db.LatestSession()
	if err != nil {
		return fmt.Errorf("latest session: %w", err)
	}

	if sess == nil || sess.EndTime != nil {
		return e.maybeOpenSession(running, latestID, now)
	}

	if now.Sub(sess.StartTime) > e.cfg.SessionTimeout {
		return e.timeoutSession(sess, now)
	}

	dec, err := e.db.LatestDecision(sess.ID)
	if err != nil {
		return fmt.Errorf("latest decision: %w", err)
	}

	if dec == nil || dec.EndTime != nil {
		return e.maybeOpenDecision(sess, dec, running, latestID, now)
	}

	return e.stepOpenDecision(ctx, sess, dec, latest, snap, now)
}

// maybeOpenSession opens a session and its first BUY_SELL decision when
// the wheel starts with nothing open.
func (e *Engine) maybeOpenSession(running bool, latestID uint64, now time.Time) error {
	if !running {
		log.Debug().Msg("No session open and wheel not running")
		return nil
	}

	sess, err := e.db.CreateSession(latestID, now)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	log.Info().Uint("session", sess.ID).Uint64("reading", latestID).Msg("Session opened")

	dec, err := e.db.CreateDecision(sess.ID, 1, KindBuySell, latestID, now)
	if err != nil {
		return fmt.Errorf("create decision: %w", err)
	}
	log.Info().
		Uint("session", sess.ID).
		Uint("decision", dec.ID).
		Uint32("cycle", dec.DecisionCycle).
		Str("kind", dec.Kind).
		Msg("Decision opened")
	return nil
}

// timeoutSession abandons a session that has outlived its timeout,
// closing any open decision with it.
func (e *Engine) timeoutSession(sess *database.Session, now time.Time) error {
	dec, err := e.db.LatestDecision(sess.ID)
	if err != nil {
		return fmt.Errorf("latest decision: %w", err)
	}
	if dec != nil && dec.EndTime == nil {
		if err := e.db.CloseDecision(dec.ID, nil, nil, ResultTimeout, now); err != nil {
			return fmt.Errorf("close decision: %w", err)
		}
		log.Info().Uint("decision", dec.ID).Str("kind", dec.Kind).Msg("Decision timed out with session")
	}
	if err := e.db.CloseSession(sess.ID, ResultTimeout, now); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	log.Info().Uint("session", sess.ID).Msg("Session timed out")
	return nil
}

// maybeOpenDecision opens the next decision of the cycle when the wheel
// is running inside an open session.
func (e *Engine) maybeOpenDecision(sess *database.Session, latest *database.Decision, running bool, latestID uint64, now time.Time) error {
	if !running {
		log.Debug().Uint("session", sess.ID).Msg("Session open, wheel not running")
		return nil
	}

	kind := NextKind(latest)
	cycle := NextCycle(latest, kind)
	dec, err := e.db.CreateDecision(sess.ID, cycle, kind, latestID, now)
	if err != nil {
		return fmt.Errorf("create decision: %w", err)
	}
	log.Info().
		Uint("session", sess.ID).
		Uint("decision", dec.ID).
		Uint32("cycle", cycle).
		Str("kind", kind).
		Msg("Decision opened")
	return nil
}

// stepOpenDecision checks an open decision for timeout or quiet-period
// resolution. latest is never nil here: a decision only opens once
// readings exist.
func (e *Engine) stepOpenDecision(ctx context.Context, sess *database.Session, dec *database.Decision, latest *database.Reading, snap wallet.Snapshot, now time.Time) error {
	if latest == nil {
		return fmt.Errorf("open decision %d with no readings", dec.ID)
	}

	sinceLast := now.Sub(latest.Time)

	if sinceLast > e.cfg.DecisionTimeout {
		if err := e.db.CloseDecision(dec.ID, nil, nil, ResultTimeout, now); err != nil {
			return fmt.Errorf("close decision: %w", err)
		}
		log.Info().
			Uint("decision", dec.ID).
			Str("kind", dec.Kind).
			Dur("since_last_reading", sinceLast).
			Msg("Decision timed out")
		return nil
	}

	if sinceLast < e.cfg.QuietThreshold {
		// Wheel still turning, decision pending
		return nil
	}

	return e.resolveDecision(ctx, sess, dec, latest, snap, now)
}

// resolveDecision counts turns over the decision interval and closes the
// decision with its outcome. Closing an AMOUNT decision settles the
// whole cycle.
func (e *Engine) resolveDecision(ctx context.Context, sess *database.Session, dec *database.Decision, latest *database.Reading, snap wallet.Snapshot, now time.Time) error {
	readings, err := e.db.ReadingsInRange(dec.StartReadingID, latest.ID)
	if err != nil {
		return fmt.Errorf("readings in range: %w", err)
	}
	turns := wheel.CountTurns(readings, e.cfg.DeadTime)

	log.Debug().
		Uint("decision", dec.ID).
		Str("kind", dec.Kind).
		Uint64("start_reading", dec.StartReadingID).
		Uint64("end_reading", latest.ID).
		Uint32("turns", turns).
		Msg("Decision reached")

	switch dec.Kind {
	case KindBuySell:
		options, err := BuySellOptions(snap, e.cfg.CashFloor)
		if err != nil {
			return err
		}
		result := Resolve(options, turns)
		return e.closeResolved(dec, latest.ID, turns, result, now)

	case KindCurrency:
		direction, _, err := e.cycleResults(sess.ID, dec.DecisionCycle)
		if err != nil {
			return err
		}
		options, err := CurrencyOptions(ctx, direction, snap, e.oracle)
		if err != nil {
			return err
		}
		result := Resolve(options, turns)
		return e.closeResolved(dec, latest.ID, turns, result, now)

	case KindAmount:
		pct := Resolve(AmountOptions(), turns)
		return e.settleCycle(ctx, sess, dec, latest.ID, turns, pct, snap, now)

	default:
		return fmt.Errorf("unknown decision kind %q", dec.Kind)
	}
}

func (e *Engine) closeResolved(dec *database.Decision, endReadingID uint64, turns uint32, result string, now time.Time) error {
	if err := e.db.CloseDecision(dec.ID, &endReadingID, &turns, result, now); err != nil {
		return fmt.Errorf("close decision: %w", err)
	}
	log.Info().
		Uint("decision", dec.ID).
		Str("kind", dec.Kind).
		Uint32("turns", turns).
		Str("result", result).
		Msg("Decision closed")
	return nil
}

// cycleResults reads the resolved BUY_SELL and CURRENCY outcomes of a
// cycle from its closed decisions.
func (e *Engine) cycleResults(sessionID uint, cycle uint32) (direction, currency string, err error) {
	decs, err := e.db.CycleDecisions(sessionID, cycle)
	if err != nil {
		return "", "", fmt.Errorf("cycle decisions: %w", err)
	}
	for _, d := range decs {
		if d.Result == nil || *d.Result == ResultTimeout {
			continue
		}
		switch d.Kind {
		case KindBuySell:
			direction = *d.Result
		case KindCurrency:
			currency = *d.Result
		}
	}
	if direction == "" {
		return "", "", fmt.Errorf("cycle %d has no resolved %s decision", cycle, KindBuySell)
	}
	return direction, currency, nil
}

// settleCycle resolves the AMOUNT decision, computes the trade and
// applies decision close, trade insert and wallet mutation as one
// transaction. An oracle failure leaves the decision open so a later
// tick can retry, until the decision's own timeout abandons it.
func (e *Engine) settleCycle(ctx context.Context, sess *database.Session, dec *database.Decision, endReadingID uint64, turns uint32, pct decimal.Decimal, snap wallet.Snapshot, now time.Time) error {
	direction, currency, err := e.cycleResults(sess.ID, dec.DecisionCycle)
	if err != nil {
		return err
	}
	if currency == "" {
		return fmt.Errorf("cycle %d has no resolved %s decision", dec.DecisionCycle, KindCurrency)
	}

	quoteCtx, cancel := context.WithTimeout(ctx, e.cfg.OracleTimeout)
	defer cancel()
	price, err := e.oracle.GetPrice(quoteCtx, currency)
	if err != nil {
		// Decision stays open; retried next tick
		log.Warn().Err(err).Str("currency", currency).Msg("Price quote failed, deferring settlement")
		return nil
	}

	cashAmount, ccyAmount, err := trade.Compute(direction, currency, pct, snap, price)
	if err != nil {
		return err
	}

	tr := &database.Trade{
		Key:           uuid.NewString(),
		SessionID:     sess.ID,
		DecisionCycle: dec.DecisionCycle,
		Direction:     direction,
		Currency:      currency,
		CashAmount:    cashAmount,
		CcyAmount:     ccyAmount,
		Price:         price,
		Time:          now,
	}
	if err := e.db.SettleCycle(dec.ID, endReadingID, turns, pct.String(), tr); err != nil {
		return fmt.Errorf("settle cycle: %w", err)
	}

	log.Info().
		Uint("session", sess.ID).
		Uint32("cycle", dec.DecisionCycle).
		Str("direction", direction).
		Str("currency", currency).
		Str("cash", cashAmount.String()).
		Str("ccy", ccyAmount.String()).
		Str("price", price.String()).
		Msg("Trade settled")

	if e.notifier != nil {
		e.notifier.NotifyTrade(direction, currency, cashAmount, ccyAmount, price)
	}

	if e.cfg.CloseSessionOnTrade {
		if err := e.db.CloseSession(sess.ID, direction, now); err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		log.Info().Uint("session", sess.ID).Str("end_type", direction).Msg("Session closed on trade")
	}
	return nil
}
