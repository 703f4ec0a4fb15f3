package database

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/hamsterlabs/cryptohamster/internal/wallet"
)

type Database struct {
	db *gorm.DB
}

// Models

// Reading is one timestamped sample from the wheel sensor. Rows are
// appended by the sensor layer; the core only reads them.
type Reading struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	Time   time.Time
	Active bool
}

// Session is a bounded period of decision making. Open while EndTime is
// nil; at most one session is open at a time.
type Session struct {
	ID             uint `gorm:"primaryKey;autoIncrement"`
	StartTime      time.Time
	EndTime        *time.Time
	StartReadingID uint64
	EndType        *string // BUY, SELL or TIMEOUT
}

// Decision is one step of a decision cycle. Open while EndTime is nil;
// at most one decision is open at a time, always inside an open session.
type Decision struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	SessionID      uint   `gorm:"index"`
	DecisionCycle  uint32 `gorm:"index"`
	Kind           string // BUY_SELL, CURRENCY or AMOUNT
	StartTime      time.Time
	EndTime        *time.Time
	StartReadingID uint64
	EndReadingID   *uint64
	Turns          *uint32
	Result         *string
}

// WalletEntry is one balance row. The CASH row always exists.
type WalletEntry struct {
	Symbol string          `gorm:"primaryKey"`
	Amount decimal.Decimal `gorm:"type:decimal(20,8)"`
}

// Trade is the immutable record of one executed buy/sell.
type Trade struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	Key           string `gorm:"uniqueIndex"` // idempotency key
	SessionID     uint   `gorm:"index"`
	DecisionCycle uint32
	Direction     string // BUY or SELL
	Currency      string
	CashAmount    decimal.Decimal `gorm:"type:decimal(20,8)"`
	CcyAmount     decimal.Decimal `gorm:"type:decimal(20,8)"`
	Price         decimal.Decimal `gorm:"type:decimal(20,8)"`
	Time          time.Time
}

func New(dbPath string) (*Database, error) {
	var db *gorm.DB
	var err error

	// Check if this is a PostgreSQL connection string
	if strings.HasPrefix(dbPath, "postgres://") || strings.HasPrefix(dbPath, "postgresql://") {
		db, err = gorm.Open(postgres.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Database connected (PostgreSQL)")
	} else {
		// SQLite fallback
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", dbPath).Msg("Database initialized (SQLite)")
	}

	// Auto migrate all models
	if err := db.AutoMigrate(&Reading{}, &Session{}, &Decision{}, &WalletEntry{}, &Trade{}); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// Reading operations

// AppendReading inserts one sensor sample. Used by the simulated wheel
// and by tests; the real sensor layer writes the table directly.
func (d *Database) AppendReading(t time.Time, active bool) (*Reading, error) {
	r := &Reading{Time: t, Active: active}
	if err := d.db.Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// LatestReading returns the most recent reading, or nil if none exist.
func (d *Database) LatestReading() (*Reading, error) {
	var r Reading
	err := d.db.Order("id DESC").First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ReadingsInRange returns readings with id in [startID, endID], ordered by id.
func (d *Database) ReadingsInRange(startID, endID uint64) ([]Reading, error) {
	var readings []Reading
	err := d.db.Where("id >= ? AND id <= ?", startID, endID).Order("id ASC").Find(&readings).Error
	return readings, err
}

// Session operations

// LatestSession returns the most recent session, or nil if none exist.
func (d *Database) LatestSession() (*Session, error) {
	var s Session
	err := d.db.Order("id DESC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession opens a new session.
func (d *Database) CreateSession(startReadingID uint64, now time.Time) (*Session, error) {
	s := &Session{StartTime: now, StartReadingID: startReadingID}
	if err := d.db.Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// CloseSession marks a session closed. Guarded by id and the open check
// so a repeated close is a no-op.
func (d *Database) CloseSession(id uint, endType string, now time.Time) error {
	return d.db.Model(&Session{}).
		Where("id = ? AND end_time IS NULL", id).
		Updates(map[string]interface{}{"end_time": now, "end_type": endType}).Error
}

// Decision operations

// LatestDecision returns the most recent decision of a session, or nil.
func (d *Database) LatestDecision(sessionID uint) (*Decision, error) {
	var dec Decision
	err := d.db.Where("session_id = ?", sessionID).Order("id DESC").First(&dec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dec, nil
}

// CycleDecisions returns all decisions of one cycle, ordered by id.
func (d *Database) CycleDecisions(sessionID uint, cycle uint32) ([]Decision, error) {
	var decs []Decision
	err := d.db.Where("session_id = ? AND decision_cycle = ?", sessionID, cycle).
		Order("id ASC").Find(&decs).Error
	return decs, err
}

// CreateDecision opens a new decision.
func (d *Database) CreateDecision(sessionID uint, cycle uint32, kind string, startReadingID uint64, now time.Time) (*Decision, error) {
	dec := &Decision{
		SessionID:      sessionID,
		DecisionCycle:  cycle,
		Kind:           kind,
		StartTime:      now,
		StartReadingID: startReadingID,
	}
	if err := d.db.Create(dec).Error; err != nil {
		return nil, err
	}
	return dec, nil
}

// CloseDecision closes a decision with its turn count and result.
// endReadingID and turns are nil for a timeout close.
func (d *Database) CloseDecision(id uint, endReadingID *uint64, turns *uint32, result string, now time.Time) error {
	return d.db.Model(&Decision{}).
		Where("id = ? AND end_time IS NULL", id).
		Updates(map[string]interface{}{
			"end_time":       now,
			"end_reading_id": endReadingID,
			"turns":          turns,
			"result":         result,
		}).Error
}

// Wallet operations

// EnsureWallet seeds the CASH row on first run.
func (d *Database) EnsureWallet(initialCash decimal.Decimal) error {
	var entry WalletEntry
	err := d.db.Where("symbol = ?", wallet.Cash).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Info().Str("cash", initialCash.String()).Msg("Seeding wallet")
		return d.db.Create(&WalletEntry{Symbol: wallet.Cash, Amount: initialCash}).Error
	}
	return err
}

// WalletSnapshot returns the full balance sheet.
func (d *Database) WalletSnapshot() (wallet.Snapshot, error) {
	var entries []WalletEntry
	if err := d.db.Find(&entries).Error; err != nil {
		return nil, err
	}
	snap := make(wallet.Snapshot, len(entries))
	for _, e := range entries {
		snap[e.Symbol] = e.Amount
	}
	return snap, nil
}

// Trade operations

// RecentTrades returns the last trades, newest first.
func (d *Database) RecentTrades(limit int) ([]Trade, error) {
	var trades []Trade
	err := d.db.Order("id DESC").Limit(limit).Find(&trades).Error
	return trades, err
}

// SettleCycle closes the final decision of a cycle, records its trade and
// applies the wallet mutation in a single transaction. Either everything
// commits or the decision stays open for the next tick to retry.
func (d *Database) SettleCycle(decisionID uint, endReadingID uint64, turns uint32, result string, trade *Trade) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Decision{}).
			Where("id = ? AND end_time IS NULL", decisionID).
			Updates(map[string]interface{}{
				"end_time":       trade.Time,
				"end_reading_id": endReadingID,
				"turns":          turns,
				"result":         result,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already settled by an earlier tick
			return nil
		}

		if err := tx.Create(trade).Error; err != nil {
			return err
		}

		var entries []WalletEntry
		if err := tx.Find(&entries).Error; err != nil {
			return err
		}
		snap := make(wallet.Snapshot, len(entries))
		for _, e := range entries {
			snap[e.Symbol] = e.Amount
		}

		muts, err := wallet.ApplyTrade(snap, trade.Direction, trade.Currency, trade.CashAmount, trade.CcyAmount)
		if err != nil {
			return err
		}
		for _, m := range muts {
			if m.Delete {
				if err := tx.Delete(&WalletEntry{}, "symbol = ?", m.Symbol).Error; err != nil {
					return err
				}
				continue
			}
			entry := WalletEntry{Symbol: m.Symbol, Amount: m.Amount}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "symbol"}},
				DoUpdates: clause.AssignmentColumns([]string{"amount"}),
			}).Create(&entry).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// OpenSessionCount returns how many sessions are currently open.
// The engine maintains the invariant that this is 0 or 1.
func (d *Database) OpenSessionCount() (int64, error) {
	var n int64
	err := d.db.Model(&Session{}).Where("end_time IS NULL").Count(&n).Error
	return n, err
}

// OpenDecisionCount returns how many decisions are currently open.
func (d *Database) OpenDecisionCount() (int64, error) {
	var n int64
	err := d.db.Model(&Decision{}).Where("end_time IS NULL").Count(&n).Error
	return n, err
}
