// Package ledger persists market outcomes to SQLite: settlements, price
// observations and reputation snapshots. The market core runs fine without
// it; persistence is strictly write-behind and never feeds back into a tick.
package ledger

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Ritinpaul/symbios-core/internal/market"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

// Store wraps a SQLite connection for market history.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	store := &Store{conn: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settlements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		resource TEXT NOT NULL,
		buyer TEXT NOT NULL,
		seller TEXT NOT NULL,
		quantity REAL NOT NULL,
		match_price REAL NOT NULL,
		final_price REAL NOT NULL,
		buyer_payment REAL NOT NULL,
		seller_payment REAL NOT NULL,
		agreed INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_settlements_tick ON settlements(tick);

	CREATE TABLE IF NOT EXISTS price_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		resource TEXT NOT NULL,
		price REAL NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_price_history_resource ON price_history(resource, tick);

	CREATE TABLE IF NOT EXISTS reputation_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		agent_id TEXT NOT NULL,
		score REAL NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reputation_agent ON reputation_snapshots(agent_id, tick);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// RecordSettlement stores one settled (or failed) trade.
func (s *Store) RecordSettlement(settlement market.Settlement) error {
	_, err := s.conn.Exec(`
		INSERT INTO settlements
		(tick, resource, buyer, seller, quantity, match_price, final_price, buyer_payment, seller_payment, agreed, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.Tick,
		settlement.Resource.String(),
		settlement.Buyer,
		settlement.Seller,
		settlement.Quantity,
		settlement.MatchPrice,
		settlement.FinalPrice,
		settlement.BuyerPayment,
		settlement.SellerPayment,
		boolToInt(settlement.Agreed),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// RecordPrice stores one fair-value observation.
func (s *Store) RecordPrice(tick uint64, kind resource.Kind, price float64) error {
	_, err := s.conn.Exec(`
		INSERT INTO price_history (tick, resource, price, recorded_at)
		VALUES (?, ?, ?, ?)`,
		tick, kind.String(), price, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert price: %w", err)
	}
	return nil
}

// RecordScores stores the full reputation snapshot for a tick.
func (s *Store) RecordScores(tick uint64, scores map[string]float64) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	for agentID, score := range scores {
		if _, err := tx.Exec(`
			INSERT INTO reputation_snapshots (tick, agent_id, score, recorded_at)
			VALUES (?, ?, ?, ?)`,
			tick, agentID, score, time.Now().Unix(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert score: %w", err)
		}
	}
	return tx.Commit()
}

// SettlementRow is the persisted form of a settlement.
type SettlementRow struct {
	Tick         uint64  `db:"tick"`
	Resource     string  `db:"resource"`
	Buyer        string  `db:"buyer"`
	Seller       string  `db:"seller"`
	Quantity     float64 `db:"quantity"`
	MatchPrice   float64 `db:"match_price"`
	FinalPrice   float64 `db:"final_price"`
	BuyerPayment float64 `db:"buyer_payment"`
	SellerPayment float64 `db:"seller_payment"`
	Agreed       bool    `db:"agreed"`
}

// RecentSettlements returns up to n most recent settlements, newest first.
func (s *Store) RecentSettlements(n int) ([]SettlementRow, error) {
	var rows []SettlementRow
	err := s.conn.Select(&rows, `
		SELECT tick, resource, buyer, seller, quantity, match_price, final_price, buyer_payment, seller_payment, agreed
		FROM settlements ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("select settlements: %w", err)
	}
	return rows, nil
}

// PricePoint is one persisted fair-value observation.
type PricePoint struct {
	Tick  uint64  `db:"tick"`
	Price float64 `db:"price"`
}

// PriceSeries returns up to n most recent prices for a resource, oldest
// first.
func (s *Store) PriceSeries(kind resource.Kind, n int) ([]PricePoint, error) {
	var points []PricePoint
	err := s.conn.Select(&points, `
		SELECT tick, price FROM (
			SELECT tick, price, id FROM price_history
			WHERE resource = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, kind.String(), n)
	if err != nil {
		return nil, fmt.Errorf("select price series: %w", err)
	}
	return points, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
