package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/stratlab/broker"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	updated DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trade_archive (
	trade_id TEXT PRIMARY KEY,
	key TEXT NOT NULL,
	record TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_archive_key ON trade_archive(key);
`

// snapshotLogCap bounds the trade log embedded in a snapshot row; the
// full log lives in trade_archive, keyed by trade ID so re-archiving the
// same trades is a no-op.
const snapshotLogCap = 50

// SQLiteStore keeps snapshots in a single database, one row per key,
// plus a full append-only trade archive for offline analysis.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(key string, st broker.State) error {
	// Archive every trade first. Primary-key upserts make at-least-once
	// delivery safe.
	for _, rec := range st.TradeLog {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("store: marshal trade %q: %w", rec.ID, err)
		}
		if _, err := s.db.Exec(`
			INSERT INTO trade_archive (trade_id, key, record)
			VALUES (?, ?, ?)
			ON CONFLICT(trade_id) DO NOTHING`,
			rec.ID, key, string(data),
		); err != nil {
			return fmt.Errorf("store: archive trade %q: %w", rec.ID, err)
		}
	}

	// Cap the embedded log so the snapshot row stays light.
	if len(st.TradeLog) > snapshotLogCap {
		st.TradeLog = st.TradeLog[len(st.TradeLog)-snapshotLogCap:]
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("store: marshal %q: %w", key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO snapshots (key, state, updated)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET state = excluded.state, updated = excluded.updated`,
		key, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store: save %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Load(key string) (broker.State, bool, error) {
	var data string
	err := s.db.QueryRow(`SELECT state FROM snapshots WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return broker.State{}, false, nil
	}
	if err != nil {
		return broker.State{}, false, fmt.Errorf("store: load %q: %w", key, err)
	}

	var st broker.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return broker.State{}, false, fmt.Errorf("store: parse %q: %w", key, err)
	}
	return st, true, nil
}

// ArchivedTrades returns every archived trade for a key, oldest first
// (trade IDs are ULIDs, so lexicographic order is time order).
func (s *SQLiteStore) ArchivedTrades(key string) ([]broker.TradeRecord, error) {
	rows, err := s.db.Query(`
		SELECT record FROM trade_archive
		WHERE key = ?
		ORDER BY trade_id ASC`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []broker.TradeRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec broker.TradeRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
