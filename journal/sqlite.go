package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	time DATETIME NOT NULL,
	action TEXT NOT NULL,
	instrument TEXT NOT NULL,
	price REAL NOT NULL,
	quantity REAL NOT NULL,
	fee REAL NOT NULL,
	balance REAL NOT NULL,
	realized_pl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	strategy TEXT NOT NULL,
	time DATETIME NOT NULL,
	equity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_strategy ON fills(strategy);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(rec Fill) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(id, strategy, time, action, instrument, price, quantity, fee, balance, realized_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Strategy, rec.Time, rec.Action, rec.Instrument,
		rec.Price, rec.Quantity, rec.Fee, rec.Balance, rec.RealizedPL,
	)
	return err
}

func (j *SQLite) RecordEquity(rec EquityMark) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (strategy, time, equity)
		VALUES (?, ?, ?)`,
		rec.Strategy, rec.Time, rec.Equity,
	)
	return err
}

// ListFills returns a strategy's fills in [start, end), time ascending.
func (j *SQLite) ListFills(strategy string, start, end time.Time) ([]Fill, error) {
	rows, err := j.db.Query(`
		SELECT id, strategy, time, action, instrument, price, quantity, fee, balance, realized_pl
		FROM fills
		WHERE strategy = ? AND time >= ? AND time < ?
		ORDER BY time ASC`, strategy, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fill
	for rows.Next() {
		var rec Fill
		if err := rows.Scan(
			&rec.ID,
			&rec.Strategy,
			&rec.Time,
			&rec.Action,
			&rec.Instrument,
			&rec.Price,
			&rec.Quantity,
			&rec.Fee,
			&rec.Balance,
			&rec.RealizedPL,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// EquityCurve returns a strategy's recorded equity marks, time ascending.
func (j *SQLite) EquityCurve(strategy string) ([]EquityMark, error) {
	rows, err := j.db.Query(`
		SELECT strategy, time, equity
		FROM equity
		WHERE strategy = ?
		ORDER BY time ASC`, strategy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityMark
	for rows.Next() {
		var rec EquityMark
		if err := rows.Scan(&rec.Strategy, &rec.Time, &rec.Equity); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// WinLoss counts a strategy's winning and losing sells.
func (j *SQLite) WinLoss(strategy string) (wins, losses int, err error) {
	row := j.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN realized_pl > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN realized_pl < 0 THEN 1 ELSE 0 END), 0)
		FROM fills
		WHERE strategy = ? AND action = 'SELL'`, strategy)
	if err := row.Scan(&wins, &losses); err != nil {
		return 0, 0, fmt.Errorf("journal: win/loss for %q: %w", strategy, err)
	}
	return wins, losses, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
