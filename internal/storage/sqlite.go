package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists bot state in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the state database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	// Single writer; WAL keeps the /status reads from blocking the cycle.
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS volume_samples (
			symbol TEXT NOT NULL,
			window_start INTEGER NOT NULL,
			volume REAL NOT NULL,
			PRIMARY KEY (symbol, window_start)
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			symbol TEXT PRIMARY KEY,
			last_alert_ts INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS last_spikes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			pct REAL NOT NULL,
			zscore REAL NOT NULL,
			vol_now REAL NOT NULL,
			vol_mean REAL NOT NULL,
			vol_std REAL NOT NULL,
			exchanges TEXT NOT NULL
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

// SaveSample stores one aggregated window volume. Samples are immutable:
// re-recording the same (symbol, window) keeps the first value.
func (s *SQLiteStore) SaveSample(sample models.VolumeSample) error {
	_, err := s.db.Exec(`
		INSERT INTO volume_samples (symbol, window_start, volume)
		VALUES (?, ?, ?)
		ON CONFLICT (symbol, window_start) DO NOTHING
	`, sample.Symbol, sample.WindowStart.Unix(), sample.Volume)
	return err
}

// DeleteSamplesBefore prunes samples that fell out of the lookback horizon.
func (s *SQLiteStore) DeleteSamplesBefore(symbol string, cutoff time.Time) error {
	_, err := s.db.Exec(`
		DELETE FROM volume_samples WHERE symbol = ? AND window_start < ?
	`, symbol, cutoff.Unix())
	return err
}

// LoadSamples returns all samples at or after since, grouped by symbol and
// ordered by window start.
func (s *SQLiteStore) LoadSamples(since time.Time) (map[string][]models.VolumeSample, error) {
	rows, err := s.db.Query(`
		SELECT symbol, window_start, volume
		FROM volume_samples
		WHERE window_start >= ?
		ORDER BY symbol, window_start
	`, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]models.VolumeSample)
	for rows.Next() {
		var symbol string
		var ts int64
		var volume float64
		if err := rows.Scan(&symbol, &ts, &volume); err != nil {
			return nil, err
		}
		out[symbol] = append(out[symbol], models.VolumeSample{
			Symbol:      symbol,
			WindowStart: time.Unix(ts, 0).UTC(),
			Volume:      volume,
		})
	}
	return out, rows.Err()
}

// SaveAlert upserts the last alert timestamp for a symbol.
func (s *SQLiteStore) SaveAlert(symbol string, ts time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO alerts (symbol, last_alert_ts) VALUES (?, ?)
		ON CONFLICT (symbol) DO UPDATE SET last_alert_ts = excluded.last_alert_ts
	`, symbol, ts.Unix())
	return err
}

// LoadAlerts returns the cooldown map persisted from previous runs.
func (s *SQLiteStore) LoadAlerts() (map[string]time.Time, error) {
	rows, err := s.db.Query(`SELECT symbol, last_alert_ts FROM alerts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var symbol string
		var ts int64
		if err := rows.Scan(&symbol, &ts); err != nil {
			return nil, err
		}
		out[symbol] = time.Unix(ts, 0).UTC()
	}
	return out, rows.Err()
}

// DeleteSamples drops all baseline samples for a symbol that left the
// monitored universe.
func (s *SQLiteStore) DeleteSamples(symbol string) error {
	_, err := s.db.Exec(`DELETE FROM volume_samples WHERE symbol = ?`, symbol)
	return err
}

// DeleteAlert drops cooldown state for a symbol that left the
// monitored universe.
func (s *SQLiteStore) DeleteAlert(symbol string) error {
	_, err := s.db.Exec(`DELETE FROM alerts WHERE symbol = ?`, symbol)
	return err
}

// SaveSpike appends a delivered alert to the history.
func (s *SQLiteStore) SaveSpike(spike models.Spike) error {
	_, err := s.db.Exec(`
		INSERT INTO last_spikes (ts, symbol, pct, zscore, vol_now, vol_mean, vol_std, exchanges)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, spike.Timestamp.Unix(), spike.Symbol, spike.Pct, spike.ZScore,
		spike.Observed, spike.Mean, spike.Std, strings.Join(spike.Exchanges, ","))
	return err
}

// RecentSpikes returns the most recent delivered alerts, newest first.
func (s *SQLiteStore) RecentSpikes(limit int) ([]models.Spike, error) {
	rows, err := s.db.Query(`
		SELECT ts, symbol, pct, zscore, vol_now, vol_mean, vol_std, exchanges
		FROM last_spikes
		ORDER BY ts DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSpikes(rows)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSpikes(rows *sql.Rows) ([]models.Spike, error) {
	var out []models.Spike
	for rows.Next() {
		var ts int64
		var exchanges string
		var sp models.Spike
		if err := rows.Scan(&ts, &sp.Symbol, &sp.Pct, &sp.ZScore,
			&sp.Observed, &sp.Mean, &sp.Std, &exchanges); err != nil {
			return nil, err
		}
		sp.Timestamp = time.Unix(ts, 0).UTC()
		if exchanges != "" {
			sp.Exchanges = strings.Split(exchanges, ",")
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}
