package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/San4ouzs/Crypto-volume-spike-bot/internal/models"

	_ "github.com/lib/pq"
)

// PostgresStore keeps bot state in Postgres, for deployments where a
// local SQLite file does not survive the container.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects using a lib/pq connection string or URL.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.createTables(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS volume_samples (
			symbol TEXT NOT NULL,
			window_start BIGINT NOT NULL,
			volume DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, window_start)
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			symbol TEXT PRIMARY KEY,
			last_alert_ts BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS last_spikes (
			id BIGSERIAL PRIMARY KEY,
			ts BIGINT NOT NULL,
			symbol TEXT NOT NULL,
			pct DOUBLE PRECISION NOT NULL,
			zscore DOUBLE PRECISION NOT NULL,
			vol_now DOUBLE PRECISION NOT NULL,
			vol_mean DOUBLE PRECISION NOT NULL,
			vol_std DOUBLE PRECISION NOT NULL,
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

func (s *PostgresStore) SaveSample(sample models.VolumeSample) error {
	_, err := s.db.Exec(`
		INSERT INTO volume_samples (symbol, window_start, volume)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, window_start) DO NOTHING
	`, sample.Symbol, sample.WindowStart.Unix(), sample.Volume)
	return err
}

func (s *PostgresStore) DeleteSamplesBefore(symbol string, cutoff time.Time) error {
	_, err := s.db.Exec(`
		DELETE FROM volume_samples WHERE symbol = $1 AND window_start < $2
	`, symbol, cutoff.Unix())
	return err
}

func (s *PostgresStore) LoadSamples(since time.Time) (map[string][]models.VolumeSample, error) {
	rows, err := s.db.Query(`
		SELECT symbol, window_start, volume
		FROM volume_samples
		WHERE window_start >= $1
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

func (s *PostgresStore) SaveAlert(symbol string, ts time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO alerts (symbol, last_alert_ts) VALUES ($1, $2)
		ON CONFLICT (symbol) DO UPDATE SET last_alert_ts = EXCLUDED.last_alert_ts
	`, symbol, ts.Unix())
	return err
}

func (s *PostgresStore) LoadAlerts() (map[string]time.Time, error) {
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

func (s *PostgresStore) DeleteSamples(symbol string) error {
	_, err := s.db.Exec(`DELETE FROM volume_samples WHERE symbol = $1`, symbol)
	return err
}

func (s *PostgresStore) DeleteAlert(symbol string) error {
	_, err := s.db.Exec(`DELETE FROM alerts WHERE symbol = $1`, symbol)
	return err
}

func (s *PostgresStore) SaveSpike(spike models.Spike) error {
	_, err := s.db.Exec(`
		INSERT INTO last_spikes (ts, symbol, pct, zscore, vol_now, vol_mean, vol_std, exchanges)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, spike.Timestamp.Unix(), spike.Symbol, spike.Pct, spike.ZScore,
		spike.Observed, spike.Mean, spike.Std, strings.Join(spike.Exchanges, ","))
	return err
}

func (s *PostgresStore) RecentSpikes(limit int) ([]models.Spike, error) {
	rows, err := s.db.Query(`
		SELECT ts, symbol, pct, zscore, vol_now, vol_mean, vol_std, exchanges
		FROM last_spikes
		ORDER BY ts DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSpikes(rows)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
