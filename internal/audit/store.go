// Package audit keeps an append-only log of served predictions.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Skufu/visitcast/internal/visits"
)

// Timestamps are stored as fixed-width UTC text so both drivers sort them alike.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
	CREATE TABLE IF NOT EXISTS prediction_log (
		id           TEXT PRIMARY KEY,
		patient      TEXT NOT NULL,
		visit_date   TEXT NOT NULL,
		year         INTEGER NOT NULL,
		month        INTEGER NOT NULL,
		day_of_week  INTEGER NOT NULL,
		week_of_year INTEGER NOT NULL,
		quarter      INTEGER NOT NULL,
		raw_score    DOUBLE PRECISION NOT NULL,
		visits       INTEGER NOT NULL,
		model        TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Entry is one logged prediction.
type Entry struct {
	ID         string    `db:"id" json:"id"`
	Patient    string    `db:"patient" json:"patient"`
	Date       string    `db:"visit_date" json:"date"`
	Year       int       `db:"year" json:"year"`
	Month      int       `db:"month" json:"month"`
	DayOfWeek  int       `db:"day_of_week" json:"dayOfWeek"`
	WeekOfYear int       `db:"week_of_year" json:"weekOfYear"`
	Quarter    int       `db:"quarter" json:"quarter"`
	RawScore   float64   `db:"raw_score" json:"rawScore"`
	Visits     int       `db:"visits" json:"visits"`
	Model      string    `db:"model" json:"model"`
	CreatedAt  time.Time `db:"-" json:"createdAt"`
	CreatedRaw string    `db:"created_at" json:"-"`
}

type Store struct {
	db *sqlx.DB
}

// Open connects with driver "postgres" or "sqlite".
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported prediction log driver %q", driver)
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one connection keeps :memory: databases shared and serialises writers
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db}, nil
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate prediction_log: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(ctx context.Context, p visits.Prediction) error {
	query := s.db.Rebind(`
		INSERT INTO prediction_log (
			id, patient, visit_date,
			year, month, day_of_week, week_of_year, quarter,
			raw_score, visits, model, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	f := p.Features
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Patient, p.Date,
		f.Year, f.Month, f.DayOfWeek, f.WeekOfYear, f.Quarter,
		p.RawScore, p.Visits, p.Model, p.GeneratedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", p.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := s.db.Rebind(`
		SELECT id, patient, visit_date,
			year, month, day_of_week, week_of_year, quarter,
			raw_score, visits, model, created_at
		FROM prediction_log
		ORDER BY created_at DESC, id
		LIMIT ?`)

	var entries []Entry
	if err := s.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("query prediction_log: %w", err)
	}
	for i := range entries {
		t, err := time.Parse(timeLayout, entries[i].CreatedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", entries[i].ID, err)
		}
		entries[i].CreatedAt = t
	}
	return entries, nil
}
