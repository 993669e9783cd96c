package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements Store on an SQLite database. Rows are keyed by the
// monitored location so several watchers can share one database file.
type SQLite struct {
	db  *sql.DB
	key string
}

// NewSQLite opens or creates an SQLite database at the given path and scopes
// the store to key.
func NewSQLite(dbPath, key string) (*SQLite, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("sqlite store key must be provided")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, key: strings.ToUpper(strings.TrimSpace(key))}, nil
}

func (s *SQLite) Load(ctx context.Context) (*model.Observation, error) {
	var (
		obs       model.Observation
		startDate sql.NullString
		checked   sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT location, slots, start_date, checked, last_checked
		 FROM observations WHERE key = ?`, s.key,
	).Scan(&obs.Location, &obs.Slots, &startDate, &checked, &obs.CheckedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load observation: %w", err)
	}

	if startDate.Valid {
		obs.StartDate = &startDate.String
	}
	if checked.Valid {
		obs.Checked = &checked.String
	}
	return &obs, nil
}

func (s *SQLite) Save(ctx context.Context, obs model.Observation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO observations (key, location, slots, start_date, checked, last_checked, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   location = excluded.location,
		   slots = excluded.slots,
		   start_date = excluded.start_date,
		   checked = excluded.checked,
		   last_checked = excluded.last_checked,
		   updated_at = excluded.updated_at`,
		s.key, obs.Location, obs.Slots,
		nullString(obs.StartDate), nullString(obs.Checked),
		obs.CheckedAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save observation: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
