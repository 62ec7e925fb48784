package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kartoza/material-forecast/internal/forecast"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no entry has the requested ID
var ErrNotFound = errors.New("forecast not found")

// Fixed-width so that stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Entry is one recorded forecast submission
type Entry struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"createdAt"`
	Request    forecast.Request `json:"request"`
	Result     *forecast.Result `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	DurationMS int64            `json:"durationMs"`
}

// Store persists forecast submissions in SQLite
type Store struct {
	db *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS forecasts (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	request TEXT NOT NULL,
	result TEXT,
	error TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS forecasts_created_at ON forecasts(created_at);`

// NewStore opens (or creates) forecasts.db in dataDir
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "forecasts.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	log.Printf("Forecast history: %s", dbPath)
	return &Store{db: db}, nil
}

// Record stores an entry, assigning its ID and timestamp when unset
func (s *Store) Record(e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	reqJSON, err := json.Marshal(e.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var resJSON sql.NullString
	if e.Result != nil {
		data, err := json.Marshal(e.Result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		resJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO forecasts (id, created_at, request, result, error, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.Format(timeLayout), string(reqJSON), resJSON, e.Error, e.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert forecast: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first
func (s *Store) List(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := s.db.Query(
		`SELECT id, created_at, request, result, error, duration_ms FROM forecasts
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get retrieves an entry by ID
func (s *Store) Get(id string) (*Entry, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, request, result, error, duration_ms FROM forecasts WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Delete removes an entry
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM forecasts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete forecast: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every entry
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM forecasts`); err != nil {
		return fmt.Errorf("failed to clear forecasts: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e         Entry
		createdAt string
		reqJSON   string
		resJSON   sql.NullString
	)
	if err := row.Scan(&e.ID, &createdAt, &reqJSON, &resJSON, &e.Error, &e.DurationMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan forecast: %w", err)
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	e.CreatedAt = t

	if err := json.Unmarshal([]byte(reqJSON), &e.Request); err != nil {
		return nil, fmt.Errorf("failed to parse stored request: %w", err)
	}
	if resJSON.Valid {
		var res forecast.Result
		if err := json.Unmarshal([]byte(resJSON.String), &res); err != nil {
			return nil, fmt.Errorf("failed to parse stored result: %w", err)
		}
		e.Result = &res
	}
	return &e, nil
}
