package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/croftbw/watchmux/internal/model"

	_ "modernc.org/sqlite"
)

const createExpiriesTable = `
CREATE TABLE IF NOT EXISTS expiries (
    id             TEXT PRIMARY KEY,
    node_id        INTEGER NOT NULL,
    detected_at_ms INTEGER NOT NULL,
    created_at     DATETIME NOT NULL
)`

// ErrNotFound is returned when an expiry event is not found.
var ErrNotFound = errors.New("expiry event not found")

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createExpiriesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create expiries table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordExpiry inserts an expiry event.
func (s *SQLiteStore) RecordExpiry(ctx context.Context, e *model.ExpiryEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expiries (id, node_id, detected_at_ms, created_at)
		VALUES (?, ?, ?, ?)`,
		e.ID, e.NodeID, e.DetectedAtMS, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expiry: %w", err)
	}
	return nil
}

// GetExpiry retrieves an expiry event by ID.
func (s *SQLiteStore) GetExpiry(ctx context.Context, id string) (*model.ExpiryEvent, error) {
	e := &model.ExpiryEvent{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, node_id, detected_at_ms, created_at
		FROM expiries WHERE id = ?`, id,
	).Scan(&e.ID, &e.NodeID, &e.DetectedAtMS, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expiry: %w", err)
	}
	return e, nil
}

// ListExpiries returns a paginated list of expiry events ordered newest
// first (ULIDs sort by creation time), along with the total count.
func (s *SQLiteStore) ListExpiries(ctx context.Context, limit, offset int) ([]*model.ExpiryEvent, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM expiries").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expiries: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, node_id, detected_at_ms, created_at
		FROM expiries ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list expiries: %w", err)
	}
	defer rows.Close()

	var events []*model.ExpiryEvent
	for rows.Next() {
		e := &model.ExpiryEvent{}
		if err := rows.Scan(&e.ID, &e.NodeID, &e.DetectedAtMS, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan expiry: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate expiries: %w", err)
	}

	return events, total, nil
}
