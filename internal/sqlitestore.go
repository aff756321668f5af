package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore is an ObjectStore over a local SQLite database, used when no
// remote backend is configured and in tests. The hierarchy lives in a single
// nodes table keyed by synthetic UUIDs, with file payloads stored as JSON
// text.
type SQLiteStore struct {
	db *sql.DB
}

const nodesSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	parent_id TEXT NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	payload TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, name);`

// OpenSQLiteStore opens (and if needed creates) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec(nodesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStoreFromDB wraps an already-open database, ensuring the schema
// exists. Used by tests with in-memory databases.
func NewSQLiteStoreFromDB(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(nodesSchema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FindChild implements ObjectStore.
func (s *SQLiteStore) FindChild(ctx context.Context, parentID, name string, kind NodeKind) (string, error) {
	query := "SELECT id FROM nodes WHERE parent_id = ? AND name = ?"
	args := []any{parentID, name}
	if kind != KindAny {
		query += " AND kind = ?"
		args = append(args, string(kind))
	}

	var id string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	return id, nil
}

// CreateFolder implements ObjectStore.
func (s *SQLiteStore) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	return s.insert(ctx, parentID, name, KindFolder, nil)
}

// CreateFile implements ObjectStore.
func (s *SQLiteStore) CreateFile(ctx context.Context, parentID, name string, payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return s.insert(ctx, parentID, name, KindFile, data)
}

func (s *SQLiteStore) insert(ctx context.Context, parentID, name string, kind NodeKind, payload []byte) (string, error) {
	id := uuid.New().String()
	var payloadVal any
	if payload != nil {
		payloadVal = string(payload)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO nodes (id, parent_id, name, kind, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, parentID, name, string(kind), payloadVal, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert failed: %w", err)
	}
	return id, nil
}

// ListChildren implements ObjectStore.
func (s *SQLiteStore) ListChildren(ctx context.Context, parentID string, direction SortDirection) ([]Entry, error) {
	order := "ASC"
	if direction == SortDescending {
		order = "DESC"
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, kind, created_at FROM nodes WHERE parent_id = ? ORDER BY name "+order,
		parentID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.ID, &e.Name, &kind, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		e.Kind = NodeKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

// ReadFile implements ObjectStore.
func (s *SQLiteStore) ReadFile(ctx context.Context, id string, out any) error {
	var payload sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM nodes WHERE id = ? AND kind = ?", id, string(KindFile)).Scan(&payload)
	if err == sql.ErrNoRows {
		return fmt.Errorf("no such file: %s", id)
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if !payload.Valid {
		return fmt.Errorf("file %s has no payload", id)
	}
	if err := json.Unmarshal([]byte(payload.String), out); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	return nil
}
