package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Fixed-width so that lexicographic order on created_at matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "entries.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:   db,
		path: dbPath,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		content     TEXT NOT NULL,
		category    TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_user ON entries(user_id);
	CREATE INDEX IF NOT EXISTS idx_entries_user_category ON entries(user_id, category);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(user_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, userID, content, category string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	id := uuid.New().String()

	stmt := `
	INSERT INTO entries (id, user_id, content, category, created_at)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, stmt,
		id, userID, content, category, now.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("save entry: %w", err)
	}

	return &Entry{
		ID:        id,
		UserID:    userID,
		Content:   content,
		Category:  category,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) Query(ctx context.Context, userID, category string, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var query string
	var args []interface{}

	if category != "" {
		query = `
		SELECT id, user_id, content, category, created_at
		FROM entries
		WHERE user_id = ? AND category = ?
		ORDER BY created_at DESC
		`
		args = []interface{}{userID, category}
	} else {
		query = `
		SELECT id, user_id, content, category, created_at
		FROM entries
		WHERE user_id = ?
		ORDER BY created_at DESC
		`
		args = []interface{}{userID}
	}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *SQLiteStore) QueryPage(ctx context.Context, userID string, page, perPage int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if page < 0 {
		page = 0
	}
	if perPage <= 0 {
		perPage = 10
	}

	query := `
	SELECT id, user_id, content, category, created_at
	FROM entries
	WHERE user_id = ?
	ORDER BY created_at DESC
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, perPage, page*perPage)
	if err != nil {
		return nil, fmt.Errorf("query entries page: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (s *SQLiteStore) Count(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}

	return count, nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return affected, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var e Entry
	var createdAt string
	err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Category, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	e.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	return &e, nil
}
