package limeblog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// SQLiteStore is an alternate PostRepository over SQLite. It keeps the same
// append-only contract as the file store so the ingestion and listing logic
// run against it unchanged.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path, ensures the data
// directory exists, and creates the posts table.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL plus a busy timeout so a writer waits instead of returning
	// SQLITE_BUSY; synchronous=NORMAL is safe with WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    content TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    thumbnail_url TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
`)
	return err
}

// All returns every stored post in insertion order.
func (s *SQLiteStore) All() ([]Post, error) {
	rows, err := s.db.Query(`SELECT id, category, title, date, excerpt, content, image_url, thumbnail_url, created_at FROM posts ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Category, &p.Title, &p.Date, &p.Excerpt, &p.Content, &p.ImageURL, &p.ThumbnailURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Get returns a single post by id, or ErrNotFound.
func (s *SQLiteStore) Get(id string) (Post, error) {
	var p Post
	err := s.db.QueryRow(`SELECT id, category, title, date, excerpt, content, image_url, thumbnail_url, created_at FROM posts WHERE id = ?`, id).
		Scan(&p.ID, &p.Category, &p.Title, &p.Date, &p.Excerpt, &p.Content, &p.ImageURL, &p.ThumbnailURL, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

// Add appends one post.
func (s *SQLiteStore) Add(p Post) error {
	_, err := s.db.Exec(`INSERT INTO posts (id, category, title, date, excerpt, content, image_url, thumbnail_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Category, p.Title, p.Date, p.Excerpt, p.Content, p.ImageURL, p.ThumbnailURL, p.CreatedAt)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
