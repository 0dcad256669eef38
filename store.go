package limeblog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("post not found")

// PostRepository is the persistence contract for posts: an ordered,
// append-only sequence. There is no update or delete.
type PostRepository interface {
	// All returns every stored post in insertion order.
	All() ([]Post, error)
	// Get returns the post with the given id, or ErrNotFound.
	Get(id string) (Post, error)
	// Add appends one post to the sequence.
	Add(post Post) error
	Close() error
}

// FileStore keeps posts as a single JSON array on disk. Every read loads the
// file fresh so reads always reflect the latest write; Add is a full
// read-modify-rewrite. Safe only under the single-process assumption.
type FileStore struct {
	path string
}

// NewFileStore ensures the data directory and backing file exist and returns
// a store over path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) read() ([]Post, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read post store: %w", err)
	}
	var posts []Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		// A corrupt backing file is recovered locally: reset to an empty
		// sequence instead of failing every read.
		log.Printf("post store %s is corrupt, resetting to empty: %v", s.path, err)
		if err := s.write(nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return posts, nil
}

func (s *FileStore) write(posts []Post) error {
	if posts == nil {
		posts = []Post{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode post store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write post store: %w", err)
	}
	return nil
}

// All returns every stored post in insertion order, read fresh from disk.
func (s *FileStore) All() ([]Post, error) {
	return s.read()
}

// Get returns the first post with a matching id.
func (s *FileStore) Get(id string) (Post, error) {
	posts, err := s.read()
	if err != nil {
		return Post{}, err
	}
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// Add appends post and rewrites the backing file.
func (s *FileStore) Add(post Post) error {
	posts, err := s.read()
	if err != nil {
		return err
	}
	return s.write(append(posts, post))
}

// Close is a no-op; the file store holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}
