package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/telcwrite/telcwrite/internal/document"
)

// fileData is the on-disk layout: two collections in one JSON file, documents
// keyed by id and contents keyed by documentId.
type fileData struct {
	Documents []*document.Document `json:"documents"`
	Contents  []*document.Content  `json:"contents"`
}

// FileStore is a Store backed by a single JSON file, in the spirit of an
// embedded document database. The whole file is held in memory and rewritten
// atomically (temp file + rename) on every mutation, so a write that returns
// without error is durable and a crash mid-write leaves the previous state
// intact. One mutex serializes all mutations.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data fileData
}

// OpenFileStore loads (or initializes) the JSON database at path.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read db file: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("parse db file %s: %w", path, err)
		}
	}
	return s, nil
}

// flush rewrites the database file. Must be called with the write lock held.
func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode db: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".telcwrite-db-*")
	if err != nil {
		return fmt.Errorf("write db: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write db: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync db: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close db: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace db: %w", err)
	}
	return nil
}

func (s *FileStore) findDoc(id string) int {
	for i, d := range s.data.Documents {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (s *FileStore) findContent(documentID string) int {
	for i, c := range s.data.Contents {
		if c.DocumentID == documentID {
			return i
		}
	}
	return -1
}

func (s *FileStore) CreateDocument(_ context.Context, title string) (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.data.Documents {
		if d.Title == title {
			return nil, ErrDuplicateTitle
		}
	}
	d := &document.Document{
		ID:           newID(),
		Title:        title,
		CreationDate: creationDate(time.Now()),
	}
	s.data.Documents = append(s.data.Documents, d)
	if err := s.flush(); err != nil {
		s.data.Documents = s.data.Documents[:len(s.data.Documents)-1]
		return nil, err
	}
	cp := *d
	return &cp, nil
}

func (s *FileStore) ListDocuments(context.Context) ([]*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*document.Document, 0, len(s.data.Documents))
	for _, d := range s.data.Documents {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (s *FileStore) GetDocument(_ context.Context, id string) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.findDoc(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	cp := *s.data.Documents[i]
	return &cp, nil
}

func (s *FileStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findDoc(id)
	if i < 0 {
		return ErrNotFound
	}
	prev := s.data
	docs := make([]*document.Document, 0, len(s.data.Documents)-1)
	docs = append(docs, s.data.Documents[:i]...)
	docs = append(docs, s.data.Documents[i+1:]...)
	s.data.Documents = docs
	if j := s.findContent(id); j >= 0 {
		contents := make([]*document.Content, 0, len(s.data.Contents)-1)
		contents = append(contents, s.data.Contents[:j]...)
		contents = append(contents, s.data.Contents[j+1:]...)
		s.data.Contents = contents
	}
	if err := s.flush(); err != nil {
		s.data = prev
		return err
	}
	return nil
}

func (s *FileStore) GetContent(_ context.Context, documentID string) (*document.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.findContent(documentID)
	if i < 0 {
		return &document.Content{DocumentID: documentID}, nil
	}
	cp := *s.data.Contents[i]
	return &cp, nil
}

func (s *FileStore) PatchContent(_ context.Context, documentID string, patch document.ContentPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateContent(documentID, func(c *document.Content) { c.Apply(patch) })
}

func (s *FileStore) SetReview(_ context.Context, documentID string, rev document.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutateContent(documentID, func(c *document.Content) { c.ApplyReview(rev) })
}

// mutateContent applies fn to a copy of the content record and only installs
// the copy once the flush succeeded, so a failed write leaves the in-memory
// state identical to the on-disk state. Must be called with the lock held.
func (s *FileStore) mutateContent(documentID string, fn func(*document.Content)) error {
	i := s.findContent(documentID)
	var next document.Content
	if i >= 0 {
		next = *s.data.Contents[i]
	} else {
		next = document.Content{DocumentID: documentID}
	}
	fn(&next)

	prevContents := s.data.Contents
	if i >= 0 {
		contents := make([]*document.Content, len(prevContents))
		copy(contents, prevContents)
		contents[i] = &next
		s.data.Contents = contents
	} else {
		s.data.Contents = append(prevContents, &next)
	}
	if err := s.flush(); err != nil {
		s.data.Contents = prevContents
		return err
	}
	return nil
}

func (s *FileStore) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// Path returns the database file location (used by the snapshot backup).
func (s *FileStore) Path() string { return s.path }
