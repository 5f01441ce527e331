package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/telcwrite/telcwrite/internal/document"
)

// MemoryStore is an in-memory Store used for unit tests and local
// development without a database. A single mutex serializes all writes, which
// is what makes concurrent field-level merges safe.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]*document.Document
	contents map[string]*document.Content
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]*document.Document),
		contents: make(map[string]*document.Content),
	}
}

func (m *MemoryStore) CreateDocument(_ context.Context, title string) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.Title == title {
			return nil, ErrDuplicateTitle
		}
	}
	d := &document.Document{
		ID:           newID(),
		Title:        title,
		CreationDate: creationDate(time.Now()),
	}
	m.docs[d.ID] = d
	cp := *d
	return &cp, nil
}

func (m *MemoryStore) ListDocuments(_ context.Context) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*document.Document, 0, len(m.docs))
	for _, d := range m.docs {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetDocument(_ context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	delete(m.contents, id)
	return nil
}

func (m *MemoryStore) GetContent(_ context.Context, documentID string) (*document.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contents[documentID]
	if !ok {
		return &document.Content{DocumentID: documentID}, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) PatchContent(_ context.Context, documentID string, patch document.ContentPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contents[documentID]
	if !ok {
		c = &document.Content{DocumentID: documentID}
		m.contents[documentID] = c
	}
	c.Apply(patch)
	return nil
}

func (m *MemoryStore) SetReview(_ context.Context, documentID string, rev document.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contents[documentID]
	if !ok {
		c = &document.Content{DocumentID: documentID}
		m.contents[documentID] = c
	}
	c.ApplyReview(rev)
	return nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }
