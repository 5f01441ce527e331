package service

import (
	"context"
	"errors"
	"strings"

	"github.com/telcwrite/telcwrite/internal/document"
	"github.com/telcwrite/telcwrite/internal/document/repository"
)

var (
	// ErrEmptyTitle is returned before any store mutation when a document is
	// created without a title.
	ErrEmptyTitle = errors.New("title is required")
	// ErrNotReviewed is returned when a correction edit arrives for a content
	// record that has never been reviewed. The correction only exists as part
	// of a review, so accepting the edit would create partial review data.
	ErrNotReviewed = errors.New("content has no review to correct")
)

// Service is the business layer over a repository.Store: input validation,
// existence checks and the correction-edit guard. It adds no storage
// semantics of its own, so any Store implementation plugs in underneath.
type Service struct {
	store repository.Store
}

func New(store repository.Store) *Service {
	return &Service{store: store}
}

func (s *Service) CreateDocument(ctx context.Context, title string) (*document.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return s.store.CreateDocument(ctx, title)
}

func (s *Service) ListDocuments(ctx context.Context) ([]*document.Document, error) {
	return s.store.ListDocuments(ctx)
}

func (s *Service) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	return s.store.GetDocument(ctx, id)
}

func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	return s.store.DeleteDocument(ctx, id)
}

// GetContent returns the document's content record, or a zero-value record
// when nothing has been saved yet. The document itself must exist.
func (s *Service) GetContent(ctx context.Context, documentID string) (*document.Content, error) {
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.store.GetContent(ctx, documentID)
}

// PatchContent merges a field-level update into the document's content.
// Correction edits are only accepted once a review exists: the correction
// field only comes into being as part of a review, and writing one on its own
// would leave the record with partial review data.
func (s *Service) PatchContent(ctx context.Context, documentID string, patch document.ContentPatch) error {
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if patch.IsZero() {
		return nil
	}
	if patch.Correction != nil {
		cur, err := s.store.GetContent(ctx, documentID)
		if err != nil {
			return err
		}
		if !cur.HasReview() {
			return ErrNotReviewed
		}
	}
	return s.store.PatchContent(ctx, documentID, patch)
}

// Store exposes the underlying store to collaborators that need the raw
// contract (the review lifecycle persists through it directly).
func (s *Service) Store() repository.Store { return s.store }
