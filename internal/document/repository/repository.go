package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/telcwrite/telcwrite/internal/document"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrDuplicateTitle = errors.New("document with this title already exists")
)

// Store is the persistence contract for documents and their content records.
// Every mutation is durable before the call returns, and merges for the same
// document never interleave (implementations serialize writes at least per
// document).
type Store interface {
	CreateDocument(ctx context.Context, title string) (*document.Document, error)
	ListDocuments(ctx context.Context) ([]*document.Document, error)
	GetDocument(ctx context.Context, id string) (*document.Document, error)
	// DeleteDocument removes the document and its content in one mutation.
	DeleteDocument(ctx context.Context, id string) error

	// GetContent returns the content record for the document, or a zero-value
	// record when none has been written yet. It does not fail for documents
	// without content.
	GetContent(ctx context.Context, documentID string) (*document.Content, error)
	// PatchContent merges the set patch fields into the existing record,
	// creating it if absent. Unset fields are preserved.
	PatchContent(ctx context.Context, documentID string, patch document.ContentPatch) error
	// SetReview writes score, feedback and correction in a single mutation so
	// partial review data can never be observed or persisted.
	SetReview(ctx context.Context, documentID string, rev document.Review) error

	// Close flushes and releases the backing resource.
	Close(ctx context.Context) error
}

// newID builds an opaque document id from the current time plus random bytes,
// matching the id shape of existing databases.
func newID() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + hex.EncodeToString(b[:])
}

// creationDate formats the document creation date as YYYY-MM-DD.
func creationDate(t time.Time) string {
	return t.Format("2006-01-02")
}
