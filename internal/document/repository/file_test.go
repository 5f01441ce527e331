package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telcwrite/telcwrite/internal/document"
)

func tempStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	return s, path
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	s, path := tempStore(t)
	ctx := context.Background()

	d, err := s.CreateDocument(ctx, "Dauerhaft")
	require.NoError(t, err)
	require.NoError(t, s.PatchContent(ctx, d.ID, document.ContentPatch{Task: strp("Schreiben Sie einen Brief")}))
	require.NoError(t, s.Close(ctx))

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	got, err := reopened.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "Dauerhaft", got.Title)
	c, err := reopened.GetContent(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "Schreiben Sie einen Brief", c.Task)
}

func TestFileStorePatchPreservesOtherFields(t *testing.T) {
	s, _ := tempStore(t)
	ctx := context.Background()
	d, err := s.CreateDocument(ctx, "Merge")
	require.NoError(t, err)

	require.NoError(t, s.PatchContent(ctx, d.ID, document.ContentPatch{Task: strp("x")}))
	require.NoError(t, s.PatchContent(ctx, d.ID, document.ContentPatch{SubmissionText: strp("y")}))
	require.NoError(t, s.SetReview(ctx, d.ID, document.Review{Score: 3, Feedback: "ok", Correction: "c"}))
	require.NoError(t, s.PatchContent(ctx, d.ID, document.ContentPatch{Correction: strp("c2")}))

	c, err := s.GetContent(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "x", c.Task)
	require.Equal(t, "y", c.SubmissionText)
	require.Equal(t, 3.0, *c.ReviewScore)
	require.Equal(t, "ok", c.ReviewFeedback)
	require.Equal(t, "c2", c.Correction)
}

func TestFileStoreDeleteCascades(t *testing.T) {
	s, path := tempStore(t)
	ctx := context.Background()
	d, err := s.CreateDocument(ctx, "Weg")
	require.NoError(t, err)
	require.NoError(t, s.PatchContent(ctx, d.ID, document.ContentPatch{SubmissionText: strp("text")}))

	require.NoError(t, s.DeleteDocument(ctx, d.ID))

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	_, err = reopened.GetDocument(ctx, d.ID)
	require.ErrorIs(t, err, ErrNotFound)
	c, err := reopened.GetContent(ctx, d.ID)
	require.NoError(t, err)
	require.Empty(t, c.SubmissionText)
}

func TestFileStoreDuplicateTitle(t *testing.T) {
	s, _ := tempStore(t)
	ctx := context.Background()
	_, err := s.CreateDocument(ctx, "Doppelt")
	require.NoError(t, err)
	_, err = s.CreateDocument(ctx, "Doppelt")
	require.ErrorIs(t, err, ErrDuplicateTitle)
}

func TestFileStoreCorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := OpenFileStore(path)
	require.Error(t, err)
}

func TestFileStoreEmptyFileOK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	list, err := s.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}
