package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telcwrite/telcwrite/internal/document"
	"github.com/telcwrite/telcwrite/internal/document/repository"
)

func strp(s string) *string { return &s }

func TestCreateDocumentValidation(t *testing.T) {
	svc := New(repository.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.CreateDocument(ctx, "")
	require.ErrorIs(t, err, ErrEmptyTitle)
	_, err = svc.CreateDocument(ctx, "   ")
	require.ErrorIs(t, err, ErrEmptyTitle)

	d, err := svc.CreateDocument(ctx, "  Mit Rand  ")
	require.NoError(t, err)
	require.Equal(t, "Mit Rand", d.Title)
}

func TestGetContentRequiresDocument(t *testing.T) {
	svc := New(repository.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.GetContent(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	d, err := svc.CreateDocument(ctx, "Vorhanden")
	require.NoError(t, err)
	c, err := svc.GetContent(ctx, d.ID)
	require.NoError(t, err)
	require.Empty(t, c.Task)
	require.False(t, c.HasReview())
}

func TestPatchContentCorrectionGuard(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := New(store)
	ctx := context.Background()
	d, err := svc.CreateDocument(ctx, "Korrektur")
	require.NoError(t, err)

	// correction before any review would create partial review data
	err = svc.PatchContent(ctx, d.ID, document.ContentPatch{Correction: strp("++neu++")})
	require.ErrorIs(t, err, ErrNotReviewed)
	c, err := svc.GetContent(ctx, d.ID)
	require.NoError(t, err)
	require.False(t, c.HasReview())
	require.Empty(t, c.Correction)

	require.NoError(t, store.SetReview(ctx, d.ID, document.Review{Score: 3, Feedback: "ok", Correction: "alt"}))
	require.NoError(t, svc.PatchContent(ctx, d.ID, document.ContentPatch{Correction: strp("++neu++")}))
	c, err = svc.GetContent(ctx, d.ID)
	require.NoError(t, err)
	require.True(t, c.HasReview())
	require.Equal(t, "++neu++", c.Correction)
}

func TestPatchContentEmptyPatchNoop(t *testing.T) {
	svc := New(repository.NewMemoryStore())
	ctx := context.Background()
	d, err := svc.CreateDocument(ctx, "Nichts")
	require.NoError(t, err)
	require.NoError(t, svc.PatchContent(ctx, d.ID, document.ContentPatch{}))
	require.ErrorIs(t, svc.PatchContent(ctx, "missing", document.ContentPatch{Task: strp("x")}), repository.ErrNotFound)
}
