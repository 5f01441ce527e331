package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/telcwrite/telcwrite/internal/document"
	"github.com/telcwrite/telcwrite/internal/document/repository"
	"github.com/telcwrite/telcwrite/pkg/logger"
	"github.com/telcwrite/telcwrite/pkg/metrics"
)

// MinReviewWords is the eligibility gate: a submission needs at least this
// many whitespace-delimited words before a review request is accepted. Fixed
// part of the lifecycle contract, not configurable.
const MinReviewWords = 100

var (
	// ErrNotEligible: the submission is below the word threshold; no external
	// call is made and nothing changes.
	ErrNotEligible = errors.New("submission below review word threshold")
	// ErrInFlight: a review for the same document is already running; the
	// submit action is locked for the duration of that request.
	ErrInFlight = errors.New("review already in flight for this document")
)

// State is the lifecycle position of a content record. UnderReview is
// transient (request in flight); the editable-correction view on top of
// Reviewed is a presentation concern and not a state of its own.
type State int

const (
	StateEditable State = iota
	StateUnderReview
	StateReviewed
)

func (s State) String() string {
	switch s {
	case StateUnderReview:
		return "under-review"
	case StateReviewed:
		return "reviewed"
	default:
		return "editable"
	}
}

// Lifecycle drives a content record through editable → under-review →
// reviewed. It owns the eligibility rule, the per-document in-flight guard
// and the all-or-nothing persistence of review results.
type Lifecycle struct {
	store  repository.Store
	client Client

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewLifecycle(store repository.Store, client Client) *Lifecycle {
	return &Lifecycle{
		store:    store,
		client:   client,
		inFlight: make(map[string]struct{}),
	}
}

// StateOf derives the lifecycle state from a loaded content record: a record
// whose three review fields are all present starts in Reviewed, everything
// else is Editable. In-flight state is only known to the process running the
// request, via the guard.
func (l *Lifecycle) StateOf(c *document.Content) State {
	l.mu.Lock()
	_, running := l.inFlight[c.DocumentID]
	l.mu.Unlock()
	if running {
		return StateUnderReview
	}
	if c.HasReview() {
		return StateReviewed
	}
	return StateEditable
}

// CountWords counts whitespace-delimited words the same way the submit gate
// in the editor does.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Eligible reports whether the submission passes the word-count gate.
func Eligible(submission string) bool {
	return CountWords(submission) >= MinReviewWords
}

// Submit runs one review pass for the document. It locks the document
// against concurrent submissions, checks eligibility before making any
// external call, and persists score, feedback and correction atomically on
// success. On any failure the content record is left exactly as it was and
// the caller may retry. Re-submitting an already reviewed document behaves
// like a fresh submission: prior review data is overwritten on success only.
func (l *Lifecycle) Submit(ctx context.Context, documentID string) (document.Review, error) {
	if err := l.acquire(documentID); err != nil {
		return document.Review{}, err
	}
	defer l.release(documentID)

	metrics.ReviewsRequested.Inc()

	content, err := l.store.GetContent(ctx, documentID)
	if err != nil {
		metrics.ReviewsFailed.WithLabelValues("load").Inc()
		return document.Review{}, fmt.Errorf("load content: %w", err)
	}
	if !Eligible(content.SubmissionText) {
		metrics.ReviewsFailed.WithLabelValues("not_eligible").Inc()
		return document.Review{}, fmt.Errorf("%w: %d of %d words",
			ErrNotEligible, CountWords(content.SubmissionText), MinReviewWords)
	}

	result, err := l.client.Review(ctx, content.Task, content.SubmissionText)
	if err != nil {
		metrics.ReviewsFailed.WithLabelValues("service").Inc()
		logger.Errorf("review failed for document %s: %v", documentID, err)
		if errors.Is(err, ErrService) {
			return document.Review{}, err
		}
		return document.Review{}, fmt.Errorf("%w: %v", ErrService, err)
	}

	rev := document.Review{
		Score:      result.Score,
		Feedback:   result.Feedback,
		Correction: result.Correction,
	}
	if err := l.store.SetReview(ctx, documentID, rev); err != nil {
		// nothing was written; the record still matches its pre-request state
		metrics.ReviewsFailed.WithLabelValues("persist").Inc()
		return document.Review{}, fmt.Errorf("persist review: %w", err)
	}
	metrics.ReviewsCompleted.Inc()
	logger.Infof("review completed for document %s (score %.1f)", documentID, rev.Score)
	return rev, nil
}

func (l *Lifecycle) acquire(documentID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.inFlight[documentID]; ok {
		return ErrInFlight
	}
	l.inFlight[documentID] = struct{}{}
	return nil
}

func (l *Lifecycle) release(documentID string) {
	l.mu.Lock()
	delete(l.inFlight, documentID)
	l.mu.Unlock()
}
