// Package editor holds the per-document editing session: optimistic local
// state for the tracked fields, debounced persistence, and the
// annotated/editable toggle for the correction.
package editor

import (
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/telcwrite/telcwrite/internal/autosave"
	"github.com/telcwrite/telcwrite/internal/diff"
	"github.com/telcwrite/telcwrite/internal/document"
	"github.com/telcwrite/telcwrite/internal/document/repository"
	"github.com/telcwrite/telcwrite/internal/review"
)

const (
	// Tracked field names, also the autosave keys.
	FieldTask       = "task"
	FieldSubmission = "submissionText"
	FieldCorrection = "correction"

	// SaveDelay is the quiet period after an edit before it is persisted.
	SaveDelay = 500 * time.Millisecond
	// CorrectionBlurDelay commits the correction shortly after focus leaves it.
	CorrectionBlurDelay = 500 * time.Millisecond
	// CorrectionInputDelay commits the correction during prolonged continuous
	// editing, so a long editing session cannot lose everything at once.
	CorrectionInputDelay = 30 * time.Second
)

// NotifyFunc surfaces a persistence failure to the user. Editing continues;
// the in-memory value is retained, but durable state may be stale.
type NotifyFunc func(field string, err error)

// Session tracks one document's fields between the user and the store.
type Session struct {
	documentID string
	store      repository.Store
	auto       *autosave.Coordinator
	notify     NotifyFunc

	mu         sync.RWMutex
	task       string
	submission string
	correction string
	reviewed   bool
	// editingCorrection is the presentation sub-state: raw text shown in
	// place of the annotated view.
	editingCorrection bool
}

// Open loads the document's content and builds a session positioned in the
// state the content implies: a record with complete review data starts
// reviewed, everything else starts editable.
func Open(ctx context.Context, store repository.Store, documentID string, notify NotifyFunc) (*Session, error) {
	content, err := store.GetContent(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	if notify == nil {
		notify = func(string, error) {}
	}
	s := &Session{
		documentID: documentID,
		store:      store,
		notify:     notify,
		task:       content.Task,
		submission: content.SubmissionText,
		correction: content.Correction,
		reviewed:   content.HasReview(),
	}
	s.auto = autosave.New(SaveDelay, s.persist, autosave.ErrorFunc(notify))
	return s, nil
}

// persist writes one field through the store. Runs on the coordinator's timer
// goroutine after the quiet period.
func (s *Session) persist(field, value string) error {
	patch := document.ContentPatch{}
	switch field {
	case FieldTask:
		patch.Task = &value
	case FieldSubmission:
		patch.SubmissionText = &value
	case FieldCorrection:
		patch.Correction = &value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return s.store.PatchContent(context.Background(), s.documentID, patch)
}

// SetTask records a task edit and schedules its save.
func (s *Session) SetTask(text string) {
	s.mu.Lock()
	s.task = text
	s.mu.Unlock()
	s.auto.Edit(FieldTask, text)
}

// SetSubmission records a submission edit and schedules its save.
func (s *Session) SetSubmission(text string) {
	s.mu.Lock()
	s.submission = text
	s.mu.Unlock()
	s.auto.Edit(FieldSubmission, text)
}

// StartCorrectionEdit switches the correction to its raw editable form.
func (s *Session) StartCorrectionEdit() {
	s.mu.Lock()
	s.editingCorrection = true
	s.mu.Unlock()
}

// EditCorrection records a correction edit on the continuous-input path: the
// commit is pushed out while typing goes on, and lands after the long delay.
func (s *Session) EditCorrection(text string) {
	s.mu.Lock()
	s.correction = text
	s.editingCorrection = true
	s.mu.Unlock()
	s.auto.EditAfter(FieldCorrection, text, CorrectionInputDelay)
}

// BlurCorrection re-schedules the commit on the short delay, for when focus
// leaves the correction field.
func (s *Session) BlurCorrection() {
	s.mu.RLock()
	text := s.correction
	s.mu.RUnlock()
	s.auto.EditAfter(FieldCorrection, text, CorrectionBlurDelay)
}

// CommitCorrection persists the correction immediately and switches back to
// the annotated view.
func (s *Session) CommitCorrection() {
	s.auto.Flush(FieldCorrection)
	s.mu.Lock()
	s.editingCorrection = false
	s.mu.Unlock()
}

// Task, Submission and Correction return the local in-memory values; these
// survive failed saves so no keystrokes are lost.
func (s *Session) Task() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.task
}

func (s *Session) Submission() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submission
}

func (s *Session) Correction() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.correction
}

// Reviewed reports whether the session opened on (or reached) a reviewed
// record, which locks task and submission in the UI.
func (s *Session) Reviewed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reviewed
}

// EditingCorrection reports the raw/annotated toggle position.
func (s *Session) EditingCorrection() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editingCorrection
}

// Rendered returns the annotated view of the latest correction text.
func (s *Session) Rendered() []diff.Segment {
	return diff.Render(s.Correction())
}

// RenderedHTML returns the annotated view as markup.
func (s *Session) RenderedHTML() template.HTML {
	return diff.RenderHTML(s.Correction())
}

// WordCount counts words in the current submission, for the live counter.
func (s *Session) WordCount() int {
	return review.CountWords(s.Submission())
}

// Reviewable reports whether the submit gate is open.
func (s *Session) Reviewable() bool {
	return review.Eligible(s.Submission())
}

// Close flushes every pending save and stops the timers.
func (s *Session) Close() {
	s.auto.FlushAll()
	s.auto.Stop()
}
