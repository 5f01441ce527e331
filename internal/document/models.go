package document

// Document is the persistent document model. The title doubles as the
// user-facing identity: it is unique across all documents.
type Document struct {
	ID           string `json:"id" bson:"id"`
	Title        string `json:"title" bson:"title"`
	CreationDate string `json:"creationDate" bson:"creationDate"`
}

// Content is the task/submission/review bundle attached to exactly one
// document. ReviewScore is a pointer so that "never reviewed" (nil) is
// distinguishable from a score of zero.
type Content struct {
	DocumentID     string   `json:"documentId" bson:"documentId"`
	Task           string   `json:"task" bson:"task"`
	SubmissionText string   `json:"submissionText" bson:"submissionText"`
	ReviewScore    *float64 `json:"reviewScore" bson:"reviewScore"`
	ReviewFeedback string   `json:"reviewFeedback" bson:"reviewFeedback"`
	Correction     string   `json:"correction" bson:"correction"`
}

// Review is the result of one review pass. The three fields are only ever
// persisted together, so a content record can never hold partial review data.
type Review struct {
	Score      float64 `json:"score"`
	Feedback   string  `json:"feedback"`
	Correction string  `json:"correction"`
}

// ContentPatch is a field-level update; nil fields are left untouched by the
// merge. Review score and feedback are absent from the patch: they go through
// Store.SetReview so they change as one unit.
type ContentPatch struct {
	Task           *string `json:"task,omitempty"`
	SubmissionText *string `json:"submissionText,omitempty"`
	Correction     *string `json:"correction,omitempty"`
}

// IsZero reports whether the patch would change nothing.
func (p ContentPatch) IsZero() bool {
	return p.Task == nil && p.SubmissionText == nil && p.Correction == nil
}

// HasReview reports whether the content carries a complete review.
func (c *Content) HasReview() bool {
	return c.ReviewScore != nil && c.ReviewFeedback != "" && c.Correction != ""
}

// ApplyReview installs a complete review on the content.
func (c *Content) ApplyReview(r Review) {
	score := r.Score
	c.ReviewScore = &score
	c.ReviewFeedback = r.Feedback
	c.Correction = r.Correction
}

// Apply merges the set patch fields into the content.
func (c *Content) Apply(p ContentPatch) {
	if p.Task != nil {
		c.Task = *p.Task
	}
	if p.SubmissionText != nil {
		c.SubmissionText = *p.SubmissionText
	}
	if p.Correction != nil {
		c.Correction = *p.Correction
	}
}
