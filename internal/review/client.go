package review

import (
	"context"
	"errors"
)

// ErrService marks any transport, upstream or response-parsing failure of the
// external review call. Callers treat every failure uniformly: no partial
// result is ever accepted.
var ErrService = errors.New("review service failed")

// Result is a complete review as produced by the language model.
type Result struct {
	Score      float64 `json:"score"`
	Feedback   string  `json:"feedback"`
	Correction string  `json:"correction"`
}

// Client abstracts the language-model call so it can be replaced or mocked.
// Implementations are stateless request/response.
type Client interface {
	Review(ctx context.Context, task, submission string) (Result, error)
}
