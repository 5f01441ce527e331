package review

import (
	"context"
	"fmt"
	"strings"
)

// MockClient is a deterministic in-process reviewer for local development and
// tests; it never calls an external model.
type MockClient struct{}

func (MockClient) Review(_ context.Context, task, submission string) (Result, error) {
	words := strings.Fields(submission)
	preview := submission
	if len(words) > 8 {
		preview = strings.Join(words[:8], " ")
	}
	return Result{
		Score:    3,
		Feedback: fmt.Sprintf("Mock review for task %q (%d words written).", task, len(words)),
		Correction: fmt.Sprintf("--%s--++%s++ %s",
			"Beispielfehler", "Beispielkorrektur", preview),
	}, nil
}
