package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client on the official openai-go SDK (chat
// completions). The system prompt is read from a prompt file once at
// construction; the task and submission are passed as a JSON payload in the
// user message and the model is expected to answer with a JSON object
// containing score, feedback and correction.
type OpenAIClient struct {
	model  string
	prompt string
	opts   []option.RequestOption
}

// OpenAISettings carries the connection configuration for the review model.
type OpenAISettings struct {
	APIKey     string
	Model      string
	BaseURL    string
	PromptPath string
}

func NewOpenAIClient(cfg OpenAISettings) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("review model is required")
	}
	prompt, err := os.ReadFile(cfg.PromptPath)
	if err != nil {
		return nil, fmt.Errorf("read review prompt: %w", err)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{model: cfg.Model, prompt: string(prompt), opts: opts}, nil
}

func (o *OpenAIClient) Review(ctx context.Context, task, submission string) (Result, error) {
	payload, err := json.Marshal(map[string]string{
		"taskContent": task,
		"contentText": submission,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: encode request: %v", ErrService, err)
	}

	client := openai.NewClient(o.opts...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.prompt),
			openai.UserMessage(string(payload)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrService, err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: empty choices", ErrService)
	}
	return parseResult(resp.Choices[0].Message.Content)
}

// parseResult decodes the model answer. Models occasionally wrap JSON in a
// markdown fence, so that is stripped before decoding.
func parseResult(raw string) (Result, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	var res Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return Result{}, fmt.Errorf("%w: parse response: %v", ErrService, err)
	}
	if res.Feedback == "" || res.Correction == "" {
		return Result{}, fmt.Errorf("%w: incomplete response", ErrService)
	}
	return res, nil
}
