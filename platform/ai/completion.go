// Package ai provides the generative text provider used for copy generation
// and AI-assisted scoring. Providers are exposed through the ADK model.LLM
// interface and wrapped by a Completer that enforces a timeout and returns
// plain text.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// ErrEmptyCompletion is returned when the provider answered without text.
var ErrEmptyCompletion = errors.New("ai: empty completion")

const defaultTimeout = 20 * time.Second

// Prompt is a single-turn completion request.
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completer turns a prompt into text. Implementations must honour ctx.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt Prompt) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}

// LLMCompleter runs prompts against an ADK model.
type LLMCompleter struct {
	llm     model.LLM
	timeout time.Duration
}

// NewLLMCompleter wraps llm; a non-positive timeout uses the default.
func NewLLMCompleter(llm model.LLM, timeout time.Duration) *LLMCompleter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &LLMCompleter{llm: llm, timeout: timeout}
}

// Complete sends the prompt and concatenates the text parts of the answer.
func (c *LLMCompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(prompt.Temperature),
	}
	if prompt.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(prompt.MaxTokens)
	}
	if strings.TrimSpace(prompt.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	req := &model.LLMRequest{
		Model:    c.llm.Name(),
		Contents: []*genai.Content{genai.NewContentFromText(prompt.User, genai.RoleUser)},
		Config:   cfg,
	}

	var out strings.Builder
	for resp, err := range c.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", fmt.Errorf("%s: %w", c.llm.Name(), err)
		}
		if resp == nil || resp.Content == nil {
			continue
		}
		for _, part := range resp.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			out.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
