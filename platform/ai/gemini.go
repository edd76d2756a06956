package ai

import (
	"context"
	"errors"
	"iter"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiModel adapts the genai client to the ADK model.LLM interface.
type GeminiModel struct {
	client *genai.Client
	name   string
}

// NewGeminiModel creates a Gemini API backed model.
func NewGeminiModel(ctx context.Context, apiKey, name string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if name == "" {
		name = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiModel{client: client, name: name}, nil
}

func (m *GeminiModel) Name() string {
	return m.name
}

func (m *GeminiModel) GenerateContent(ctx context.Context, req *model.LLMRequest, _ bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.client.Models.GenerateContent(ctx, m.name, req.Contents, req.Config)
		if err != nil {
			yield(nil, err)
			return
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			yield(nil, errors.New("gemini: no candidates returned"))
			return
		}
		yield(&model.LLMResponse{Content: resp.Candidates[0].Content}, nil)
	}
}
