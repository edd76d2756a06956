package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func newRequest() *model.LLMRequest {
	return &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText("score this lead", genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("you are a scorer", genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.2),
			MaxOutputTokens:   300,
		},
	}
}

func collect(t *testing.T, m *Model) (*model.LLMResponse, error) {
	t.Helper()
	var got *model.LLMResponse
	var gotErr error
	for resp, err := range m.GenerateContent(context.Background(), newRequest(), false) {
		got, gotErr = resp, err
	}
	return got, gotErr
}

func TestGenerateContentSendsSystemAndLimits(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"score\":77}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	m := NewModel(Config{APIKey: "key", BaseURL: srv.URL + "/", Model: "test-model"})
	resp, err := collect(t, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.Content.Parts[0].Text; got != `{"score":77}` {
		t.Fatalf("content = %q", got)
	}

	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
	if captured.MaxTokens != 300 || captured.Temperature == nil || *captured.Temperature != 0.2 {
		t.Fatalf("limits not forwarded: %+v", captured)
	}
	if captured.Model != "test-model" {
		t.Fatalf("model = %q", captured.Model)
	}
}

func TestGenerateContentReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	_, err := collect(t, NewModel(Config{APIKey: "key", BaseURL: srv.URL}))
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
}

func TestGenerateContentRejectsTruncatedAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"<html><body>"},"finish_reason":"length"}]}`))
	}))
	defer srv.Close()

	if _, err := collect(t, NewModel(Config{APIKey: "key", BaseURL: srv.URL})); err == nil {
		t.Fatal("expected truncated completion to be an error")
	}
}

func TestGenerateContentRejectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	if _, err := collect(t, NewModel(Config{APIKey: "key", BaseURL: srv.URL})); err == nil {
		t.Fatal("expected decode error")
	}
}
