// Package ai wraps the OpenAI chat API for job note summarization.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("openai api key not configured")

const systemMessage = "You are an assistant for a refrigeration/HVAC field service company. Summarize job notes concisely."

// Summarizer condenses engineer job notes into a short summary.
type Summarizer struct {
	client  *openai.Client
	enabled bool
}

// NewSummarizer creates a summarizer. An empty apiKey yields a disabled
// instance whose Summarize always returns ErrNotConfigured.
func NewSummarizer(apiKey string) *Summarizer {
	if apiKey == "" {
		return &Summarizer{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Summarizer{client: &client, enabled: true}
}

// Enabled reports whether an API key was configured.
func (s *Summarizer) Enabled() bool {
	return s.enabled
}

// Summarize sends the notes to gpt-4o-mini and returns the summary text.
func (s *Summarizer) Summarize(ctx context.Context, notes string) (string, error) {
	if !s.enabled {
		return "", ErrNotConfigured
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemMessage),
			openai.UserMessage(fmt.Sprintf("Summarize these job notes:\n\n%s", notes)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response content")
	}
	return resp.Choices[0].Message.Content, nil
}
