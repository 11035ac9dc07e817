// Package ai wraps the external text-completion collaborator behind a
// one-method interface so the domain layer can be tested without
// network access.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrUpstream marks any failure of the collaborator: network, auth,
// quota, or an empty response. There is no server-side retry.
var ErrUpstream = errors.New("ai assistant unavailable")

// Assistant produces free-form text for a prompt.
type Assistant interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIAssistant is the production implementation, backed by the
// chat-completions API.
type OpenAIAssistant struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIAssistant(apiKey, model string, timeout time.Duration) *OpenAIAssistant {
	return &OpenAIAssistant{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Generate performs a single completion call. The per-call timeout
// bounds how long a request goroutine can be held hostage by a slow
// upstream; the parent context still cancels earlier if the client
// disconnects.
func (a *OpenAIAssistant) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a helpful assistant on a community Q&A forum. Give practical, concrete answers.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}

	return resp.Choices[0].Message.Content, nil
}
