package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const deepSeekBaseURL = "https://api.deepseek.com/v1"

type openAIClient struct {
	client   *openai.Client
	model    string
	provider string
}

func newOpenAICompatible(cfg Config) *openAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	switch {
	case cfg.BaseURL != "":
		oc.BaseURL = cfg.BaseURL
	case cfg.Provider == DeepSeek:
		oc.BaseURL = deepSeekBaseURL
	}
	oc.HTTPClient = cfg.HTTPClient
	return &openAIClient{
		client:   openai.NewClientWithConfig(oc),
		model:    cfg.Model,
		provider: cfg.Provider,
	}
}

// Complete implements Completer.
func (o *openAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s API call failed: %w", o.provider, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
