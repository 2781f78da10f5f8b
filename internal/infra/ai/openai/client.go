package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
)

const (
	maxTokens          = 2048
	defaultModel       = "gpt-3.5-turbo"
	defaultSpeechModel = openai.Whisper1
)

// Client implements ai.Client and ai.SpeechClient on top of go-openai.
type Client struct {
	*openai.Client
	Model       string
	SpeechModel string
	// AudioName is the file name sent with transcription uploads; its
	// extension tells the API how to decode the payload.
	AudioName string
}

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	SpeechModel string
	AudioName   string
	HTTPClient  *http.Client
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	return &Client{
		Client:      openai.NewClientWithConfig(cfg),
		Model:       opts.Model,
		SpeechModel: opts.SpeechModel,
		AudioName:   opts.AudioName,
	}
}

func (c *Client) Complete(ctx context.Context, in ai.ChatRequest) (string, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: in.System},
			{Role: openai.ChatMessageRoleUser, Content: in.User},
		},
	}
	if in.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify("create chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", ai.ErrUpstream)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	model := c.SpeechModel
	if model == "" {
		model = defaultSpeechModel
	}
	name := c.AudioName
	if name == "" {
		name = "audio.mp3"
	}
	resp, err := c.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: name,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", classify("create transcription", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Ping lists models to check credentials and reachability.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.ListModels(ctx); err != nil {
		return classify("list models", err)
	}
	return nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// classify maps go-openai errors onto the ai sentinels.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ai.ErrUpstream, op, err)
	}
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s: %w", ai.ErrQuotaExceeded, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ai.ErrUpstream, op, err)
}
