package ai

import "context"

// ChatRequest is one system+user exchange with a hosted chat model.
type ChatRequest struct {
	System string
	User   string
	// JSON asks the provider for a single JSON object reply.
	JSON bool
}

// Client is the port for the hosted chat-completion endpoint.
type Client interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// SpeechClient is the port for the hosted speech-to-text endpoint.
type SpeechClient interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
