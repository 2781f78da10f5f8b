// Package transcribe provides the mock and whisper Transcriber variants.
package transcribe

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
)

// MockText is what the mock variant returns when no Text is set.
const MockText = "Welcome back to the show. Today we talk about AI and how it is changing podcast growth. " +
	"AI tools help hosts edit faster, and podcast audiences keep growing. " +
	"Growth is exciting, but we should stay careful about accuracy."

// Mock ignores the audio and returns a fixed transcript.
type Mock struct {
	Text string
}

func (m Mock) Transcribe(_ context.Context, _ []byte) (conversation.Transcript, error) {
	if m.Text == "" {
		return MockText, nil
	}
	return conversation.Transcript(m.Text), nil
}

// Whisper forwards audio to the hosted speech-to-text model.
type Whisper struct {
	Speech ai.SpeechClient
	Logger *zap.Logger
}

func NewWhisper(speech ai.SpeechClient, logger *zap.Logger) *Whisper {
	return &Whisper{Speech: speech, Logger: logger}
}

func (w *Whisper) Transcribe(ctx context.Context, audio []byte) (conversation.Transcript, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio payload", conversation.ErrInvalidInput)
	}
	text, err := w.Speech.Transcribe(ctx, audio)
	if err != nil {
		w.Logger.Error("transcription failed", zap.Int("audio_bytes", len(audio)), zap.Error(err))
		return "", fmt.Errorf("transcribe: %w", err)
	}
	w.Logger.Info("transcription completed", zap.Int("audio_bytes", len(audio)), zap.Int("chars", len(text)))
	return conversation.Transcript(text), nil
}
