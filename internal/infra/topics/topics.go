// Package topics provides the local and hosted TopicTracker variants.
package topics

import (
	"context"

	"go.uber.org/zap"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/ai/prompt"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/ai/reply"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/nlp"
)

const defaultTop = 3

// Local returns the most frequent non-stopword tokens as topics.
type Local struct {
	Top int
}

func (l Local) TrackTopics(_ context.Context, text conversation.Transcript) conversation.Facet[[]conversation.Topic] {
	n := l.Top
	if n <= 0 {
		n = defaultTop
	}
	words := nlp.TopTokens(string(text), n)
	out := make([]conversation.Topic, len(words))
	for i, w := range words {
		out[i] = conversation.Topic{Label: w}
	}
	return conversation.Succeed(out)
}

var grammar = reply.Grammar{Start: "Topic", Fields: []string{"Summary", "Relevance"}}

// Hosted asks the chat model for topic/summary/relevance triples.
type Hosted struct {
	Client ai.Client
	Logger *zap.Logger
}

func NewHosted(client ai.Client, logger *zap.Logger) *Hosted {
	return &Hosted{Client: client, Logger: logger}
}

func (h *Hosted) TrackTopics(ctx context.Context, text conversation.Transcript) conversation.Facet[[]conversation.Topic] {
	out, err := h.Client.Complete(ctx, ai.ChatRequest{
		System: prompt.TopicSystem(),
		User:   prompt.TopicUser(string(text)),
	})
	if err != nil {
		h.Logger.Error("topic request failed", zap.Error(err))
		return conversation.FailWith[[]conversation.Topic](err)
	}
	records, err := grammar.Parse(out)
	if err != nil {
		h.Logger.Warn("topic reply unparseable", zap.Error(err))
		return conversation.FailWith[[]conversation.Topic](err)
	}
	topics := make([]conversation.Topic, 0, len(records))
	for _, r := range records {
		topics = append(topics, conversation.Topic{Label: r["Topic"], Summary: r["Summary"], Relevance: r["Relevance"]})
	}
	h.Logger.Info("topic tracking completed", zap.Int("topics", len(topics)))
	return conversation.Succeed(topics)
}
