// Package suggest provides the template and hosted SuggestionGenerator variants.
package suggest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/ai/prompt"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/ai/reply"
)

// Templates are cycled in order; topic i uses Templates[i % len(Templates)].
var Templates = []string{
	"Consider exploring %s in more depth.",
	"You might want to discuss the implications of %s on the industry.",
	"It would be interesting to hear your thoughts on how %s relates to current events.",
	"Perhaps you could share an anecdote about your experience with %s.",
	"Have you considered comparing %s to similar concepts?",
}

// Template formats one suggestion per topic without any model call.
type Template struct{}

func (Template) GenerateSuggestions(_ context.Context, in conversation.SuggestionInput) conversation.Facet[[]conversation.Suggestion] {
	out := make([]conversation.Suggestion, len(in.Topics))
	for i, t := range in.Topics {
		out[i] = conversation.Suggestion{Text: fmt.Sprintf(Templates[i%len(Templates)], t.Label)}
	}
	return conversation.Succeed(out)
}

var grammar = reply.Grammar{Start: "Suggestion", Fields: []string{"Context"}}

// Hosted asks the chat model for coaching suggestions.
type Hosted struct {
	Client ai.Client
	Logger *zap.Logger
}

func NewHosted(client ai.Client, logger *zap.Logger) *Hosted {
	return &Hosted{Client: client, Logger: logger}
}

func (h *Hosted) GenerateSuggestions(ctx context.Context, in conversation.SuggestionInput) conversation.Facet[[]conversation.Suggestion] {
	out, err := h.Client.Complete(ctx, ai.ChatRequest{
		System: prompt.SuggestionSystem(),
		User:   prompt.SuggestionUser(in),
	})
	if err != nil {
		h.Logger.Error("suggestion request failed", zap.Error(err))
		return conversation.FailWith[[]conversation.Suggestion](err)
	}
	records, err := grammar.Parse(out)
	if err != nil {
		h.Logger.Warn("suggestion reply unparseable", zap.Error(err))
		return conversation.FailWith[[]conversation.Suggestion](err)
	}
	suggestions := make([]conversation.Suggestion, 0, len(records))
	for _, r := range records {
		suggestions = append(suggestions, conversation.Suggestion{Text: r["Suggestion"], Context: r["Context"]})
	}
	h.Logger.Info("suggestions generated", zap.Int("suggestions", len(suggestions)))
	return conversation.Succeed(suggestions)
}
