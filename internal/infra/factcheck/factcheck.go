// Package factcheck provides the mock and hosted FactChecker variants.
package factcheck

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/ai/prompt"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/ai/reply"
)

// MockFacts is the fixed list the mock variant samples from.
var MockFacts = []string{
	"Earth is round.",
	"Water boils at 100 degrees Celsius at sea level.",
	"The human body has 206 bones.",
	"Light travels faster than sound.",
	"Mount Everest is the highest mountain above sea level.",
}

const mockSample = 2

// Mock returns two distinct facts from MockFacts per call.
type Mock struct {
	// Perm defaults to math/rand/v2 Perm, which is safe for concurrent use.
	Perm func(n int) []int
}

func (m Mock) CheckFacts(_ context.Context, _ conversation.Transcript) conversation.Facet[[]conversation.FactRecord] {
	perm := m.Perm
	if perm == nil {
		perm = rand.Perm
	}
	idx := perm(len(MockFacts))[:mockSample]
	out := make([]conversation.FactRecord, 0, mockSample)
	for _, i := range idx {
		out = append(out, conversation.FactRecord{
			Claim:      MockFacts[i],
			Accuracy:   "Unverified",
			Evidence:   "Mock fact list",
			Importance: "low",
		})
	}
	return conversation.Succeed(out)
}

var grammar = reply.Grammar{Start: "Claim", Fields: []string{"Accuracy", "Evidence", "Importance"}}

// Hosted asks the chat model for a fact-check report and parses it.
type Hosted struct {
	Client ai.Client
	Logger *zap.Logger
}

func NewHosted(client ai.Client, logger *zap.Logger) *Hosted {
	return &Hosted{Client: client, Logger: logger}
}

func (h *Hosted) CheckFacts(ctx context.Context, text conversation.Transcript) conversation.Facet[[]conversation.FactRecord] {
	out, err := h.Client.Complete(ctx, ai.ChatRequest{
		System: prompt.FactCheckSystem(),
		User:   prompt.FactCheckUser(string(text)),
	})
	if err != nil {
		h.Logger.Error("fact-check request failed", zap.Error(err))
		return conversation.FailWith[[]conversation.FactRecord](err)
	}
	records, err := grammar.Parse(out)
	if err != nil {
		h.Logger.Warn("fact-check reply unparseable", zap.Error(err))
		return conversation.FailWith[[]conversation.FactRecord](err)
	}

	facts := make([]conversation.FactRecord, 0, len(records))
	for _, r := range records {
		facts = append(facts, conversation.FactRecord{
			Claim:      r["Claim"],
			Accuracy:   r["Accuracy"],
			Evidence:   r["Evidence"],
			Importance: r["Importance"],
		})
	}
	h.Logger.Info("fact-checking completed", zap.Int("facts", len(facts)))
	return conversation.Succeed(facts)
}
