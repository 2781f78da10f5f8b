package conversation

import "context"

// Transcriber converts raw audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (Transcript, error)
}

// Analyzer runs the sentiment, dynamics and topic-model facets.
type Analyzer interface {
	Analyze(ctx context.Context, text Transcript) ConversationAnalysis
}

type FactChecker interface {
	CheckFacts(ctx context.Context, text Transcript) Facet[[]FactRecord]
}

type TopicTracker interface {
	TrackTopics(ctx context.Context, text Transcript) Facet[[]Topic]
}

type SuggestionGenerator interface {
	GenerateSuggestions(ctx context.Context, in SuggestionInput) Facet[[]Suggestion]
}
