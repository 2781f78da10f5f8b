package conversation

import (
	"encoding/json"
	"time"
)

// Transcript is the text produced once per request by a Transcriber.
type Transcript string

// ClassifierScore is a label/confidence pair from a local classifier.
type ClassifierScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentModelAnalysis is the hosted model's free-form view of the text.
// Every field stays raw because models return strings, lists or maps.
type SentimentModelAnalysis struct {
	OverallSentiment json.RawMessage `json:"overall_sentiment,omitempty"`
	Emotions         json.RawMessage `json:"emotions,omitempty"`
	Explanation      json.RawMessage `json:"explanation,omitempty"`
}

type SentimentResult struct {
	LexiconPolarity float64                `json:"lexicon_polarity"`
	Classifier      ClassifierScore        `json:"classifier"`
	ModelAnalysis   SentimentModelAnalysis `json:"model_analysis"`
}

// DynamicsMetrics are computed locally. All values are >= 0.
type DynamicsMetrics struct {
	TurnTaking        int     `json:"turn_taking"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length"`
}

type DynamicsModelAnalysis struct {
	TurnTaking        json.RawMessage `json:"turn_taking,omitempty"`
	Interruptions     json.RawMessage `json:"interruptions,omitempty"`
	TopicCoherence    json.RawMessage `json:"topic_coherence,omitempty"`
	Flow              json.RawMessage `json:"flow,omitempty"`
	SpeakerEngagement json.RawMessage `json:"speaker_engagement,omitempty"`
	Explanation       json.RawMessage `json:"explanation,omitempty"`
}

type DynamicsResult struct {
	BasicMetrics  DynamicsMetrics       `json:"basic_metrics"`
	ModelAnalysis DynamicsModelAnalysis `json:"model_analysis"`
}

// LDATopic is one latent topic printed as weighted keywords, e.g. `0.120*"growth" + ...`.
type LDATopic struct {
	TopicID  int    `json:"topic_id"`
	Keywords string `json:"keywords"`
}

// ZeroShotResult holds candidate labels sorted by descending score.
type ZeroShotResult struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type TopicModelResult struct {
	LDATopics []LDATopic     `json:"lda_topics"`
	ZeroShot  ZeroShotResult `json:"zero_shot_classification"`
}

// ConversationAnalysis always carries all three facets, each independently fallible.
type ConversationAnalysis struct {
	Sentiment Facet[SentimentResult]  `json:"sentiment_analysis"`
	Dynamics  Facet[DynamicsResult]   `json:"dynamics_analysis"`
	Topics    Facet[TopicModelResult] `json:"topic_analysis"`
}

// FactRecord may be partially filled when the model skipped a field.
type FactRecord struct {
	Claim      string `json:"claim"`
	Accuracy   string `json:"accuracy,omitempty"`
	Evidence   string `json:"evidence,omitempty"`
	Importance string `json:"importance,omitempty"`
}

// Topic is shared by the local and hosted trackers; the local one only fills Label.
type Topic struct {
	Label     string `json:"topic"`
	Summary   string `json:"summary,omitempty"`
	Relevance string `json:"relevance,omitempty"`
}

type Suggestion struct {
	Text    string `json:"suggestion"`
	Context string `json:"context,omitempty"`
}

// SuggestionInput is what the suggestion generator consumes.
// Sentiment and Dynamics are nil when their analysis failed.
type SuggestionInput struct {
	Topics    []Topic
	Sentiment *SentimentResult
	Dynamics  *DynamicsResult
}

// Report is the orchestrator's output for one request.
type Report struct {
	ID                   string
	CreatedAt            time.Time
	Transcription        Transcript
	ConversationAnalysis ConversationAnalysis
	Facts                Facet[[]FactRecord]
	Topics               Facet[[]Topic]
	Suggestions          Facet[[]Suggestion]
}

type reportJSON struct {
	ID                   string               `json:"id"`
	CreatedAt            time.Time            `json:"created_at"`
	Transcription        Transcript           `json:"transcription"`
	ConversationAnalysis ConversationAnalysis `json:"conversation_analysis"`
	Facts                []FactRecord         `json:"facts"`
	Topics               []Topic              `json:"topics"`
	Suggestions          []Suggestion         `json:"suggestions"`
	Failures             map[string]*Failure  `json:"failures"`
}

// MarshalJSON flattens the list facets into plain arrays (empty when failed)
// and reports their failures under "failures", so the shape never changes.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		ID:                   r.ID,
		CreatedAt:            r.CreatedAt,
		Transcription:        r.Transcription,
		ConversationAnalysis: r.ConversationAnalysis,
		Facts:                orEmpty(r.Facts),
		Topics:               orEmpty(r.Topics),
		Suggestions:          orEmpty(r.Suggestions),
		Failures:             map[string]*Failure{},
	}
	if f := r.Facts.Failure(); f != nil {
		out.Failures["facts"] = f
	}
	if f := r.Topics.Failure(); f != nil {
		out.Failures["topics"] = f
	}
	if f := r.Suggestions.Failure(); f != nil {
		out.Failures["suggestions"] = f
	}
	return json.Marshal(out)
}

func orEmpty[T any](f Facet[[]T]) []T {
	v, ok := f.Value()
	if !ok || v == nil {
		return []T{}
	}
	return v
}
