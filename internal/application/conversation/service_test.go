package conversation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bryanwahyu/podcast-assistant/internal/application"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	domain "github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
)

type fakeTranscriber struct {
	text domain.Transcript
	err  error
	got  []byte
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio []byte) (domain.Transcript, error) {
	f.got = audio
	return f.text, f.err
}

type fakeAnalyzer struct{ out domain.ConversationAnalysis }

func (f fakeAnalyzer) Analyze(context.Context, domain.Transcript) domain.ConversationAnalysis {
	return f.out
}

type fakeFacts struct{ out domain.Facet[[]domain.FactRecord] }

func (f fakeFacts) CheckFacts(context.Context, domain.Transcript) domain.Facet[[]domain.FactRecord] {
	return f.out
}

type fakeTopics struct {
	out   domain.Facet[[]domain.Topic]
	panic bool
}

func (f fakeTopics) TrackTopics(context.Context, domain.Transcript) domain.Facet[[]domain.Topic] {
	if f.panic {
		panic("tracker exploded")
	}
	return f.out
}

type capturingSuggestions struct {
	in domain.SuggestionInput
}

func (c *capturingSuggestions) GenerateSuggestions(_ context.Context, in domain.SuggestionInput) domain.Facet[[]domain.Suggestion] {
	c.in = in
	out := make([]domain.Suggestion, len(in.Topics))
	for i, t := range in.Topics {
		out[i] = domain.Suggestion{Text: "talk about " + t.Label}
	}
	return domain.Succeed(out)
}

type countingRecorder struct {
	mu       sync.Mutex
	reports  int
	failures map[string]domain.FailureReason
}

func (c *countingRecorder) ReportBuilt() { c.mu.Lock(); c.reports++; c.mu.Unlock() }

func (c *countingRecorder) FacetFailed(facet string, reason domain.FailureReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures == nil {
		c.failures = map[string]domain.FailureReason{}
	}
	c.failures[facet] = reason
}

func okAnalysis() domain.ConversationAnalysis {
	return domain.ConversationAnalysis{
		Sentiment: domain.Succeed(domain.SentimentResult{LexiconPolarity: 0.4}),
		Dynamics:  domain.Succeed(domain.DynamicsResult{BasicMetrics: domain.DynamicsMetrics{TurnTaking: 3}}),
		Topics:    domain.Succeed(domain.TopicModelResult{}),
	}
}

func newService(tr domain.Transcriber, an domain.Analyzer, topics domain.TopicTracker, sg domain.SuggestionGenerator) *Service {
	s := NewService(tr, an, fakeFacts{out: domain.Succeed([]domain.FactRecord{{Claim: "a"}, {Claim: "b"}})}, topics, sg, zap.NewNop())
	s.Clock = application.FixedClock{T: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s.NewID = func() string { return "report-1" }
	return s
}

func TestProcessBuildsReport(t *testing.T) {
	topics := []domain.Topic{{Label: "ai"}, {Label: "podcast"}, {Label: "growth"}}
	sg := &capturingSuggestions{}
	rec := &countingRecorder{}
	s := newService(&fakeTranscriber{text: "hello"}, fakeAnalyzer{out: okAnalysis()}, fakeTopics{out: domain.Succeed(topics)}, sg)
	s.Recorder = rec

	r, err := s.Process(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID != "report-1" || !r.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected id/time %q %v", r.ID, r.CreatedAt)
	}
	if r.Transcription != "hello" {
		t.Fatalf("unexpected transcription %q", r.Transcription)
	}
	if got, _ := r.Suggestions.Value(); len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(got))
	}
	if sg.in.Sentiment == nil || sg.in.Dynamics == nil || sg.in.Dynamics.BasicMetrics.TurnTaking != 3 {
		t.Fatalf("suggestions did not receive analysis values: %#v", sg.in)
	}
	if rec.reports != 1 || len(rec.failures) != 0 {
		t.Fatalf("unexpected recorder state %+v", rec)
	}
}

func TestProcessTranscriptionFailureAborts(t *testing.T) {
	sg := &capturingSuggestions{}
	s := newService(&fakeTranscriber{err: fmt.Errorf("%w: boom", ai.ErrUpstream)}, fakeAnalyzer{out: okAnalysis()}, fakeTopics{}, sg)

	r, err := s.Process(context.Background(), []byte("audio"))
	if err == nil || r != nil {
		t.Fatalf("expected error and no report, got %v %v", r, err)
	}
	if !errors.Is(err, ai.ErrUpstream) {
		t.Fatalf("error should wrap ErrUpstream: %v", err)
	}
}

func TestProcessDegradesFailedFacets(t *testing.T) {
	analysis := okAnalysis()
	analysis.Sentiment = domain.Fail[domain.SentimentResult](domain.ReasonQuotaExceeded, "429")
	sg := &capturingSuggestions{}
	rec := &countingRecorder{}
	s := newService(&fakeTranscriber{text: "hello"}, fakeAnalyzer{out: analysis}, fakeTopics{panic: true}, sg)
	s.Recorder = rec

	r, err := s.Process(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f := r.Topics.Failure(); f == nil || f.Reason != domain.ReasonInternal {
		t.Fatalf("expected internal topics failure, got %v", f)
	}
	if sg.in.Topics != nil || sg.in.Sentiment != nil || sg.in.Dynamics == nil {
		t.Fatalf("unexpected suggestion input %#v", sg.in)
	}
	if got, ok := r.Suggestions.Value(); !ok || len(got) != 0 {
		t.Fatalf("expected empty successful suggestions, got %v %v", got, ok)
	}
	if rec.failures["sentiment"] != domain.ReasonQuotaExceeded || rec.failures["topics"] != domain.ReasonInternal {
		t.Fatalf("unexpected recorded failures %v", rec.failures)
	}
}

func TestProcessRejectsEmptyAudio(t *testing.T) {
	tr := &fakeTranscriber{text: "should not be used"}
	s := newService(tr, fakeAnalyzer{out: okAnalysis()}, fakeTopics{}, &capturingSuggestions{})

	for _, audio := range [][]byte{nil, {}, DecodeAudio("   ")} {
		r, err := s.Process(context.Background(), audio)
		if r != nil || !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("Process(%q) = %v, %v; want ErrInvalidInput", audio, r, err)
		}
	}
	if tr.got != nil {
		t.Fatal("transcriber should not be called for empty audio")
	}
}

func TestProcessLogsTranscriptRunes(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := newService(&fakeTranscriber{text: "héllo wörld"}, fakeAnalyzer{out: okAnalysis()}, fakeTopics{out: domain.Succeed([]domain.Topic{})}, &capturingSuggestions{})
	s.Logger = zap.New(core)

	if _, err := s.Process(context.Background(), []byte("audio")); err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("report built").All()
	if len(entries) != 1 {
		t.Fatalf("expected one report log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["transcript_chars"]; got != int64(11) {
		t.Fatalf("transcript_chars = %v, want 11", got)
	}
}

func TestDecodeAudio(t *testing.T) {
	raw := []byte{0x49, 0x44, 0x33, 0x04, 0x00}
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"base64", base64.StdEncoding.EncodeToString(raw), string(raw)},
		{"raw base64", base64.RawStdEncoding.EncodeToString(raw), string(raw)},
		{"not base64", "hello!", "hello!"},
		{"empty", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(DecodeAudio(tt.payload)); got != tt.want {
				t.Fatalf("DecodeAudio(%q) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}
}
