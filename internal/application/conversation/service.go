// Package conversation orchestrates one audio request into a Report.
package conversation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/podcast-assistant/internal/application"
	domain "github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
)

// Recorder receives per-report counters.
type Recorder interface {
	ReportBuilt()
	FacetFailed(facet string, reason domain.FailureReason)
}

type nopRecorder struct{}

func (nopRecorder) ReportBuilt() {}
func (nopRecorder) FacetFailed(string, domain.FailureReason) {}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	Transcriber domain.Transcriber
	Analyzer    domain.Analyzer
	Facts       domain.FactChecker
	Topics      domain.TopicTracker
	Suggestions domain.SuggestionGenerator

	Clock    application.Clock
	NewID    func() string
	Recorder Recorder
	Logger   *zap.Logger
}

func NewService(
	transcriber domain.Transcriber,
	analyzer domain.Analyzer,
	facts domain.FactChecker,
	topics domain.TopicTracker,
	suggestions domain.SuggestionGenerator,
	logger *zap.Logger,
) *Service {
	return &Service{
		Transcriber: transcriber,
		Analyzer:    analyzer,
		Facts:       facts,
		Topics:      topics,
		Suggestions: suggestions,
		Clock:       application.SystemClock{},
		NewID:       application.NewID,
		Recorder:    nopRecorder{},
		Logger:      logger,
	}
}

// DecodeAudio decodes a base64 payload; anything that is not valid base64
// is taken as raw bytes.
func DecodeAudio(payload string) []byte {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(trimmed); err == nil {
			return b
		}
	}
	return []byte(payload)
}

// Process transcribes the audio and builds the report. Only empty audio or a
// failed transcription returns an error; every later step degrades to a failed facet.
func (s *Service) Process(ctx context.Context, audio []byte) (*domain.Report, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio payload", domain.ErrInvalidInput)
	}
	text, err := s.Transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("process audio: %w", err)
	}

	var (
		facts    domain.Facet[[]domain.FactRecord]
		topics   domain.Facet[[]domain.Topic]
		analysis domain.ConversationAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		facts = recoverFacet(s.Logger, "facts", func() domain.Facet[[]domain.FactRecord] {
			return s.Facts.CheckFacts(gctx, text)
		})
		return nil
	})
	g.Go(func() error {
		topics = recoverFacet(s.Logger, "topics", func() domain.Facet[[]domain.Topic] {
			return s.Topics.TrackTopics(gctx, text)
		})
		return nil
	})
	g.Go(func() error {
		analysis = s.analyze(gctx, text)
		return nil
	})
	_ = g.Wait()

	in := domain.SuggestionInput{
		Sentiment: analysis.Sentiment.Ptr(),
		Dynamics:  analysis.Dynamics.Ptr(),
	}
	if v, ok := topics.Value(); ok {
		in.Topics = v
	}
	suggestions := recoverFacet(s.Logger, "suggestions", func() domain.Facet[[]domain.Suggestion] {
		return s.Suggestions.GenerateSuggestions(ctx, in)
	})

	report := &domain.Report{
		ID:                   s.NewID(),
		CreatedAt:            s.Clock.Now(),
		Transcription:        text,
		ConversationAnalysis: analysis,
		Facts:                facts,
		Topics:               topics,
		Suggestions:          suggestions,
	}
	s.record(report)
	s.Logger.Info("report built",
		zap.String("report_id", report.ID),
		zap.Int("transcript_chars", utf8.RuneCountInString(string(text))),
	)
	return report, nil
}

func (s *Service) analyze(ctx context.Context, text domain.Transcript) (out domain.ConversationAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("conversation analysis panicked", zap.Any("panic", r))
			msg := "conversation analysis failed unexpectedly"
			out = domain.ConversationAnalysis{
				Sentiment: domain.Fail[domain.SentimentResult](domain.ReasonInternal, msg),
				Dynamics:  domain.Fail[domain.DynamicsResult](domain.ReasonInternal, msg),
				Topics:    domain.Fail[domain.TopicModelResult](domain.ReasonInternal, msg),
			}
		}
	}()
	return s.Analyzer.Analyze(ctx, text)
}

func (s *Service) record(r *domain.Report) {
	s.Recorder.ReportBuilt()
	failures := map[string]*domain.Failure{
		"sentiment":   r.ConversationAnalysis.Sentiment.Failure(),
		"dynamics":    r.ConversationAnalysis.Dynamics.Failure(),
		"topic_model": r.ConversationAnalysis.Topics.Failure(),
		"facts":       r.Facts.Failure(),
		"topics":      r.Topics.Failure(),
		"suggestions": r.Suggestions.Failure(),
	}
	for name, f := range failures {
		if f != nil {
			s.Recorder.FacetFailed(name, f.Reason)
		}
	}
}

// recoverFacet runs fn and turns a panic into an internal failure for that facet.
func recoverFacet[T any](logger *zap.Logger, facet string, fn func() domain.Facet[T]) (out domain.Facet[T]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("facet panicked", zap.String("facet", facet), zap.Any("panic", r))
			out = domain.Fail[T](domain.ReasonInternal, facet+" failed unexpectedly")
		}
	}()
	return fn()
}
