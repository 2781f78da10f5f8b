// Package analyzer implements the Text Analyzer: sentiment, dynamics and
// topic modelling, each returned as an independent facet.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/ai/prompt"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/nlp"
)

// SentimentClassifier is the local sentiment pipeline.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (conversation.ClassifierScore, error)
}

// ZeroShotClassifier is the local zero-shot pipeline.
type ZeroShotClassifier interface {
	ZeroShot(ctx context.Context, text string, labels []string) (conversation.ZeroShotResult, error)
}

// DefaultLabels are the zero-shot candidate labels.
var DefaultLabels = []string{"politics", "technology", "sports", "entertainment", "science"}

type Options struct {
	// ClassifierMaxChars truncates input to the sentiment classifier.
	ClassifierMaxChars int
	Labels             []string
	LDA                nlp.LDA
}

type Analyzer struct {
	chat       ai.Client
	classifier SentimentClassifier
	zeroShot   ZeroShotClassifier
	opts       Options
	logger     *zap.Logger
}

func New(chat ai.Client, classifier SentimentClassifier, zeroShot ZeroShotClassifier, opts Options, logger *zap.Logger) *Analyzer {
	if opts.ClassifierMaxChars <= 0 {
		opts.ClassifierMaxChars = 512
	}
	if len(opts.Labels) == 0 {
		opts.Labels = DefaultLabels
	}
	return &Analyzer{chat: chat, classifier: classifier, zeroShot: zeroShot, opts: opts, logger: logger}
}

func (a *Analyzer) Analyze(ctx context.Context, text conversation.Transcript) conversation.ConversationAnalysis {
	return conversation.ConversationAnalysis{
		Sentiment: guard(a, "sentiment", func() conversation.Facet[conversation.SentimentResult] { return a.Sentiment(ctx, text) }),
		Dynamics:  guard(a, "dynamics", func() conversation.Facet[conversation.DynamicsResult] { return a.Dynamics(ctx, text) }),
		Topics:    guard(a, "topics", func() conversation.Facet[conversation.TopicModelResult] { return a.Topics(ctx, text) }),
	}
}

// guard turns a panic inside one facet into an internal failure for that facet only.
func guard[T any](a *Analyzer, facet string, fn func() conversation.Facet[T]) (out conversation.Facet[T]) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analysis panicked", zap.String("facet", facet), zap.Any("panic", r))
			out = conversation.Fail[T](conversation.ReasonInternal, fmt.Sprintf("%s analysis failed unexpectedly", facet))
		}
	}()
	return fn()
}

func (a *Analyzer) Sentiment(ctx context.Context, text conversation.Transcript) conversation.Facet[conversation.SentimentResult] {
	res := conversation.SentimentResult{LexiconPolarity: nlp.Polarity(string(text))}

	score, err := a.classifier.Classify(ctx, nlp.Truncate(string(text), a.opts.ClassifierMaxChars))
	if err != nil {
		return failFacet[conversation.SentimentResult](a, "sentiment", err)
	}
	res.Classifier = score

	if err := a.askJSON(ctx, prompt.SentimentSystem(), prompt.SentimentUser(string(text)), &res.ModelAnalysis); err != nil {
		return failFacet[conversation.SentimentResult](a, "sentiment", err)
	}
	a.logger.Info("sentiment analysis completed", zap.Float64("polarity", res.LexiconPolarity), zap.String("label", score.Label))
	return conversation.Succeed(res)
}

func (a *Analyzer) Dynamics(ctx context.Context, text conversation.Transcript) conversation.Facet[conversation.DynamicsResult] {
	res := conversation.DynamicsResult{BasicMetrics: Metrics(string(text))}
	if err := a.askJSON(ctx, prompt.DynamicsSystem(), prompt.DynamicsUser(string(text)), &res.ModelAnalysis); err != nil {
		return failFacet[conversation.DynamicsResult](a, "dynamics", err)
	}
	a.logger.Info("conversation dynamics analysis completed", zap.Int("turns", res.BasicMetrics.TurnTaking))
	return conversation.Succeed(res)
}

// Metrics computes turn count and average sentence/word lengths.
// Word length ignores stopwords; empty input yields zeros.
func Metrics(text string) conversation.DynamicsMetrics {
	sentences := nlp.Sentences(text)
	m := conversation.DynamicsMetrics{TurnTaking: len(sentences)}
	if len(sentences) > 0 {
		words := 0
		for _, s := range sentences {
			words += len(strings.Fields(s))
		}
		m.AvgSentenceLength = float64(words) / float64(len(sentences))
	}

	var chars, kept int
	for _, w := range nlp.Words(text) {
		if nlp.IsStopword(nlp.Normalize(w)) {
			continue
		}
		chars += utf8.RuneCountInString(w)
		kept++
	}
	if kept > 0 {
		m.AvgWordLength = float64(chars) / float64(kept)
	}
	return m
}

func (a *Analyzer) Topics(ctx context.Context, text conversation.Transcript) conversation.Facet[conversation.TopicModelResult] {
	fitted := a.opts.LDA.Fit(nlp.TopicDocuments(string(text)))
	res := conversation.TopicModelResult{LDATopics: make([]conversation.LDATopic, len(fitted))}
	for i, t := range fitted {
		res.LDATopics[i] = conversation.LDATopic{TopicID: t.ID, Keywords: t.String()}
	}

	zs, err := a.zeroShot.ZeroShot(ctx, string(text), a.opts.Labels)
	if err != nil {
		return failFacet[conversation.TopicModelResult](a, "topics", err)
	}
	res.ZeroShot = zs
	a.logger.Info("topic analysis completed", zap.Int("lda_topics", len(res.LDATopics)))
	return conversation.Succeed(res)
}

func (a *Analyzer) askJSON(ctx context.Context, system, user string, dst any) error {
	out, err := a.chat.Complete(ctx, ai.ChatRequest{System: system, User: user, JSON: true})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(prompt.ExtractJSON(out)), dst); err != nil {
		return fmt.Errorf("%w: %w", ai.ErrUnparseable, err)
	}
	return nil
}

func failFacet[T any](a *Analyzer, facet string, err error) conversation.Facet[T] {
	a.logger.Error("analysis failed", zap.String("facet", facet), zap.Error(err))
	return conversation.FailWith[T](err)
}
