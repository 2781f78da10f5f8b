package nlp

import (
	"context"
	"math"
	"unicode/utf8"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
)

// polarity lexicon in [-1, 1], adjectives and verbs common in spoken conversation
var lexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.6, "awesome": 1.0,
	"wonderful": 1.0, "fantastic": 0.4, "love": 0.5, "loved": 0.7, "like": 0.2,
	"happy": 0.8, "glad": 0.5, "nice": 0.6, "best": 1.0, "better": 0.5,
	"interesting": 0.5, "fascinating": 0.6, "exciting": 0.3, "excited": 0.4,
	"helpful": 0.3, "useful": 0.3, "important": 0.4, "fun": 0.3, "beautiful": 0.85,
	"brilliant": 0.9, "perfect": 1.0, "positive": 0.2, "right": 0.3, "agree": 0.3,
	"success": 0.3, "successful": 0.75, "growth": 0.2, "thanks": 0.2, "thank": 0.2,
	"welcome": 0.8, "impressive": 1.0, "enjoy": 0.4, "enjoyed": 0.4, "easy": 0.4,
	"bad": -0.7, "terrible": -1.0, "awful": -1.0, "horrible": -1.0, "worst": -1.0,
	"worse": -0.4, "hate": -0.8, "hated": -0.9, "sad": -0.5, "angry": -0.5,
	"wrong": -0.5, "boring": -1.0, "poor": -0.4, "negative": -0.3, "problem": -0.3,
	"problems": -0.3, "difficult": -0.5, "hard": -0.3, "fail": -0.5, "failed": -0.5,
	"failure": -0.3, "disagree": -0.3, "annoying": -0.8, "confusing": -0.3,
	"scary": -0.5, "afraid": -0.6, "worried": -0.5, "stupid": -0.8, "crazy": -0.6,
	"ugly": -0.7, "disappointing": -0.6, "disappointed": -0.75, "risk": -0.2,
	"dangerous": -0.6, "sorry": -0.5, "unfortunately": -0.5, "mess": -0.4,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.2, "extremely": 1.5, "so": 1.2, "super": 1.4,
	"incredibly": 1.5, "quite": 1.1, "totally": 1.3, "absolutely": 1.4,
	"slightly": 0.6, "somewhat": 0.7, "barely": 0.5,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "doesn't": true,
	"didn't": true, "isn't": true, "wasn't": true, "aren't": true, "can't": true,
	"won't": true, "nothing": true, "hardly": true,
}

// Polarity scores text in [-1, 1] as the mean of the sentiment words found.
// A negator within the two preceding tokens flips and halves a word's score;
// an intensifier directly before a word scales it. No sentiment words yields 0.
func Polarity(text string) float64 {
	toks := Tokens(text)
	var sum float64
	var n int
	for i, t := range toks {
		p, ok := lexicon[t]
		if !ok {
			continue
		}
		if i > 0 {
			if m, ok := intensifiers[toks[i-1]]; ok {
				p *= m
			}
		}
		for back := 1; back <= 2 && i-back >= 0; back++ {
			if negators[toks[i-back]] {
				p *= -0.5
				break
			}
		}
		sum += clamp(p)
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp(sum / float64(n))
}

func clamp(v float64) float64 { return math.Max(-1, math.Min(1, v)) }

// LexiconClassifier derives a POSITIVE/NEGATIVE/NEUTRAL label from Polarity.
// It serves when no inference server is configured.
type LexiconClassifier struct {
	// MaxChars truncates the input like the hosted classifiers do.
	MaxChars int
}

func (c LexiconClassifier) Classify(_ context.Context, text string) (conversation.ClassifierScore, error) {
	p := Polarity(Truncate(text, c.MaxChars))
	switch {
	case p > 0.05:
		return conversation.ClassifierScore{Label: "POSITIVE", Score: 0.5 + p/2}, nil
	case p < -0.05:
		return conversation.ClassifierScore{Label: "NEGATIVE", Score: 0.5 - p/2}, nil
	default:
		return conversation.ClassifierScore{Label: "NEUTRAL", Score: 1 - math.Abs(p)}, nil
	}
}

// Truncate cuts text to at most n runes; n <= 0 means no limit.
func Truncate(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}
