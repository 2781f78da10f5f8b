package nlp

import (
	"context"
	"math"
	"sort"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
)

var seedVocabulary = map[string][]string{
	"politics":      {"election", "government", "policy", "vote", "president", "senate", "congress", "law", "party", "campaign", "minister", "political"},
	"technology":    {"ai", "software", "computer", "tech", "internet", "app", "data", "startup", "algorithm", "digital", "code", "model", "cloud", "robot"},
	"sports":        {"game", "team", "player", "score", "match", "league", "coach", "season", "championship", "football", "basketball", "soccer", "win"},
	"entertainment": {"movie", "film", "music", "show", "celebrity", "album", "series", "actor", "podcast", "concert", "netflix", "episode", "song"},
	"science":       {"research", "study", "scientist", "experiment", "physics", "biology", "climate", "space", "theory", "evidence", "chemistry", "planet"},
}

// KeywordZeroShot scores candidate labels by keyword overlap with a seed
// vocabulary and normalises with a softmax. Labels without seeds match on
// the label word itself.
type KeywordZeroShot struct{}

func (KeywordZeroShot) ZeroShot(_ context.Context, text string, labels []string) (conversation.ZeroShotResult, error) {
	counts := map[string]int{}
	for _, t := range Tokens(text) {
		counts[t]++
	}

	type scored struct {
		label string
		raw   float64
	}
	items := make([]scored, len(labels))
	for i, l := range labels {
		hits := counts[Normalize(l)]
		for _, w := range seedVocabulary[Normalize(l)] {
			hits += counts[w]
		}
		items[i] = scored{label: l, raw: float64(hits)}
	}

	max := 0.0
	for _, it := range items {
		max = math.Max(max, it.raw)
	}
	var sum float64
	exp := make([]float64, len(items))
	for i, it := range items {
		exp[i] = math.Exp(it.raw - max)
		sum += exp[i]
	}
	res := conversation.ZeroShotResult{Labels: make([]string, len(items)), Scores: make([]float64, len(items))}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return items[idx[a]].raw > items[idx[b]].raw })
	for pos, i := range idx {
		res.Labels[pos] = items[i].label
		res.Scores[pos] = exp[i] / sum
	}
	return res, nil
}
