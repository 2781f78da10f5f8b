package nlp

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"unicode/utf8"
)

// LDA trains a latent Dirichlet allocation model with collapsed Gibbs sampling.
type LDA struct {
	Topics     int
	Alpha      float64
	Beta       float64
	Iterations int
	// TopWords is how many words each printed topic carries.
	TopWords int
	Seed     int64
}

// WeightedWord is a word and its probability within a topic.
type WeightedWord struct {
	Word   string
	Weight float64
}

// LDATopic holds the top words of one topic, most probable first.
type LDATopic struct {
	ID    int
	Words []WeightedWord
}

// String prints the topic the way gensim's print_topics does.
func (t LDATopic) String() string {
	parts := make([]string, len(t.Words))
	for i, w := range t.Words {
		parts[i] = fmt.Sprintf("%.3f*%q", w.Weight, w.Word)
	}
	return strings.Join(parts, " + ")
}

func (m LDA) withDefaults() LDA {
	if m.Topics <= 0 {
		m.Topics = 5
	}
	if m.Alpha <= 0 {
		m.Alpha = 1.0 / float64(m.Topics)
	}
	if m.Beta <= 0 {
		m.Beta = 0.01
	}
	if m.Iterations <= 0 {
		m.Iterations = 200
	}
	if m.TopWords <= 0 {
		m.TopWords = 10
	}
	return m
}

// Fit trains on docs (each a token list) and returns Topics topics.
// An empty vocabulary yields no topics.
func (m LDA) Fit(docs [][]string) []LDATopic {
	m = m.withDefaults()

	vocab := map[string]int{}
	words := make([]string, 0)
	corpus := make([][]int, 0, len(docs))
	for _, d := range docs {
		ids := make([]int, 0, len(d))
		for _, w := range d {
			id, ok := vocab[w]
			if !ok {
				id = len(words)
				vocab[w] = id
				words = append(words, w)
			}
			ids = append(ids, id)
		}
		if len(ids) > 0 {
			corpus = append(corpus, ids)
		}
	}
	V, K := len(words), m.Topics
	if V == 0 {
		return []LDATopic{}
	}

	rng := rand.New(rand.NewPCG(uint64(m.Seed), 0))
	nDK := make([][]int, len(corpus))
	nKW := make([][]int, K)
	nK := make([]int, K)
	for k := range nKW {
		nKW[k] = make([]int, V)
	}
	z := make([][]int, len(corpus))
	for d, doc := range corpus {
		nDK[d] = make([]int, K)
		z[d] = make([]int, len(doc))
		for i, w := range doc {
			k := rng.IntN(K)
			z[d][i] = k
			nDK[d][k]++
			nKW[k][w]++
			nK[k]++
		}
	}

	p := make([]float64, K)
	vBeta := float64(V) * m.Beta
	for it := 0; it < m.Iterations; it++ {
		for d, doc := range corpus {
			for i, w := range doc {
				k := z[d][i]
				nDK[d][k]--
				nKW[k][w]--
				nK[k]--

				var total float64
				for t := 0; t < K; t++ {
					p[t] = (float64(nDK[d][t]) + m.Alpha) * (float64(nKW[t][w]) + m.Beta) / (float64(nK[t]) + vBeta)
					total += p[t]
				}
				u := rng.Float64() * total
				k = K - 1
				for t := 0; t < K; t++ {
					u -= p[t]
					if u <= 0 {
						k = t
						break
					}
				}

				z[d][i] = k
				nDK[d][k]++
				nKW[k][w]++
				nK[k]++
			}
		}
	}

	topics := make([]LDATopic, K)
	for k := 0; k < K; k++ {
		ww := make([]WeightedWord, V)
		for w := 0; w < V; w++ {
			ww[w] = WeightedWord{Word: words[w], Weight: (float64(nKW[k][w]) + m.Beta) / (float64(nK[k]) + vBeta)}
		}
		sort.SliceStable(ww, func(i, j int) bool { return ww[i].Weight > ww[j].Weight })
		if len(ww) > m.TopWords {
			ww = ww[:m.TopWords]
		}
		topics[k] = LDATopic{ID: k, Words: ww}
	}
	return topics
}

// TopicDocuments splits text into sentence documents of content tokens
// longer than 3 runes, ready for Fit.
func TopicDocuments(text string) [][]string {
	sentences := Sentences(text)
	docs := make([][]string, 0, len(sentences))
	for _, s := range sentences {
		doc := make([]string, 0)
		for _, t := range ContentTokens(s) {
			if utf8.RuneCountInString(t) > 3 {
				doc = append(doc, t)
			}
		}
		if len(doc) > 0 {
			docs = append(docs, doc)
		}
	}
	return docs
}
