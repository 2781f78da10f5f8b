// Package nlp holds the local text routines: tokenizing, stopwords, lexicon
// polarity, keyword counting, zero-shot keyword scoring and LDA.
package nlp

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]*(\s+|$)`)
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)
)

// Normalize applies NFKC and lowercases the text.
func Normalize(text string) string {
	text = strings.ReplaceAll(norm.NFKC.String(text), "’", "'")
	return cases.Lower(language.English).String(text)
}

// Sentences splits on terminal punctuation followed by space or end of text.
func Sentences(text string) []string {
	text = strings.TrimSpace(norm.NFKC.String(text))
	if text == "" {
		return nil
	}
	out := make([]string, 0)
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[last:loc[1]]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Words returns word tokens in order. Punctuation is dropped; contractions
// such as "don't" stay a single token.
func Words(text string) []string {
	return wordPattern.FindAllString(norm.NFKC.String(text), -1)
}

// Tokens is Words over the normalized (lowercased) text.
func Tokens(text string) []string {
	return wordPattern.FindAllString(Normalize(text), -1)
}

// IsAlnum reports whether every rune is a letter or digit.
func IsAlnum(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContentTokens lowercases, tokenizes and drops stopwords and non-alphanumeric tokens.
func ContentTokens(text string) []string {
	toks := Tokens(text)
	out := toks[:0]
	for _, t := range toks {
		if IsAlnum(t) && !IsStopword(t) {
			out = append(out, t)
		}
	}
	return out
}

// TopTokens returns the n most frequent content tokens; ties keep first appearance.
func TopTokens(text string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	counts := map[string]int{}
	order := make([]string, 0)
	for _, t := range ContentTokens(text) {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > n {
		order = order[:n]
	}
	return order
}
