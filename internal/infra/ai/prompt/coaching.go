package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
)

// The three prompts below prescribe the line grammar parsed by package reply.

func FactCheckSystem() string {
	return `You are an expert fact-checker. Analyze the given text and provide a detailed fact-check report. For each claim, determine its accuracy, provide evidence or counterevidence, and rate the claim's importance in the context of the conversation.

Format every claim exactly as four lines, in this order, with no other text:
Claim: <the claim>
Accuracy: <accurate|inaccurate|partially accurate|unverifiable>
Evidence: <evidence or counterevidence>
Importance: <high|medium|low>`
}

func FactCheckUser(text string) string {
	return fmt.Sprintf("Fact-check the following text and provide a detailed report:\n\n%s", text)
}

func TopicSystem() string {
	return `You are a podcast topic analyst. Identify the main topics discussed in the text.

Format every topic exactly as three lines, in this order, with no other text:
Topic: <short topic label>
Summary: <one sentence summary>
Relevance: <score from 1 to 10>`
}

func TopicUser(text string) string {
	return fmt.Sprintf("Identify the main topics in this podcast conversation:\n\n%s", text)
}

func SuggestionSystem() string {
	return `You are a podcast coach. Based on the topics, sentiment and conversation dynamics you are given, suggest how the hosts could improve the conversation or where to take it next.

Format every suggestion exactly as two lines, in this order, with no other text:
Suggestion: <one actionable suggestion>
Context: <why this suggestion fits the conversation>`
}

// SuggestionUser embeds topics, sentiment and dynamics into one prompt.
func SuggestionUser(in conversation.SuggestionInput) string {
	var b strings.Builder
	b.WriteString("Topics discussed:\n")
	if len(in.Topics) == 0 {
		b.WriteString("- (none identified)\n")
	}
	for _, t := range in.Topics {
		if t.Relevance != "" {
			fmt.Fprintf(&b, "- %s (relevance: %s)\n", t.Label, t.Relevance)
		} else {
			fmt.Fprintf(&b, "- %s\n", t.Label)
		}
	}
	if s := in.Sentiment; s != nil {
		fmt.Fprintf(&b, "\nSentiment: polarity %.2f, classifier %s (%.2f)", s.LexiconPolarity, s.Classifier.Label, s.Classifier.Score)
		if len(s.ModelAnalysis.OverallSentiment) > 0 {
			fmt.Fprintf(&b, ", overall %s", string(s.ModelAnalysis.OverallSentiment))
		}
		b.WriteString("\n")
	}
	if d := in.Dynamics; d != nil {
		m := d.BasicMetrics
		fmt.Fprintf(&b, "\nDynamics: %d turns, %.1f words per sentence, %.1f characters per word\n",
			m.TurnTaking, m.AvgSentenceLength, m.AvgWordLength)
		if len(d.ModelAnalysis.Explanation) > 0 {
			fmt.Fprintf(&b, "Dynamics notes: %s\n", string(d.ModelAnalysis.Explanation))
		}
	}
	b.WriteString("\nGenerate coaching suggestions for the podcast hosts.")
	return b.String()
}
