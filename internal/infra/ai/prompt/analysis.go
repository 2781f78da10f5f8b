package prompt

import (
	"fmt"
	"strings"
)

// SentimentSystem asks for a single JSON object with the sentiment schema.
func SentimentSystem() string {
	return `You are a sentiment and emotion analyzer. Provide a detailed analysis of the given text, including the overall sentiment, specific emotions detected, and their intensities.

Respond with one valid JSON object only (no markdown, no code fences) with keys:
{
  "overall_sentiment": "<positive|negative|neutral|mixed>",
  "emotions": {"<emotion>": <intensity 0..1>},
  "explanation": "<string>"
}`
}

func SentimentUser(text string) string {
	return fmt.Sprintf("Analyze the sentiment and emotions in this text: %s", text)
}

// DynamicsSystem asks for a single JSON object describing conversation dynamics.
func DynamicsSystem() string {
	return `You are an expert in conversation analysis. Analyze the given text for conversation dynamics, including turn-taking patterns, interruptions, topic coherence, overall flow, and speaker engagement.

Respond with one valid JSON object only (no markdown, no code fences) with keys:
turn_taking, interruptions, topic_coherence, flow, speaker_engagement, explanation.`
}

func DynamicsUser(text string) string {
	return fmt.Sprintf("Analyze the conversation dynamics in this text: %s", text)
}

// ExtractJSON strips markdown code fences some models wrap around JSON.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}
	return strings.TrimSpace(content)
}
