package topics

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
)

type fakeChat struct {
	reply string
	err   error
}

func (f fakeChat) Complete(context.Context, ai.ChatRequest) (string, error) { return f.reply, f.err }

func TestLocal(t *testing.T) {
	text := conversation.Transcript("AI and the podcast. AI for podcast growth. AI, growth, podcast, growth!")
	got, ok := Local{}.TrackTopics(context.Background(), text).Value()
	if !ok {
		t.Fatal("local tracker should not fail")
	}
	want := []conversation.Topic{{Label: "ai"}, {Label: "podcast"}, {Label: "growth"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestLocalEmpty(t *testing.T) {
	got, _ := Local{}.TrackTopics(context.Background(), "").Value()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestHosted(t *testing.T) {
	chat := fakeChat{reply: "Topic: AI tooling\nSummary: Editing with AI.\nRelevance: 9\n\nTopic: Audience growth\nRelevance: 7"}
	got, ok := NewHosted(chat, zap.NewNop()).TrackTopics(context.Background(), "t").Value()
	if !ok {
		t.Fatal("unexpected failure")
	}
	want := []conversation.Topic{
		{Label: "AI tooling", Summary: "Editing with AI.", Relevance: "9"},
		{Label: "Audience growth", Relevance: "7"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestHostedFailure(t *testing.T) {
	facet := NewHosted(fakeChat{err: ai.ErrUpstream}, zap.NewNop()).TrackTopics(context.Background(), "t")
	if facet.OK() || facet.Failure().Reason != conversation.ReasonUpstream {
		t.Fatalf("unexpected facet %#v", facet.Failure())
	}
}
