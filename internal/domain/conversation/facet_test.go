package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
)

func TestFailureFrom(t *testing.T) {
	tests := []struct {
		err  error
		want FailureReason
	}{
		{fmt.Errorf("x: %w", ai.ErrQuotaExceeded), ReasonQuotaExceeded},
		{fmt.Errorf("x: %w", ai.ErrUpstream), ReasonUpstream},
		{fmt.Errorf("x: %w", ai.ErrUnparseable), ReasonUnparseable},
		{fmt.Errorf("x: %w", ErrInvalidInput), ReasonInvalidInput},
		{errors.New("what"), ReasonInternal},
	}
	for _, tt := range tests {
		if got := FailureFrom(tt.err); got.Reason != tt.want || got.Message != tt.err.Error() {
			t.Errorf("FailureFrom(%v) = %+v, want %s", tt.err, got, tt.want)
		}
	}
}

func TestFacetJSON(t *testing.T) {
	ok, err := json.Marshal(Succeed([]string{"a"}))
	if err != nil {
		t.Fatal(err)
	}
	if string(ok) != `{"status":"ok","result":["a"]}` {
		t.Fatalf("unexpected ok json %s", ok)
	}

	failed, err := json.Marshal(Fail[[]string](ReasonUpstream, "boom"))
	if err != nil {
		t.Fatal(err)
	}
	if string(failed) != `{"status":"failed","failure":{"reason":"upstream","message":"boom"}}` {
		t.Fatalf("unexpected failed json %s", failed)
	}

	var back Facet[[]string]
	if err := json.Unmarshal(failed, &back); err != nil {
		t.Fatal(err)
	}
	if back.OK() || back.Failure().Reason != ReasonUpstream || back.Ptr() != nil {
		t.Fatalf("failure lost in round trip: %+v", back)
	}
	if err := json.Unmarshal([]byte(`{"status":"maybe"}`), &back); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestReportJSONFlattensListFacets(t *testing.T) {
	r := Report{
		ID:            "r1",
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Transcription: "hello",
		ConversationAnalysis: ConversationAnalysis{
			Sentiment: Succeed(SentimentResult{}),
			Dynamics:  Succeed(DynamicsResult{}),
			Topics:    Fail[TopicModelResult](ReasonInternal, "x"),
		},
		Facts:       Succeed([]FactRecord{{Claim: "a"}, {Claim: "b"}}),
		Topics:      Fail[[]Topic](ReasonUnparseable, "bad reply"),
		Suggestions: Succeed[[]Suggestion](nil),
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]json.RawMessage
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"id", "created_at", "transcription", "conversation_analysis", "facts", "topics", "suggestions", "failures"} {
		if _, ok := got[k]; !ok {
			t.Fatalf("missing key %s in %s", k, b)
		}
	}
	if string(got["topics"]) != "[]" || string(got["suggestions"]) != "[]" {
		t.Fatalf("failed or nil lists should be empty arrays: %s", b)
	}
	if !strings.Contains(string(got["failures"]), `"topics":{"reason":"unparseable"`) {
		t.Fatalf("unexpected failures %s", got["failures"])
	}
	var facts []FactRecord
	if err := json.Unmarshal(got["facts"], &facts); err != nil || len(facts) != 2 {
		t.Fatalf("unexpected facts %s", got["facts"])
	}
}
