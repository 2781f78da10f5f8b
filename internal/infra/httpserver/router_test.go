package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	appconv "github.com/bryanwahyu/podcast-assistant/internal/application/conversation"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/factcheck"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/suggest"
	"github.com/bryanwahyu/podcast-assistant/internal/infra/transcribe"
	"github.com/bryanwahyu/podcast-assistant/internal/middleware"
)

type fixedTopics []string

func (f fixedTopics) TrackTopics(context.Context, conversation.Transcript) conversation.Facet[[]conversation.Topic] {
	out := make([]conversation.Topic, len(f))
	for i, l := range f {
		out[i] = conversation.Topic{Label: l}
	}
	return conversation.Succeed(out)
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(context.Context, conversation.Transcript) conversation.ConversationAnalysis {
	return conversation.ConversationAnalysis{
		Sentiment: conversation.Succeed(conversation.SentimentResult{LexiconPolarity: 0.2}),
		Dynamics:  conversation.Succeed(conversation.DynamicsResult{}),
		Topics:    conversation.Fail[conversation.TopicModelResult](conversation.ReasonUpstream, "inference server down"),
	}
}

type failingTranscriber struct{ err error }

func (f failingTranscriber) Transcribe(context.Context, []byte) (conversation.Transcript, error) {
	return "", f.err
}

type panickingProcessor struct{}

func (panickingProcessor) Process(context.Context, []byte) (*conversation.Report, error) {
	panic("kaboom")
}

func newTestRouter(tr conversation.Transcriber, opts Options) http.Handler {
	svc := appconv.NewService(tr, stubAnalyzer{}, factcheck.Mock{}, fixedTopics{"ai", "podcast", "growth"}, suggest.Template{}, zap.NewNop())
	opts.Logger = zap.NewNop()
	return NewRouter(svc, opts)
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/process_audio", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProcessAudioEndToEnd(t *testing.T) {
	h := newTestRouter(transcribe.Mock{}, Options{})
	audio := base64.StdEncoding.EncodeToString([]byte("fake mp3 bytes"))
	rec := post(h, fmt.Sprintf(`{"audio":%q}`, audio))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		ID                   string                     `json:"id"`
		Transcription        string                     `json:"transcription"`
		Facts                []conversation.FactRecord  `json:"facts"`
		Topics               []conversation.Topic       `json:"topics"`
		Suggestions          []conversation.Suggestion  `json:"suggestions"`
		ConversationAnalysis map[string]json.RawMessage `json:"conversation_analysis"`
		Failures             map[string]any             `json:"failures"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID == "" || got.Transcription != transcribe.MockText {
		t.Fatalf("unexpected id/transcription %q %q", got.ID, got.Transcription)
	}
	if len(got.Facts) != 2 || len(got.Topics) != 3 || len(got.Suggestions) != 3 {
		t.Fatalf("facts=%d topics=%d suggestions=%d", len(got.Facts), len(got.Topics), len(got.Suggestions))
	}
	if !strings.Contains(got.Suggestions[0].Text, "ai") {
		t.Fatalf("suggestion should mention the first topic: %q", got.Suggestions[0].Text)
	}
	for _, k := range []string{"sentiment_analysis", "dynamics_analysis", "topic_analysis"} {
		if _, ok := got.ConversationAnalysis[k]; !ok {
			t.Fatalf("missing %s", k)
		}
	}
	if !strings.Contains(string(got.ConversationAnalysis["topic_analysis"]), `"status":"failed"`) {
		t.Fatalf("topic analysis should carry its failure: %s", got.ConversationAnalysis["topic_analysis"])
	}
	if len(got.Failures) != 0 {
		t.Fatalf("unexpected list failures %v", got.Failures)
	}
}

func TestProcessAudioErrors(t *testing.T) {
	tests := []struct {
		name string
		tr   conversation.Transcriber
		body string
		want int
	}{
		{"transcription fails", failingTranscriber{fmt.Errorf("%w: 503", ai.ErrUpstream)}, `{"audio":"abcd"}`, http.StatusInternalServerError},
		{"quota exceeded", failingTranscriber{fmt.Errorf("%w: 429", ai.ErrQuotaExceeded)}, `{"audio":"abcd"}`, http.StatusTooManyRequests},
		{"missing audio", transcribe.Mock{}, `{}`, http.StatusBadRequest},
		{"bad json", transcribe.Mock{}, `{"audio":`, http.StatusBadRequest},
		{"empty body", transcribe.Mock{}, ``, http.StatusBadRequest},
		{"whitespace audio", transcribe.Mock{}, `{"audio":"   "}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newTestRouter(tt.tr, Options{}), tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if _, ok := body["error"]; !ok || len(body) != 1 {
				t.Fatalf("expected only an error key, got %v", body)
			}
		})
	}
}

func TestAudioSizeLimit(t *testing.T) {
	h := newTestRouter(transcribe.Mock{}, Options{MaxAudioChars: 8})
	tests := []struct {
		name  string
		audio string
		want  int
	}{
		{"within limit", "abcdefgh", http.StatusOK},
		{"field over limit", "abcdefghijkl", http.StatusRequestEntityTooLarge},
		{"body over limit", strings.Repeat("a", 4096), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, fmt.Sprintf(`{"audio":%q}`, tt.audio))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusOK && !strings.Contains(rec.Body.String(), `"error"`) {
				t.Fatalf("expected JSON error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestPanicBecomesJSON500(t *testing.T) {
	h := NewRouter(panickingProcessor{}, Options{Logger: zap.NewNop()})
	rec := post(h, `{"audio":"abcd"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) || strings.Contains(rec.Body.String(), "transcription") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRateLimited(t *testing.T) {
	h := newTestRouter(transcribe.Mock{}, Options{RateLimiter: middleware.NewRateLimiter(1, 0)})
	if rec := post(h, `{"audio":"abcd"}`); rec.Code != http.StatusOK {
		t.Fatalf("first request got %d", rec.Code)
	}
	if rec := post(h, `{"audio":"abcd"}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request got %d", rec.Code)
	}
}

func TestStaticAndOps(t *testing.T) {
	h := newTestRouter(transcribe.Mock{}, Options{})
	tests := []struct {
		path     string
		want     int
		contains string
	}{
		{"/", http.StatusOK, "Podcast Assistant"},
		{"/static/app.js", http.StatusOK, "/process_audio"},
		{"/healthz/live", http.StatusOK, "ok"},
		{"/healthz/ready", http.StatusOK, "ready"},
		{"/health", http.StatusOK, "healthy"},
		{"/metrics", http.StatusOK, "requests_total"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want || !strings.Contains(rec.Body.String(), tt.contains) {
				t.Fatalf("GET %s = %d %q", tt.path, rec.Code, rec.Body.String())
			}
		})
	}
}
