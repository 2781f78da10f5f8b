// Package hub talks to a Hugging-Face-style inference server that hosts the
// sentiment and zero-shot classification pipelines.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
	"github.com/bryanwahyu/podcast-assistant/internal/domain/conversation"
)

const (
	DefaultSentimentModel = "distilbert-base-uncased-finetuned-sst-2-english"
	DefaultZeroShotModel  = "facebook/bart-large-mnli"
)

type Client struct {
	baseURL        string
	token          string
	sentimentModel string
	zeroShotModel  string
	c              *http.Client
}

type Options struct {
	BaseURL        string
	Token          string
	SentimentModel string
	ZeroShotModel  string
	Timeout        time.Duration
}

func NewClient(opts Options) *Client {
	if opts.SentimentModel == "" {
		opts.SentimentModel = DefaultSentimentModel
	}
	if opts.ZeroShotModel == "" {
		opts.ZeroShotModel = DefaultZeroShotModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		token:          opts.Token,
		sentimentModel: opts.SentimentModel,
		zeroShotModel:  opts.ZeroShotModel,
		c:              &http.Client{Timeout: opts.Timeout},
	}
}

type inferenceReq struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Classify runs the sentiment pipeline and returns the best label.
func (h *Client) Classify(ctx context.Context, text string) (conversation.ClassifierScore, error) {
	body, err := h.post(ctx, h.sentimentModel, inferenceReq{Inputs: text})
	if err != nil {
		return conversation.ClassifierScore{}, err
	}

	// the pipeline answers [[{label,score}...]] for one input, some servers flatten it
	var nested [][]conversation.ClassifierScore
	var flat []conversation.ClassifierScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		flat = nested[0]
	} else if err := json.Unmarshal(body, &flat); err != nil {
		return conversation.ClassifierScore{}, fmt.Errorf("%w: sentiment decode: %w", ai.ErrUnparseable, err)
	}
	if len(flat) == 0 {
		return conversation.ClassifierScore{}, fmt.Errorf("%w: sentiment pipeline returned no labels", ai.ErrUpstream)
	}
	best := flat[0]
	for _, s := range flat[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best, nil
}

// ZeroShot classifies text against the candidate labels.
func (h *Client) ZeroShot(ctx context.Context, text string, labels []string) (conversation.ZeroShotResult, error) {
	body, err := h.post(ctx, h.zeroShotModel, inferenceReq{
		Inputs:     text,
		Parameters: map[string]any{"candidate_labels": labels},
	})
	if err != nil {
		return conversation.ZeroShotResult{}, err
	}
	var out conversation.ZeroShotResult
	if err := json.Unmarshal(body, &out); err != nil {
		return conversation.ZeroShotResult{}, fmt.Errorf("%w: zero-shot decode: %w", ai.ErrUnparseable, err)
	}
	if len(out.Labels) != len(out.Scores) {
		return conversation.ZeroShotResult{}, fmt.Errorf("%w: zero-shot returned %d labels and %d scores", ai.ErrUnparseable, len(out.Labels), len(out.Scores))
	}
	sortByScore(&out)
	return out, nil
}

// Ping checks that the inference server answers at all.
func (h *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := h.c.Do(req)
	if err != nil {
		return fmt.Errorf("%w: inference ping: %w", ai.ErrUpstream, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: inference ping: %s", ai.ErrUpstream, resp.Status)
	}
	return nil
}

func (h *Client) post(ctx context.Context, model string, in inferenceReq) ([]byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/models/"+model, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ai.ErrUpstream, model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s read: %w", ai.ErrUpstream, model, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s: %s", ai.ErrQuotaExceeded, model, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s %s: %s", ai.ErrUpstream, model, resp.Status, string(body))
	}
	return body, nil
}

func sortByScore(r *conversation.ZeroShotResult) {
	idx := make([]int, len(r.Labels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return r.Scores[idx[a]] > r.Scores[idx[b]] })
	labels := make([]string, len(idx))
	scores := make([]float64, len(idx))
	for pos, i := range idx {
		labels[pos] = r.Labels[i]
		scores[pos] = r.Scores[i]
	}
	r.Labels, r.Scores = labels, scores
}
