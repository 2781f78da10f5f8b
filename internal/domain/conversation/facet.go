package conversation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
)

// FailureReason classifies why a facet could not be produced.
type FailureReason string

const (
	ReasonUpstream      FailureReason = "upstream"
	ReasonQuotaExceeded FailureReason = "quota_exceeded"
	ReasonUnparseable   FailureReason = "unparseable"
	ReasonInvalidInput  FailureReason = "invalid_input"
	ReasonInternal      FailureReason = "internal"
)

// ErrInvalidInput is returned for requests that cannot be analyzed at all.
var ErrInvalidInput = errors.New("invalid input")

// Failure is the structured reason carried by a failed facet.
type Failure struct {
	Reason  FailureReason `json:"reason"`
	Message string        `json:"message"`
}

func (f *Failure) Error() string { return fmt.Sprintf("%s: %s", f.Reason, f.Message) }

// FailureFrom maps an error to a Failure using the domain sentinels.
func FailureFrom(err error) *Failure {
	reason := ReasonInternal
	switch {
	case errors.Is(err, ai.ErrQuotaExceeded):
		reason = ReasonQuotaExceeded
	case errors.Is(err, ai.ErrUnparseable):
		reason = ReasonUnparseable
	case errors.Is(err, ai.ErrUpstream):
		reason = ReasonUpstream
	case errors.Is(err, ErrInvalidInput):
		reason = ReasonInvalidInput
	}
	return &Failure{Reason: reason, Message: err.Error()}
}

// Facet is either a success value or a structured failure, never both.
type Facet[T any] struct {
	value   T
	failure *Failure
}

func Succeed[T any](v T) Facet[T] { return Facet[T]{value: v} }

func Fail[T any](reason FailureReason, message string) Facet[T] {
	return Facet[T]{failure: &Failure{Reason: reason, Message: message}}
}

// FailWith builds a failed facet from an error.
func FailWith[T any](err error) Facet[T] { return Facet[T]{failure: FailureFrom(err)} }

func (f Facet[T]) OK() bool { return f.failure == nil }

func (f Facet[T]) Value() (T, bool) { return f.value, f.failure == nil }

func (f Facet[T]) Failure() *Failure { return f.failure }

// Ptr returns a pointer to the value, or nil when the facet failed.
func (f Facet[T]) Ptr() *T {
	if f.failure != nil {
		return nil
	}
	v := f.value
	return &v
}

type facetJSON[T any] struct {
	Status  string   `json:"status"`
	Result  *T       `json:"result,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

func (f Facet[T]) MarshalJSON() ([]byte, error) {
	if f.failure != nil {
		return json.Marshal(facetJSON[T]{Status: "failed", Failure: f.failure})
	}
	v := f.value
	return json.Marshal(facetJSON[T]{Status: "ok", Result: &v})
}

func (f *Facet[T]) UnmarshalJSON(b []byte) error {
	var raw facetJSON[T]
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Status {
	case "ok":
		*f = Facet[T]{}
		if raw.Result != nil {
			f.value = *raw.Result
		}
	case "failed":
		if raw.Failure == nil {
			return fmt.Errorf("failed facet without failure")
		}
		*f = Facet[T]{failure: raw.Failure}
	default:
		return fmt.Errorf("unknown facet status %q", raw.Status)
	}
	return nil
}
