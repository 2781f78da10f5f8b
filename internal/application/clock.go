package application

import (
	"time"

	"github.com/google/uuid"
)

// Clock stamps reports; tests pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock pakai time.Now() dalam UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns T.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// NewID returns a random report id.
func NewID() string { return uuid.NewString() }
