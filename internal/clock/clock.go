package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall-clock reads so audit timestamps and artifact names are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// New returns the UTC system clock.
func New() Clock { return systemClock{} }

// Fixed always reports the same instant, in UTC.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f).UTC() }

var Module = fx.Module("clock",
	fx.Provide(New),
)
