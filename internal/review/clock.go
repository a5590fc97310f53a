package review

import "time"

// Clock provides the current time. Handlers take a Clock instead of
// calling time.Now so scheduling decisions are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock { return fixedClock(t) }
