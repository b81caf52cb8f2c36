package clock

import "time"

// Clock supplies the current instant. All readings are UTC.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System returns the wall clock.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a function into a Clock.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f().UTC()
}

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
