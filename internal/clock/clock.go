package clock

import "time"

// Clock abstracts the current time so status derivation and history
// reconstruction can be tested with fixed timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the real wall-clock time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
