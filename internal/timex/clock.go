package timex

import "time"

// Clock abstracts time.Now so expiry, window, and lockout boundaries are
// deterministically testable. Production code uses RealClock; tests inject
// a fake and advance it instead of sleeping.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
