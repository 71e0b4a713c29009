// Package clock provides an injectable time source so lifecycle logic
// (OTP expiry, lockout windows, token validity) is deterministic in tests.
package clock

import "time"

// Clock yields the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the wall-clock implementation used in production.
func System() Clock { return systemClock{} }
