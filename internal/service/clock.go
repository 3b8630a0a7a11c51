package service

import "time"

// Clock supplies the current time. Expiry logic takes it injected so tests
// can drive the 24h vote window without waiting on the wall clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }
