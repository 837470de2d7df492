package sales

import (
	"context"
	"time"
)

// Slot is a durable named key-value cell holding the serialized ledger.
// Read returns nil data when the slot has never been written.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// Today returns the calendar day of clock.
func Today(clock Clock) Date {
	if clock == nil {
		return DateOf(time.Now())
	}
	return DateOf(clock.Now())
}
