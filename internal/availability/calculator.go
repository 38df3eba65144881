package availability

import (
	"context"
	"time"
)

// Reader loads occupancy from the store. A nil window loads everything;
// otherwise only entries overlapping the window are returned.
type Reader interface {
	Snapshot(ctx context.Context, propertyID string, window *Interval) (*Snapshot, error)
}

// Calculator answers availability queries. It never caches: every call
// re-derives availability from booking and block records.
type Calculator struct {
	reader Reader
}

func NewCalculator(reader Reader) *Calculator {
	return &Calculator{reader: reader}
}

// IsAvailable reports whether [checkIn, checkOut) is free for the property.
func (c *Calculator) IsAvailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	conflicts, err := c.ConflictingBookings(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// ConflictingBookings lists the approved bookings and blocks overlapping
// [checkIn, checkOut).
func (c *Calculator) ConflictingBookings(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]Conflict, error) {
	candidate, err := NewInterval(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	snap, err := c.reader.Snapshot(ctx, propertyID, &candidate)
	if err != nil {
		return nil, err
	}
	return snap.Conflicts(candidate), nil
}

// Calendar returns every approved reservation and block of the property.
func (c *Calculator) Calendar(ctx context.Context, propertyID string) (*Snapshot, error) {
	return c.reader.Snapshot(ctx, propertyID, nil)
}
