package availability

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrInvalidRange     = apperror.New(http.StatusBadRequest, "check-in must be before check-out")
	ErrInvalidDate      = apperror.New(http.StatusBadRequest, "dates must use the YYYY-MM-DD format")
	ErrPropertyNotFound = apperror.New(http.StatusNotFound, "property not found")
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Interval is a half-open range of calendar dates [Start, End).
// A stay checking out on day X does not overlap a stay checking in on day X.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval truncates both bounds to their calendar date and requires
// start < end.
func NewInterval(start, end time.Time) (Interval, error) {
	i := Interval{Start: DateOf(start), End: DateOf(end)}
	if !i.Start.Before(i.End) {
		return Interval{}, ErrInvalidRange
	}
	return i, nil
}

// ParseInterval parses two YYYY-MM-DD dates into an Interval.
func ParseInterval(start, end string) (Interval, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Interval{}, ErrInvalidDate
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Interval{}, ErrInvalidDate
	}
	return NewInterval(s, e)
}

// DateOf drops the time of day, keeping the wall-clock date of t as UTC midnight.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether [a1,b1) and [a2,b2) intersect: a1 < b2 && a2 < b1.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Nights is the number of nights covered by the interval.
func (i Interval) Nights() int {
	return int(i.End.Sub(i.Start).Hours() / 24)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(DateLayout), i.End.Format(DateLayout))
}

type intervalJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (i Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(intervalJSON{
		Start: i.Start.Format(DateLayout),
		End:   i.End.Format(DateLayout),
	})
}

func (i *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseInterval(raw.Start, raw.End)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Reservation is an approved booking occupying an interval.
type Reservation struct {
	BookingID string
	GuestID   string
	Interval  Interval
}

// Block is a host-defined unavailable interval. Blocks may overlap each other.
type Block struct {
	Interval Interval
	Reason   string
}

type ConflictKind string

const (
	ConflictBooking ConflictKind = "booking"
	ConflictBlocked ConflictKind = "blocked"
)

// Conflict explains why a candidate interval is unavailable.
type Conflict struct {
	Kind      ConflictKind `json:"kind"`
	BookingID string       `json:"booking_id,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	Interval  Interval     `json:"interval"`
}

// Snapshot is the occupancy of one property as read from the store.
type Snapshot struct {
	PropertyID string
	Approved   []Reservation
	Blocked    []Block
}

// Conflicts lists every approved reservation and block overlapping candidate.
// Pending, rejected and cancelled bookings are never part of a snapshot.
func (s *Snapshot) Conflicts(candidate Interval) []Conflict {
	var out []Conflict
	for _, r := range s.Approved {
		if r.Interval.Overlaps(candidate) {
			out = append(out, Conflict{
				Kind:      ConflictBooking,
				BookingID: r.BookingID,
				Interval:  r.Interval,
			})
		}
	}
	for _, b := range s.Blocked {
		if b.Interval.Overlaps(candidate) {
			out = append(out, Conflict{
				Kind:     ConflictBlocked,
				Reason:   b.Reason,
				Interval: b.Interval,
			})
		}
	}
	return out
}

// IsAvailable reports whether candidate overlaps nothing in the snapshot.
func (s *Snapshot) IsAvailable(candidate Interval) bool {
	return len(s.Conflicts(candidate)) == 0
}
