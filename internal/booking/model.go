package booking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/eligibility"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "booking not found")
	ErrCheckInPast         = apperror.New(http.StatusBadRequest, "check-in cannot be in the past")
	ErrInvalidGuestCount   = apperror.New(http.StatusBadRequest, "guest count must be between 1 and the property's maximum")
	ErrOwnProperty         = apperror.New(http.StatusBadRequest, "hosts cannot book their own property")
	ErrPropertyInactive    = apperror.New(http.StatusBadRequest, "property is not accepting bookings")
	ErrMessageTooLong      = apperror.New(http.StatusBadRequest, "message is too long")
	ErrResponseRequired    = apperror.New(http.StatusBadRequest, "a response message is required when rejecting")
	ErrInvalidDecision     = apperror.New(http.StatusBadRequest, "decision must be approve or reject")
	ErrInvalidTransition   = apperror.New(http.StatusBadRequest, "invalid booking status transition")
	ErrCancelAfterCheckIn  = apperror.New(http.StatusBadRequest, "approved bookings can only be cancelled before check-in")
	ErrPermissionDenied    = apperror.New(http.StatusForbidden, "permission denied")
	ErrEligibilityDenied   = apperror.NewKind(http.StatusForbidden, apperror.KindEligibilityDenied, "not eligible to book this property")
	ErrConflict            = apperror.NewKind(http.StatusConflict, apperror.KindConflict, "requested dates are not available")
	ErrConcurrencyConflict = apperror.NewKind(http.StatusConflict, apperror.KindConcurrencyConflict, "booking was modified concurrently, please retry")
)

const MaxMessageLen = 2000

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// Rejected, cancelled and completed are terminal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func transitionError(from, to Status) error {
	return ErrInvalidTransition.WithMessage(fmt.Sprintf("cannot change a %s booking to %s", from, to))
}

// ConnectionSnapshot records how the guest related to the host when the
// request was made, so hosts can review it later.
type ConnectionSnapshot struct {
	Degree          int              `json:"degree"`
	ClosenessScore  int              `json:"closeness_score"`
	MutualFriends   int              `json:"mutual_friends"`
	SharedEvents    int              `json:"shared_events"`
	Interactions    int              `json:"interactions"`
	EligibilityCode eligibility.Code `json:"eligibility_code"`
}

func newConnectionSnapshot(d *eligibility.Decision) *ConnectionSnapshot {
	snap := &ConnectionSnapshot{
		Degree:          int(d.Degree()),
		ClosenessScore:  d.ClosenessScore(),
		EligibilityCode: d.Code,
	}
	if d.Connection != nil {
		snap.MutualFriends = d.Connection.MutualFriends
		snap.SharedEvents = d.Connection.SharedEvents
		snap.Interactions = d.Connection.Interactions
	}
	return snap
}

// Booking is a guest's request to stay at a property over [CheckIn, CheckOut).
type Booking struct {
	ID                 string
	PropertyID         string
	HostID             string // owner of the property, read-only
	GuestID            string
	CheckIn            time.Time
	CheckOut           time.Time
	GuestCount         int
	Message            string
	Status             Status
	HostResponse       *string
	TotalPrice         int64
	ConnectionSnapshot *ConnectionSnapshot
	CreatedAt          time.Time
	UpdatedAt          time.Time
	RespondedAt        *time.Time
}

func (b *Booking) Interval() availability.Interval {
	return availability.Interval{Start: b.CheckIn, End: b.CheckOut}
}

func (b *Booking) Nights() int {
	return b.Interval().Nights()
}

// Filter defines parameters for listing bookings.
type Filter struct {
	GuestID    string
	HostID     string
	PropertyID string
	Status     Status
	Page       int
	PageSize   int
}
