package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/eligibility"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

type CreateRequest struct {
	PropertyID string
	GuestID    string
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int
	Message    string
}

// PropertyGetter loads the property a booking targets.
type PropertyGetter interface {
	GetByID(ctx context.Context, id string) (*property.Property, error)
}

// Evaluator decides whether a guest may book a property.
type Evaluator interface {
	Evaluate(ctx context.Context, p *property.Property, requesterID string) (*eligibility.Decision, error)
}

// AvailabilityChecker lists what a date range collides with.
type AvailabilityChecker interface {
	ConflictingBookings(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]availability.Conflict, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	// GetByID returns a booking visible to the requester (its guest or host).
	GetByID(ctx context.Context, id, requesterID string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Approve(ctx context.Context, id, hostID, responseMessage string) (*Booking, error)
	Reject(ctx context.Context, id, hostID, responseMessage string) (*Booking, error)
	Cancel(ctx context.Context, id, guestID string) (*Booking, error)
	// Complete is idempotent on already completed bookings.
	Complete(ctx context.Context, id string) (*Booking, error)
	CompleteEnded(ctx context.Context) (int64, error)
}

type service struct {
	repo         Repository
	properties   PropertyGetter
	evaluator    Evaluator
	availability AvailabilityChecker

	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
}

// NewService creates a booking Service. Approvals that lose a race are
// retried up to maxAttempts times in total.
func NewService(repo Repository, properties PropertyGetter, evaluator Evaluator, availability AvailabilityChecker, maxAttempts int) Service {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &service{
		repo:         repo,
		properties:   properties,
		evaluator:    evaluator,
		availability: availability,
		maxAttempts:  maxAttempts,
		backoff:      25 * time.Millisecond,
		now:          time.Now,
	}
}

func (s *service) today() time.Time {
	return availability.DateOf(s.now().UTC())
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	// 1. Dates
	stay, err := availability.NewInterval(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if stay.Start.Before(s.today()) {
		return nil, ErrCheckInPast
	}
	if len(req.Message) > MaxMessageLen {
		return nil, ErrMessageTooLong
	}

	p, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if p.IsHost(req.GuestID) {
		return nil, ErrOwnProperty
	}
	if !p.IsActive {
		return nil, ErrPropertyInactive
	}

	// 2. Capacity
	if req.GuestCount < 1 || req.GuestCount > p.MaxGuests {
		return nil, ErrInvalidGuestCount
	}

	// 3. Eligibility
	decision, err := s.evaluator.Evaluate(ctx, p, req.GuestID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrEligibilityDenied.
			WithMessage(decision.Reason).
			WithDetails(map[string]any{"code": decision.Code})
	}

	// 4. Availability. Advisory only; approval re-checks under the property lock.
	conflicts, err := s.availability.ConflictingBookings(ctx, p.ID, stay.Start, stay.End)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, ErrConflict.WithDetails(conflicts)
	}

	b := &Booking{
		PropertyID:         p.ID,
		HostID:             p.HostID,
		GuestID:            req.GuestID,
		CheckIn:            stay.Start,
		CheckOut:           stay.End,
		GuestCount:         req.GuestCount,
		Message:            strings.TrimSpace(req.Message),
		Status:             StatusPending,
		TotalPrice:         int64(stay.Nights()) * p.PricePerNight,
		ConnectionSnapshot: newConnectionSnapshot(decision),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "booking requested",
		"booking_id", b.ID,
		"property_id", b.PropertyID,
		"check_in", b.CheckIn.Format(availability.DateLayout),
		"check_out", b.CheckOut.Format(availability.DateLayout),
	)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id, requesterID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.GuestID != requesterID && b.HostID != requesterID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Approve(ctx context.Context, id, hostID, responseMessage string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.HostID != hostID {
		return nil, ErrPermissionDenied
	}

	var approved *Booking
	for attempt := 1; ; attempt++ {
		approved, err = s.approveOnce(ctx, b.PropertyID, id, responseMessage)
		if err == nil || !errors.Is(err, ErrConcurrencyConflict) || attempt >= s.maxAttempts {
			break
		}

		slog.WarnContext(ctx, "approval lost a race, retrying",
			"booking_id", id,
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * s.backoff):
		}
	}
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "booking approved", "booking_id", id, "property_id", approved.PropertyID)
	return approved, nil
}

// approveOnce re-validates and approves inside one locked transaction.
func (s *service) approveOnce(ctx context.Context, propertyID, id, responseMessage string) (*Booking, error) {
	var approved *Booking
	err := s.repo.WithPropertyLock(ctx, propertyID, func(ctx context.Context, tx TxStore) error {
		cur, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(cur.Status, StatusApproved) {
			return transitionError(cur.Status, StatusApproved)
		}

		snap, err := tx.Snapshot(ctx, propertyID)
		if err != nil {
			return err
		}
		if conflicts := snap.Conflicts(cur.Interval()); len(conflicts) > 0 {
			return ErrConflict.WithDetails(conflicts)
		}

		now := s.now().UTC()
		cur.Status = StatusApproved
		cur.HostResponse = optionalText(responseMessage)
		cur.RespondedAt = &now
		if err := tx.Transition(ctx, cur, StatusPending); err != nil {
			return err
		}
		approved = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (s *service) Reject(ctx context.Context, id, hostID, responseMessage string) (*Booking, error) {
	msg := strings.TrimSpace(responseMessage)
	if msg == "" {
		return nil, ErrResponseRequired
	}
	if len(msg) > MaxMessageLen {
		return nil, ErrMessageTooLong
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.HostID != hostID {
		return nil, ErrPermissionDenied
	}
	if !CanTransition(b.Status, StatusRejected) {
		return nil, transitionError(b.Status, StatusRejected)
	}

	now := s.now().UTC()
	b.Status = StatusRejected
	b.HostResponse = &msg
	b.RespondedAt = &now
	if err := s.repo.Transition(ctx, b, StatusPending); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "booking rejected", "booking_id", id)
	return b, nil
}

func (s *service) Cancel(ctx context.Context, id, guestID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.GuestID != guestID {
		return nil, ErrPermissionDenied
	}

	from := b.Status
	if !CanTransition(from, StatusCancelled) {
		return nil, transitionError(from, StatusCancelled)
	}
	if from == StatusApproved && !s.today().Before(b.CheckIn) {
		return nil, ErrCancelAfterCheckIn
	}

	b.Status = StatusCancelled
	if err := s.repo.Transition(ctx, b, from); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "booking cancelled", "booking_id", id, "previous_status", from)
	return b, nil
}

func (s *service) Complete(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCompleted {
		return b, nil
	}
	if !CanTransition(b.Status, StatusCompleted) {
		return nil, transitionError(b.Status, StatusCompleted)
	}

	b.Status = StatusCompleted
	if err := s.repo.Transition(ctx, b, StatusApproved); err != nil {
		if errors.Is(err, ErrConcurrencyConflict) {
			// Someone else may have completed it first.
			if cur, getErr := s.repo.GetByID(ctx, id); getErr == nil && cur.Status == StatusCompleted {
				return cur, nil
			}
		}
		return nil, err
	}
	return b, nil
}

func (s *service) CompleteEnded(ctx context.Context) (int64, error) {
	return s.repo.CompleteEnded(ctx, s.today())
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
