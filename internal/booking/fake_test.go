package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/eligibility"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

// memRepo is an in-memory Repository. WithPropertyLock holds a per-property
// mutex for the whole callback, mirroring the row lock of the pgx version.
type memRepo struct {
	mu         sync.Mutex
	seq        int
	bookings   map[string]*Booking
	properties map[string]*property.Property
	locks      map[string]*sync.Mutex

	// failTransitions makes the next n locked transitions lose their race.
	failTransitions int
}

func newMemRepo() *memRepo {
	return &memRepo{
		bookings:   make(map[string]*Booking),
		properties: make(map[string]*property.Property),
		locks:      make(map[string]*sync.Mutex),
	}
}

func (r *memRepo) addProperty(p *property.Property) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties[p.ID] = p
	r.locks[p.ID] = &sync.Mutex{}
}

func (r *memRepo) setBlocks(propertyID string, blocks []availability.Block) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties[propertyID].BlockedIntervals = blocks
}

// getProperty backs the PropertyGetter used by the service under test.
func (r *memRepo) getProperty(_ context.Context, id string) (*property.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return nil, property.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	b.ID = fmt.Sprintf("booking-%d", r.seq)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if filter.GuestID != "" && b.GuestID != filter.GuestID {
			continue
		}
		if filter.HostID != "" && b.HostID != filter.HostID {
			continue
		}
		if filter.PropertyID != "" && b.PropertyID != filter.PropertyID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *memRepo) Transition(_ context.Context, b *Booking, from Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitionLocked(b, from)
}

func (r *memRepo) transitionLocked(b *Booking, from Status) error {
	stored, ok := r.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != from {
		return ErrConcurrencyConflict
	}
	b.UpdatedAt = time.Now()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memRepo) WithPropertyLock(ctx context.Context, propertyID string, fn func(ctx context.Context, tx TxStore) error) error {
	r.mu.Lock()
	lock, ok := r.locks[propertyID]
	r.mu.Unlock()
	if !ok {
		return property.ErrNotFound
	}

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx, &memTx{repo: r})
}

func (r *memRepo) CompleteEnded(_ context.Context, asOf time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Status == StatusApproved && !b.CheckOut.After(asOf) {
			b.Status = StatusCompleted
			n++
		}
	}
	return n, nil
}

// Snapshot makes memRepo an availability.Reader.
func (r *memRepo) Snapshot(_ context.Context, propertyID string, window *availability.Interval) (*availability.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[propertyID]
	if !ok {
		return nil, availability.ErrPropertyNotFound
	}

	snap := &availability.Snapshot{PropertyID: propertyID}
	for _, b := range r.bookings {
		if b.PropertyID != propertyID || b.Status != StatusApproved {
			continue
		}
		if window != nil && !b.Interval().Overlaps(*window) {
			continue
		}
		snap.Approved = append(snap.Approved, availability.Reservation{
			BookingID: b.ID,
			GuestID:   b.GuestID,
			Interval:  b.Interval(),
		})
	}
	for _, blk := range p.BlockedIntervals {
		if window == nil || blk.Interval.Overlaps(*window) {
			snap.Blocked = append(snap.Blocked, blk)
		}
	}
	return snap, nil
}

type memTx struct {
	repo *memRepo
}

func (t *memTx) GetByID(ctx context.Context, id string) (*Booking, error) {
	return t.repo.GetByID(ctx, id)
}

func (t *memTx) Snapshot(ctx context.Context, propertyID string) (*availability.Snapshot, error) {
	return t.repo.Snapshot(ctx, propertyID, nil)
}

func (t *memTx) Transition(_ context.Context, b *Booking, from Status) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	if t.repo.failTransitions > 0 {
		t.repo.failTransitions--
		return ErrConcurrencyConflict
	}
	return t.repo.transitionLocked(b, from)
}

type propertyFunc func(ctx context.Context, id string) (*property.Property, error)

func (f propertyFunc) GetByID(ctx context.Context, id string) (*property.Property, error) {
	return f(ctx, id)
}

// stubEvaluator admits everyone except the listed guests.
type stubEvaluator struct {
	denied map[string]bool
}

func (e stubEvaluator) Evaluate(_ context.Context, p *property.Property, requesterID string) (*eligibility.Decision, error) {
	if e.denied[requesterID] {
		return &eligibility.Decision{
			Code:   eligibility.CodeInsufficientDegree,
			Reason: "Only 1st-degree connections or closer can book this property",
		}, nil
	}
	return &eligibility.Decision{Allowed: true, Code: eligibility.CodeAnyone, Reason: "ok"}, nil
}
