package property

import (
	"context"
	"strings"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
)

// CreateRequest carries data to list a property.
type CreateRequest struct {
	HostID           string
	Title            string
	MaxGuests        int
	PricePerNight    int64
	Policy           Policy
	BlockedIntervals []availability.Block
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Property, error)
	GetByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, filter Filter) ([]*Property, int, error)
	UpdatePolicy(ctx context.Context, id, hostID string, policy Policy) (*Property, error)
	ReplaceBlockedIntervals(ctx context.Context, id, hostID string, blocks []availability.Block) (*Property, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validateBlocks(blocks []availability.Block) error {
	if len(blocks) > MaxBlockedIntervals {
		return ErrTooManyBlocks
	}
	for _, b := range blocks {
		if !b.Interval.Start.Before(b.Interval.End) {
			return availability.ErrInvalidRange
		}
		if len(b.Reason) > MaxBlockReasonLen {
			return ErrBlockReasonTooLong
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Property, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if req.MaxGuests < 1 {
		return nil, ErrInvalidMaxGuests
	}
	if req.PricePerNight < 0 {
		return nil, ErrInvalidPrice
	}

	policy := req.Policy
	if policy == nil {
		policy = AnyonePolicy{}
	}
	if err := ValidatePolicy(policy); err != nil {
		return nil, err
	}
	if err := validateBlocks(req.BlockedIntervals); err != nil {
		return nil, err
	}

	p := &Property{
		HostID:           req.HostID,
		Title:            title,
		MaxGuests:        req.MaxGuests,
		PricePerNight:    req.PricePerNight,
		Policy:           policy,
		BlockedIntervals: req.BlockedIntervals,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Property, int, error) {
	return s.repo.List(ctx, filter)
}

// getOwned loads a property and checks that hostID owns it.
func (s *service) getOwned(ctx context.Context, id, hostID string) (*Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsHost(hostID) {
		return nil, ErrNotHost
	}
	return p, nil
}

func (s *service) UpdatePolicy(ctx context.Context, id, hostID string, policy Policy) (*Property, error) {
	if policy == nil {
		return nil, ErrInvalidPolicy
	}
	if err := ValidatePolicy(policy); err != nil {
		return nil, err
	}
	if _, err := s.getOwned(ctx, id, hostID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePolicy(ctx, id, policy); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ReplaceBlockedIntervals(ctx context.Context, id, hostID string, blocks []availability.Block) (*Property, error) {
	if err := validateBlocks(blocks); err != nil {
		return nil, err
	}
	if _, err := s.getOwned(ctx, id, hostID); err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceBlockedIntervals(ctx, id, blocks); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
