package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

type PolicyBody struct {
	WhoCanBook string `json:"who_can_book" binding:"required"`
	Value      int    `json:"value"`
}

func (b *PolicyBody) ToPolicy() (property.Policy, error) {
	return property.DecodePolicy(b.WhoCanBook, b.Value)
}

type BlockedIntervalBody struct {
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Reason string `json:"reason"`
}

func toBlocks(bodies []BlockedIntervalBody) ([]availability.Block, error) {
	blocks := make([]availability.Block, 0, len(bodies))
	for _, b := range bodies {
		i, err := availability.ParseInterval(b.Start, b.End)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, availability.Block{Interval: i, Reason: b.Reason})
	}
	return blocks, nil
}

type CreatePropertyBody struct {
	Title            string                `json:"title" binding:"required"`
	MaxGuests        int                   `json:"max_guests" binding:"required,min=1"`
	PricePerNight    int64                 `json:"price_per_night" binding:"min=0"`
	Policy           *PolicyBody           `json:"policy"`
	BlockedIntervals []BlockedIntervalBody `json:"blocked_intervals" binding:"omitempty,dive"`
}

type UpdateBlockedIntervalsBody struct {
	BlockedIntervals []BlockedIntervalBody `json:"blocked_intervals" binding:"dive"`
}

type ListPropertiesQuery struct {
	HostID   string `form:"host_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type PolicyResponse struct {
	WhoCanBook string `json:"who_can_book"`
	Value      int    `json:"value"`
}

type PropertyResponse struct {
	ID               string                `json:"id"`
	HostID           string                `json:"host_id"`
	Title            string                `json:"title"`
	MaxGuests        int                   `json:"max_guests"`
	PricePerNight    int64                 `json:"price_per_night"`
	Policy           PolicyResponse        `json:"policy"`
	BlockedIntervals []BlockedIntervalBody `json:"blocked_intervals"`
	IsActive         bool                  `json:"is_active"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func NewPropertyResponse(p *property.Property) PropertyResponse {
	blocks := make([]BlockedIntervalBody, 0, len(p.BlockedIntervals))
	for _, b := range p.BlockedIntervals {
		blocks = append(blocks, BlockedIntervalBody{
			Start:  b.Interval.Start.Format(availability.DateLayout),
			End:    b.Interval.End.Format(availability.DateLayout),
			Reason: b.Reason,
		})
	}
	return PropertyResponse{
		ID:            p.ID,
		HostID:        p.HostID,
		Title:         p.Title,
		MaxGuests:     p.MaxGuests,
		PricePerNight: p.PricePerNight,
		Policy: PolicyResponse{
			WhoCanBook: string(p.Policy.Kind()),
			Value:      p.Policy.Value(),
		},
		BlockedIntervals: blocks,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
