package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
)

const (
	RoleGuest = "guest"
	RoleHost  = "host"

	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	Role       string `form:"role" binding:"omitempty,oneof=guest host"`
	PropertyID string `form:"property_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled completed"`
}

type CreateBookingRequest struct {
	PropertyID string `json:"property_id" binding:"required,uuid"`
	CheckIn    string `json:"check_in" binding:"required"`
	CheckOut   string `json:"check_out" binding:"required"`
	GuestCount int    `json:"guest_count" binding:"required,min=1"`
	Message    string `json:"message" binding:"max=2000"`
}

type DecisionRequest struct {
	Decision        string `json:"decision" binding:"required,oneof=approve reject"`
	ResponseMessage string `json:"response_message" binding:"max=2000"`
}

type BookingResponse struct {
	ID                 string                      `json:"id"`
	PropertyID         string                      `json:"property_id"`
	HostID             string                      `json:"host_id"`
	GuestID            string                      `json:"guest_id"`
	CheckIn            string                      `json:"check_in"`
	CheckOut           string                      `json:"check_out"`
	Nights             int                         `json:"nights"`
	GuestCount         int                         `json:"guest_count"`
	Message            string                      `json:"message"`
	Status             string                      `json:"status"`
	HostResponse       *string                     `json:"host_response"`
	TotalPrice         int64                       `json:"total_price"`
	ConnectionSnapshot *booking.ConnectionSnapshot `json:"connection_snapshot,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	RespondedAt        *time.Time                  `json:"responded_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		PropertyID:         b.PropertyID,
		HostID:             b.HostID,
		GuestID:            b.GuestID,
		CheckIn:            b.CheckIn.Format(availability.DateLayout),
		CheckOut:           b.CheckOut.Format(availability.DateLayout),
		Nights:             b.Nights(),
		GuestCount:         b.GuestCount,
		Message:            b.Message,
		Status:             string(b.Status),
		HostResponse:       b.HostResponse,
		TotalPrice:         b.TotalPrice,
		ConnectionSnapshot: b.ConnectionSnapshot,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		RespondedAt:        b.RespondedAt,
	}
}
