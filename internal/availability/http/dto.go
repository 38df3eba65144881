package http

import "github.com/nekogravitycat/stay-booking-backend/internal/availability"

type CheckQuery struct {
	CheckIn  string `form:"check_in" binding:"required"`
	CheckOut string `form:"check_out" binding:"required"`
}

type BlockedIntervalResponse struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason,omitempty"`
}

type AvailabilityResponse struct {
	PropertyID               string                    `json:"property_id"`
	ApprovedBookingIntervals []availability.Interval   `json:"approved_booking_intervals"`
	BlockedIntervals         []BlockedIntervalResponse `json:"blocked_intervals"`
}

type CheckResponse struct {
	Available bool                    `json:"available"`
	CheckIn   string                  `json:"check_in"`
	CheckOut  string                  `json:"check_out"`
	Nights    int                     `json:"nights"`
	Conflicts []availability.Conflict `json:"conflicts"`
}

// NewAvailabilityResponse lists occupied dates only; guest identities stay private.
func NewAvailabilityResponse(snap *availability.Snapshot) AvailabilityResponse {
	resp := AvailabilityResponse{
		PropertyID:               snap.PropertyID,
		ApprovedBookingIntervals: make([]availability.Interval, 0, len(snap.Approved)),
		BlockedIntervals:         make([]BlockedIntervalResponse, 0, len(snap.Blocked)),
	}
	for _, r := range snap.Approved {
		resp.ApprovedBookingIntervals = append(resp.ApprovedBookingIntervals, r.Interval)
	}
	for _, b := range snap.Blocked {
		resp.BlockedIntervals = append(resp.BlockedIntervals, BlockedIntervalResponse{
			Start:  b.Interval.Start.Format(availability.DateLayout),
			End:    b.Interval.End.Format(availability.DateLayout),
			Reason: b.Reason,
		})
	}
	return resp
}
