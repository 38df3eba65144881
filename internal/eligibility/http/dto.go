package http

import "github.com/nekogravitycat/stay-booking-backend/internal/eligibility"

type EligibilityResponse struct {
	Allowed          bool   `json:"allowed"`
	Code             string `json:"code"`
	Reason           string `json:"reason"`
	ConnectionDegree int    `json:"connection_degree"` // -1 when not connected
	DegreeLabel      string `json:"degree_label"`
	ClosenessScore   int    `json:"closeness_score"`
}

func NewEligibilityResponse(d *eligibility.Decision) EligibilityResponse {
	return EligibilityResponse{
		Allowed:          d.Allowed,
		Code:             string(d.Code),
		Reason:           d.Reason,
		ConnectionDegree: int(d.Degree()),
		DegreeLabel:      d.Degree().String(),
		ClosenessScore:   d.ClosenessScore(),
	}
}
