package http

import "github.com/nekogravitycat/stay-booking-backend/internal/friendship"

type ConnectionResponse struct {
	UserID           string `json:"user_id"`
	ConnectionDegree int    `json:"connection_degree"` // -1 when not connected within 3 degrees
	DegreeLabel      string `json:"degree_label"`
	IsConnected      bool   `json:"is_connected"`
	ClosenessScore   int    `json:"closeness_score"`
	MutualFriends    int    `json:"mutual_friends"`
	SharedEvents     int    `json:"shared_events"`
	Interactions     int    `json:"interactions"`
}

func NewConnectionResponse(userID string, c *friendship.Connection) ConnectionResponse {
	return ConnectionResponse{
		UserID:           userID,
		ConnectionDegree: int(c.Degree),
		DegreeLabel:      c.Degree.String(),
		IsConnected:      c.IsConnected(),
		ClosenessScore:   c.ClosenessScore,
		MutualFriends:    c.MutualFriends,
		SharedEvents:     c.SharedEvents,
		Interactions:     c.Interactions,
	}
}
