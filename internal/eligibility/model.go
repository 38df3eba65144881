package eligibility

import "github.com/nekogravitycat/stay-booking-backend/internal/friendship"

// Code is a stable machine-readable outcome of an eligibility check.
type Code string

const (
	CodeHost                  Code = "host"
	CodeAnyone                Code = "anyone"
	CodeWithinDegree          Code = "within_degree"
	CodeClosenessMet          Code = "closeness_met"
	CodeNotConnected          Code = "not_connected"
	CodeInsufficientDegree    Code = "insufficient_degree"
	CodeInsufficientCloseness Code = "insufficient_closeness"
)

// Decision is the outcome of evaluating a property's policy for one requester.
// Connection is nil when the requester is the host.
type Decision struct {
	Allowed    bool
	Code       Code
	Reason     string
	Connection *friendship.Connection
}

// Degree returns the requester's degree, or DegreeNone without a connection.
func (d *Decision) Degree() friendship.Degree {
	if d.Connection == nil {
		return friendship.DegreeNone
	}
	return d.Connection.Degree
}

// ClosenessScore returns the requester's score, or 0 without a connection.
func (d *Decision) ClosenessScore() int {
	if d.Connection == nil {
		return 0
	}
	return d.Connection.ClosenessScore
}
