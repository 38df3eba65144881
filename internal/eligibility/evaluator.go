package eligibility

import (
	"context"
	"fmt"

	"github.com/nekogravitycat/stay-booking-backend/internal/friendship"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

// Connector resolves how two users are connected.
type Connector interface {
	Connection(ctx context.Context, userID, otherID string) (*friendship.Connection, error)
}

// Evaluator decides whether a requester may book a property. It has no side
// effects; repeated calls over unchanged state return the same decision.
type Evaluator struct {
	connector Connector
}

func NewEvaluator(connector Connector) *Evaluator {
	return &Evaluator{connector: connector}
}

func (e *Evaluator) Evaluate(ctx context.Context, p *property.Property, requesterID string) (*Decision, error) {
	if p.IsHost(requesterID) {
		return &Decision{
			Allowed: true,
			Code:    CodeHost,
			Reason:  "You are the host of this property",
		}, nil
	}

	conn, err := e.connector.Connection(ctx, requesterID, p.HostID)
	if err != nil {
		return nil, err
	}

	d := decide(p.Policy, conn)
	d.Connection = conn
	return &d, nil
}

func decide(policy property.Policy, conn *friendship.Connection) Decision {
	switch pol := policy.(type) {
	case property.DegreePolicy:
		if !conn.IsConnected() {
			return notConnected()
		}
		if int(conn.Degree) > pol.MaxDegree {
			return Decision{
				Code:   CodeInsufficientDegree,
				Reason: fmt.Sprintf("Only %s-degree connections or closer can book this property", friendship.Degree(pol.MaxDegree)),
			}
		}
		return Decision{
			Allowed: true,
			Code:    CodeWithinDegree,
			Reason:  fmt.Sprintf("You are a %s-degree connection of the host", conn.Degree),
		}

	case property.ClosenessPolicy:
		// The score alone decides; unconnected users score 0.
		if conn.ClosenessScore >= pol.Threshold {
			return Decision{
				Allowed: true,
				Code:    CodeClosenessMet,
				Reason:  fmt.Sprintf("Your closeness score of %d meets the required %d", conn.ClosenessScore, pol.Threshold),
			}
		}
		if !conn.IsConnected() {
			return notConnected()
		}
		return Decision{
			Code:   CodeInsufficientCloseness,
			Reason: fmt.Sprintf("A closeness score of at least %d is required to book this property", pol.Threshold),
		}

	default:
		return Decision{
			Allowed: true,
			Code:    CodeAnyone,
			Reason:  "This property accepts bookings from anyone",
		}
	}
}

func notConnected() Decision {
	return Decision{
		Code:   CodeNotConnected,
		Reason: "You are not connected to the host. Send a friend request to become eligible",
	}
}
