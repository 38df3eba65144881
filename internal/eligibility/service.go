package eligibility

import (
	"context"

	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

// PropertyGetter loads the property a check runs against.
type PropertyGetter interface {
	GetByID(ctx context.Context, id string) (*property.Property, error)
}

type Service interface {
	Check(ctx context.Context, propertyID, requesterID string) (*Decision, error)
}

type service struct {
	properties PropertyGetter
	evaluator  *Evaluator
}

func NewService(properties PropertyGetter, evaluator *Evaluator) Service {
	return &service{properties: properties, evaluator: evaluator}
}

func (s *service) Check(ctx context.Context, propertyID, requesterID string) (*Decision, error) {
	p, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Evaluate(ctx, p, requesterID)
}
