package property

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/friendship"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	// ErrNotFound is shared with availability so either lookup path matches errors.Is.
	ErrNotFound           = availability.ErrPropertyNotFound
	ErrTitleRequired      = apperror.New(http.StatusBadRequest, "title is required")
	ErrInvalidMaxGuests   = apperror.New(http.StatusBadRequest, "max guests must be at least 1")
	ErrInvalidPrice       = apperror.New(http.StatusBadRequest, "price per night cannot be negative")
	ErrInvalidPolicy      = apperror.New(http.StatusBadRequest, "invalid booking policy")
	ErrNotHost            = apperror.New(http.StatusForbidden, "only the host can manage this property")
	ErrTooManyBlocks      = apperror.New(http.StatusBadRequest, "too many blocked intervals")
	ErrBlockReasonTooLong = apperror.New(http.StatusBadRequest, "blocked interval reason is too long")
)

const (
	MaxBlockedIntervals = 200
	MaxBlockReasonLen   = 200
)

// PolicyKind is the persisted discriminator of a Policy.
type PolicyKind string

const (
	PolicyAnyone    PolicyKind = "anyone"
	PolicyDegree    PolicyKind = "degree_at_most"
	PolicyCloseness PolicyKind = "min_closeness"
)

// Policy is the host's rule for who may book. The set of variants is closed:
// AnyonePolicy, DegreePolicy and ClosenessPolicy.
type Policy interface {
	Kind() PolicyKind
	// Value is the numeric parameter stored next to the kind (0 for anyone).
	Value() int
	policy()
}

type AnyonePolicy struct{}

// DegreePolicy admits requesters connected within MaxDegree hops.
type DegreePolicy struct {
	MaxDegree int
}

// ClosenessPolicy admits requesters whose closeness score reaches Threshold.
type ClosenessPolicy struct {
	Threshold int
}

func (AnyonePolicy) Kind() PolicyKind    { return PolicyAnyone }
func (DegreePolicy) Kind() PolicyKind    { return PolicyDegree }
func (ClosenessPolicy) Kind() PolicyKind { return PolicyCloseness }

func (AnyonePolicy) Value() int      { return 0 }
func (p DegreePolicy) Value() int    { return p.MaxDegree }
func (p ClosenessPolicy) Value() int { return p.Threshold }

func (AnyonePolicy) policy()    {}
func (DegreePolicy) policy()    {}
func (ClosenessPolicy) policy() {}

// DecodePolicy builds a Policy from its stored form. Legacy names written by
// older clients are accepted and normalized.
func DecodePolicy(kind string, value int) (Policy, error) {
	var p Policy
	switch kind {
	case string(PolicyAnyone), "":
		p = AnyonePolicy{}
	case string(PolicyDegree):
		p = DegreePolicy{MaxDegree: value}
	case "friends_only", "1st_degree":
		p = DegreePolicy{MaxDegree: 1}
	case "2nd_degree":
		p = DegreePolicy{MaxDegree: 2}
	case "3rd_degree":
		p = DegreePolicy{MaxDegree: 3}
	case string(PolicyCloseness), "custom_closeness":
		p = ClosenessPolicy{Threshold: value}
	default:
		return nil, ErrInvalidPolicy.WithMessage(fmt.Sprintf("unknown booking policy %q", kind))
	}
	if err := ValidatePolicy(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ValidatePolicy checks the parameter ranges of p.
func ValidatePolicy(p Policy) error {
	switch v := p.(type) {
	case AnyonePolicy:
		return nil
	case DegreePolicy:
		if v.MaxDegree < 1 || v.MaxDegree > friendship.MaxDegree {
			return ErrInvalidPolicy.WithMessage(fmt.Sprintf("degree must be between 1 and %d", friendship.MaxDegree))
		}
		return nil
	case ClosenessPolicy:
		if v.Threshold < 0 || v.Threshold > 100 {
			return ErrInvalidPolicy.WithMessage("closeness threshold must be between 0 and 100")
		}
		return nil
	default:
		return ErrInvalidPolicy
	}
}

// Property is a listing owned by a host.
type Property struct {
	ID               string
	HostID           string
	Title            string
	MaxGuests        int
	PricePerNight    int64 // minor currency units
	Policy           Policy
	BlockedIntervals []availability.Block
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsHost reports whether userID owns the property.
func (p *Property) IsHost(userID string) bool {
	return p.HostID == userID
}

// Filter defines parameters for listing properties.
type Filter struct {
	HostID   string
	Page     int
	PageSize int
}
