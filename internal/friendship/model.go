package friendship

import (
	"net/http"
	"strconv"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrUserNotFound   = apperror.New(http.StatusNotFound, "user not found")
	ErrSelfConnection = apperror.New(http.StatusBadRequest, "cannot evaluate a connection between a user and themself")
)

// MaxDegree is the deepest tier the booking policies distinguish.
const MaxDegree = 3

// Degree is the shortest-path distance between two users in the friendship
// graph, or DegreeNone when no path exists within MaxDegree hops.
type Degree int

const DegreeNone Degree = -1

// Connected reports whether d is a real 1st..3rd degree connection.
func (d Degree) Connected() bool {
	return d >= 1 && d <= MaxDegree
}

func (d Degree) String() string {
	switch d {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	case DegreeNone:
		return "none"
	default:
		return strconv.Itoa(int(d))
	}
}

// Signals are the auxiliary counts closeness is derived from.
// Every field is symmetric in the two users.
type Signals struct {
	MutualFriends int `json:"mutual_friends"`
	SharedEvents  int `json:"shared_events"`
	Interactions  int `json:"interactions"`
}

// Connection describes how two users relate. It is derived on demand and
// never persisted.
type Connection struct {
	Degree         Degree `json:"degree"`
	ClosenessScore int    `json:"closeness_score"`
	Signals
}

// IsConnected reports whether the users are within MaxDegree of each other.
func (c *Connection) IsConnected() bool {
	return c.Degree.Connected()
}
