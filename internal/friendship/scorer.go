package friendship

// Scorer turns auxiliary signals into a closeness score in [0,100].
// Implementations must be deterministic and monotonically non-decreasing in
// every signal.
type Scorer interface {
	Score(s Signals) int
}

// WeightedScorer awards points per signal up to a per-signal cap.
type WeightedScorer struct {
	MutualFriendPoints int
	MutualFriendCap    int
	SharedEventPoints  int
	SharedEventCap     int
	InteractionPoints  int
	InteractionCap     int
}

// DefaultScorer weighs mutual friends highest, then shared events, then
// logged interactions. The caps add up to 100.
func DefaultScorer() WeightedScorer {
	return WeightedScorer{
		MutualFriendPoints: 8,
		MutualFriendCap:    40,
		SharedEventPoints:  6,
		SharedEventCap:     30,
		InteractionPoints:  3,
		InteractionCap:     30,
	}
}

func (w WeightedScorer) Score(s Signals) int {
	total := capped(s.MutualFriends, w.MutualFriendPoints, w.MutualFriendCap) +
		capped(s.SharedEvents, w.SharedEventPoints, w.SharedEventCap) +
		capped(s.Interactions, w.InteractionPoints, w.InteractionCap)
	return clampScore(total)
}

func capped(count, points, limit int) int {
	if count <= 0 || points <= 0 {
		return 0
	}
	if count > limit/points {
		return limit
	}
	return min(count*points, limit)
}

func clampScore(v int) int {
	return max(0, min(100, v))
}
