package friendship

import "context"

// Graph exposes the undirected friendship graph.
type Graph interface {
	// Neighbors returns the accepted friends of every given user, keyed by user ID.
	Neighbors(ctx context.Context, userIDs []string) (map[string][]string, error)
}

// ShortestDegree runs a breadth-first search from source and returns the depth
// at which target first appears, or DegreeNone if it is not reached within
// MaxDegree hops. Each depth costs one batched Neighbors call.
func ShortestDegree(ctx context.Context, g Graph, source, target string) (Degree, error) {
	if source == target {
		return DegreeNone, ErrSelfConnection
	}

	visited := map[string]struct{}{source: {}}
	frontier := []string{source}

	for depth := 1; depth <= MaxDegree && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return DegreeNone, err
		}

		neighbors, err := g.Neighbors(ctx, frontier)
		if err != nil {
			return DegreeNone, err
		}

		var next []string
		for _, id := range frontier {
			for _, friend := range neighbors[id] {
				if friend == target {
					return Degree(depth), nil
				}
				if _, seen := visited[friend]; seen {
					continue
				}
				visited[friend] = struct{}{}
				if depth < MaxDegree {
					next = append(next, friend)
				}
			}
		}
		frontier = next
	}

	return DegreeNone, nil
}
