package friendship

import (
	"context"
	"sync"
	"time"
)

// memGraph is an in-memory Repository for tests.
type memGraph struct {
	mu           sync.Mutex
	users        map[string]bool
	adj          map[string][]string
	events       map[string]map[int]bool
	interactions map[string]int
	neighborCall int
	signalCalls  int
}

func newMemGraph(users ...string) *memGraph {
	g := &memGraph{
		users:        map[string]bool{},
		adj:          map[string][]string{},
		events:       map[string]map[int]bool{},
		interactions: map[string]int{},
	}
	for _, u := range users {
		g.users[u] = true
	}
	return g
}

func (g *memGraph) befriend(a, b string) *memGraph {
	g.users[a], g.users[b] = true, true
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	return g
}

func (g *memGraph) rsvp(user string, eventIDs ...int) *memGraph {
	if g.events[user] == nil {
		g.events[user] = map[int]bool{}
	}
	for _, e := range eventIDs {
		g.events[user][e] = true
	}
	return g
}

func (g *memGraph) interact(a, b string, n int) *memGraph {
	g.interactions[pairKey(a, b)] += n
	return g
}

func (g *memGraph) Neighbors(_ context.Context, ids []string) (map[string][]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.neighborCall++
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		out[id] = append([]string(nil), g.adj[id]...)
	}
	return out, nil
}

func (g *memGraph) ExistingUsers(_ context.Context, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if g.users[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (g *memGraph) Signals(_ context.Context, a, b string) (Signals, error) {
	g.mu.Lock()
	g.signalCalls++
	g.mu.Unlock()

	var s Signals
	fa := map[string]bool{}
	for _, f := range g.adj[a] {
		fa[f] = true
	}
	seen := map[string]bool{}
	for _, f := range g.adj[b] {
		if fa[f] && !seen[f] {
			seen[f] = true
			s.MutualFriends++
		}
	}
	for e := range g.events[a] {
		if g.events[b][e] {
			s.SharedEvents++
		}
	}
	s.Interactions = g.interactions[pairKey(a, b)]
	return s, nil
}

// memCache is a map-backed Cache that ignores TTLs.
type memCache struct {
	mu    sync.Mutex
	items map[string]Connection
	sets  int
}

func newMemCache() *memCache {
	return &memCache{items: map[string]Connection{}}
}

func (c *memCache) Get(_ context.Context, key string) (*Connection, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	return &conn, true, nil
}

func (c *memCache) Set(_ context.Context, key string, conn *Connection, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.items[key] = *conn
	return nil
}
