package friendship

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionComputesDegreeAndScore(t *testing.T) {
	g := newMemGraph().
		befriend("guest", "host").
		befriend("guest", "m1").befriend("host", "m1").
		befriend("guest", "m2").befriend("host", "m2").
		rsvp("guest", 1, 2, 3).rsvp("host", 2, 3).
		interact("guest", "host", 5)
	svc := NewService(g, DefaultScorer(), nil, 0)

	conn, err := svc.Connection(context.Background(), "guest", "host")
	require.NoError(t, err)

	assert.Equal(t, Degree(1), conn.Degree)
	assert.True(t, conn.IsConnected())
	assert.Equal(t, Signals{MutualFriends: 2, SharedEvents: 2, Interactions: 5}, conn.Signals)
	assert.Equal(t, 16+12+15, conn.ClosenessScore)
}

func TestConnectionUnconnectedScoresZero(t *testing.T) {
	// Shared events alone never lift an unconnected pair above zero.
	g := newMemGraph("guest", "host").rsvp("guest", 1, 2).rsvp("host", 1, 2)
	svc := NewService(g, DefaultScorer(), nil, 0)

	conn, err := svc.Connection(context.Background(), "guest", "host")
	require.NoError(t, err)
	assert.Equal(t, DegreeNone, conn.Degree)
	assert.False(t, conn.IsConnected())
	assert.Equal(t, 2, conn.SharedEvents)
	assert.Zero(t, conn.ClosenessScore)
}

func TestConnectionErrors(t *testing.T) {
	svc := NewService(newMemGraph("guest"), DefaultScorer(), nil, 0)

	_, err := svc.Connection(context.Background(), "guest", "guest")
	assert.ErrorIs(t, err, ErrSelfConnection)

	_, err = svc.Connection(context.Background(), "guest", "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Degree(context.Background(), "ghost", "guest")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConnectionUsesCacheSymmetrically(t *testing.T) {
	g := newMemGraph().befriend("a", "b").befriend("b", "c")
	cache := newMemCache()
	svc := NewService(g, DefaultScorer(), cache, time.Minute)

	first, err := svc.Connection(context.Background(), "a", "c")
	require.NoError(t, err)
	calls := g.neighborCall

	second, err := svc.Connection(context.Background(), "c", "a")
	require.NoError(t, err)

	assert.Equal(t, *first, *second)
	assert.Equal(t, calls, g.neighborCall, "second lookup should be served from cache")
	assert.Equal(t, 1, cache.sets)
}

func TestClosenessScoreIsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	users := make([]string, 25)
	for i := range users {
		users[i] = fmt.Sprintf("u%02d", i)
	}

	g := newMemGraph(users...)
	for i := 0; i < 60; i++ {
		a, b := users[rng.Intn(len(users))], users[rng.Intn(len(users))]
		if a == b {
			continue
		}
		g.befriend(a, b).interact(a, b, rng.Intn(4))
	}
	for _, u := range users {
		g.rsvp(u, rng.Intn(6), rng.Intn(6))
	}

	svc := NewService(g, DefaultScorer(), nil, 0)
	ctx := context.Background()
	for i, a := range users {
		for _, b := range users[i+1:] {
			ab, err := svc.Connection(ctx, a, b)
			require.NoError(t, err)
			ba, err := svc.Connection(ctx, b, a)
			require.NoError(t, err)

			assert.Equal(t, ab.ClosenessScore, ba.ClosenessScore, "%s/%s", a, b)
			assert.Equal(t, ab.Degree, ba.Degree, "%s/%s", a, b)
			assert.True(t, ab.ClosenessScore >= 0 && ab.ClosenessScore <= 100)
		}
	}
}

func TestConnectionIsIdempotent(t *testing.T) {
	g := newMemGraph().befriend("a", "b").befriend("b", "c").rsvp("a", 1).rsvp("c", 1)
	svc := NewService(g, DefaultScorer(), nil, 0)

	first, err := svc.Connection(context.Background(), "a", "c")
	require.NoError(t, err)
	second, err := svc.Connection(context.Background(), "a", "c")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
