package friendship

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Service answers how two users are connected.
type Service interface {
	// Connection returns degree, closeness score and the underlying signals.
	Connection(ctx context.Context, userID, otherID string) (*Connection, error)
	Degree(ctx context.Context, userID, otherID string) (Degree, error)
	ClosenessScore(ctx context.Context, userID, otherID string) (int, error)
}

type service struct {
	repo     Repository
	scorer   Scorer
	cache    Cache
	cacheTTL time.Duration
}

// NewService creates a friendship Service. A nil cache disables caching.
func NewService(repo Repository, scorer Scorer, cache Cache, cacheTTL time.Duration) Service {
	if cache == nil || cacheTTL <= 0 {
		cache = NoopCache{}
	}
	return &service{
		repo:     repo,
		scorer:   scorer,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *service) Connection(ctx context.Context, userID, otherID string) (*Connection, error) {
	if userID == otherID {
		return nil, ErrSelfConnection
	}

	key := pairKey(userID, otherID)
	if conn, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "connection cache read failed", "error", err)
	} else if ok {
		return conn, nil
	}

	found, err := s.repo.ExistingUsers(ctx, []string{userID, otherID})
	if err != nil {
		return nil, err
	}
	if !found[userID] || !found[otherID] {
		return nil, ErrUserNotFound
	}

	var (
		degree  Degree
		signals Signals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		degree, err = ShortestDegree(gctx, s.repo, userID, otherID)
		return err
	})
	g.Go(func() error {
		var err error
		signals, err = s.repo.Signals(gctx, userID, otherID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	conn := &Connection{
		Degree:  degree,
		Signals: signals,
	}
	// Users outside the graph neighbourhood never earn closeness.
	if degree.Connected() {
		conn.ClosenessScore = clampScore(s.scorer.Score(signals))
	}

	if err := s.cache.Set(ctx, key, conn, s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "connection cache write failed", "error", err)
	}

	return conn, nil
}

func (s *service) Degree(ctx context.Context, userID, otherID string) (Degree, error) {
	conn, err := s.Connection(ctx, userID, otherID)
	if err != nil {
		return DegreeNone, err
	}
	return conn.Degree, nil
}

func (s *service) ClosenessScore(ctx context.Context, userID, otherID string) (int, error) {
	conn, err := s.Connection(ctx, userID, otherID)
	if err != nil {
		return 0, err
	}
	return conn.ClosenessScore, nil
}
