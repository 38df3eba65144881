package friendship

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the friendship graph and the auxiliary closeness signals.
// Edges are written by the friendship subsystem, never by this service.
type Repository interface {
	Graph

	// ExistingUsers returns the subset of userIDs that belong to known users.
	ExistingUsers(ctx context.Context, userIDs []string) (map[string]bool, error)
	Signals(ctx context.Context, a, b string) (Signals, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Neighbors(ctx context.Context, userIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("user_id::text", "friend_id::text").
		From("public.friendships").
		Where(squirrel.Eq{"status": "accepted"}).
		Where(squirrel.Or{
			squirrel.Eq{"user_id": userIDs},
			squirrel.Eq{"friend_id": userIDs},
		}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build neighbors query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query neighbors failed: %w", err)
	}
	defer rows.Close()

	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	// Edges are undirected: either column may hold the frontier user.
	for rows.Next() {
		var userID, friendID string
		if err := rows.Scan(&userID, &friendID); err != nil {
			return nil, fmt.Errorf("scan friendship failed: %w", err)
		}
		if wanted[userID] {
			result[userID] = append(result[userID], friendID)
		}
		if wanted[friendID] {
			result[friendID] = append(result[friendID], userID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friendships failed: %w", err)
	}

	return result, nil
}

func (r *pgxRepository) ExistingUsers(ctx context.Context, userIDs []string) (map[string]bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id::text").
		From("public.users").
		Where(squirrel.Eq{"id": userIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build existing users query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing users failed: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(userIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id failed: %w", err)
		}
		found[id] = true
	}
	return found, rows.Err()
}

// signalsQuery counts mutual accepted friends, events both users RSVP'd
// going/maybe to, and logged interactions on their direct friendship.
const signalsQuery = `
	WITH fa AS (
		SELECT CASE WHEN user_id = $1 THEN friend_id ELSE user_id END AS id
		FROM public.friendships
		WHERE status = 'accepted' AND (user_id = $1 OR friend_id = $1)
	),
	fb AS (
		SELECT CASE WHEN user_id = $2 THEN friend_id ELSE user_id END AS id
		FROM public.friendships
		WHERE status = 'accepted' AND (user_id = $2 OR friend_id = $2)
	)
	SELECT
		(SELECT count(DISTINCT fa.id) FROM fa JOIN fb ON fa.id = fb.id),
		(
			SELECT count(DISTINCT ra.event_id)
			FROM public.event_rsvps ra
			JOIN public.event_rsvps rb ON ra.event_id = rb.event_id
			WHERE ra.user_id = $1 AND rb.user_id = $2
				AND ra.status IN ('going', 'maybe')
				AND rb.status IN ('going', 'maybe')
		),
		COALESCE((
			SELECT max(interaction_count)
			FROM public.friendships
			WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		), 0)
`

func (r *pgxRepository) Signals(ctx context.Context, a, b string) (Signals, error) {
	var s Signals
	if err := r.pool.QueryRow(ctx, signalsQuery, a, b).
		Scan(&s.MutualFriends, &s.SharedEvents, &s.Interactions); err != nil {
		return Signals{}, fmt.Errorf("query closeness signals failed: %w", err)
	}
	return s, nil
}
