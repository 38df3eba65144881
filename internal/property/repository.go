package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/db"
)

// Repository defines data access methods for properties.
type Repository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, filter Filter) ([]*Property, int, error)
	UpdatePolicy(ctx context.Context, id string, policy Policy) error
	// ReplaceBlockedIntervals swaps the whole block list under the property row lock.
	ReplaceBlockedIntervals(ctx context.Context, id string, blocks []availability.Block) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var propertyColumns = []string{
	"id", "host_id", "title", "max_guests", "price_per_night",
	"who_can_book", "policy_value", "is_active", "created_at", "updated_at",
}

func scanProperty(row pgx.Row) (*Property, error) {
	var (
		p     Property
		kind  string
		value int
	)
	if err := row.Scan(
		&p.ID, &p.HostID, &p.Title, &p.MaxGuests, &p.PricePerNight,
		&kind, &value, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	policy, err := DecodePolicy(kind, value)
	if err != nil {
		return nil, fmt.Errorf("decode policy of property %s failed: %w", p.ID, err)
	}
	p.Policy = policy
	return &p, nil
}

// LockForUpdate takes the row lock that serializes approvals and block edits
// of one property. q must be a transaction.
func LockForUpdate(ctx context.Context, q db.DBTX, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id").
		From("public.properties").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock property query failed: %w", err)
	}

	var locked string
	if err := q.QueryRow(ctx, query, args...).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock property failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Create(ctx context.Context, p *Property) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Insert("public.properties").
			Columns("host_id", "title", "max_guests", "price_per_night", "who_can_book", "policy_value", "is_active").
			Values(p.HostID, p.Title, p.MaxGuests, p.PricePerNight, string(p.Policy.Kind()), p.Policy.Value(), p.IsActive).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build create property query failed: %w", err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return fmt.Errorf("create property failed: %w", err)
		}

		return insertBlocks(ctx, tx, p.ID, p.BlockedIntervals)
	})
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Property, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(propertyColumns...).
		From("public.properties").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get property query failed: %w", err)
	}

	p, err := scanProperty(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get property failed: %w", err)
	}

	p.BlockedIntervals, err = r.listBlocks(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Property, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(propertyColumns, "count(*) OVER() as total_count")...).
		From("public.properties")

	if filter.HostID != "" {
		query = query.Where(squirrel.Eq{"host_id": filter.HostID})
	} else {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("created_at DESC", "id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list properties query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties failed: %w", err)
	}
	defer rows.Close()

	var (
		properties []*Property
		total      int
	)
	for rows.Next() {
		var (
			p     Property
			kind  string
			value int
		)
		if err := rows.Scan(
			&p.ID, &p.HostID, &p.Title, &p.MaxGuests, &p.PricePerNight,
			&kind, &value, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan property failed: %w", err)
		}
		if p.Policy, err = DecodePolicy(kind, value); err != nil {
			return nil, 0, fmt.Errorf("decode policy of property %s failed: %w", p.ID, err)
		}
		properties = append(properties, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate properties failed: %w", err)
	}

	return properties, total, nil
}

func (r *pgxRepository) UpdatePolicy(ctx context.Context, id string, policy Policy) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.properties").
		Set("who_can_book", string(policy.Kind())).
		Set("policy_value", policy.Value()).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update policy query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update policy failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ReplaceBlockedIntervals(ctx context.Context, id string, blocks []availability.Block) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := LockForUpdate(ctx, tx, id); err != nil {
			return err
		}

		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		query, args, err := psql.Delete("public.property_blocked_intervals").
			Where(squirrel.Eq{"property_id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete blocked intervals query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("delete blocked intervals failed: %w", err)
		}

		if err := insertBlocks(ctx, tx, id, blocks); err != nil {
			return err
		}

		query, args, err = psql.Update("public.properties").
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build touch property query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("touch property failed: %w", err)
		}
		return nil
	})
}

func insertBlocks(ctx context.Context, tx pgx.Tx, propertyID string, blocks []availability.Block) error {
	if len(blocks) == 0 {
		return nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	insert := psql.Insert("public.property_blocked_intervals").
		Columns("property_id", "start_date", "end_date", "reason")
	for _, b := range blocks {
		insert = insert.Values(propertyID, b.Interval.Start, b.Interval.End, b.Reason)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert blocked intervals query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert blocked intervals failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) listBlocks(ctx context.Context, propertyID string) ([]availability.Block, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("start_date", "end_date", "reason").
		From("public.property_blocked_intervals").
		Where(squirrel.Eq{"property_id": propertyID}).
		OrderBy("start_date", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list blocked intervals query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocked intervals failed: %w", err)
	}
	defer rows.Close()

	var blocks []availability.Block
	for rows.Next() {
		var b availability.Block
		if err := rows.Scan(&b.Interval.Start, &b.Interval.End, &b.Reason); err != nil {
			return nil, fmt.Errorf("scan blocked interval failed: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked intervals failed: %w", err)
	}
	return blocks, nil
}
