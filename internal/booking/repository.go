package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/stay-booking-backend/internal/availability"
	"github.com/nekogravitycat/stay-booking-backend/internal/db"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// Transition persists b.Status and the response fields, but only if the
	// stored status still equals from. A lost race yields ErrConcurrencyConflict.
	Transition(ctx context.Context, b *Booking, from Status) error

	// WithPropertyLock runs fn in one transaction holding the property's row
	// lock. Approvals and block edits of a property are serialized by it.
	WithPropertyLock(ctx context.Context, propertyID string, fn func(ctx context.Context, tx TxStore) error) error

	// CompleteEnded marks approved bookings whose check-out is on or before
	// asOf as completed and returns how many changed.
	CompleteEnded(ctx context.Context, asOf time.Time) (int64, error)
}

// TxStore is the view of the store available inside WithPropertyLock.
type TxStore interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	Snapshot(ctx context.Context, propertyID string) (*availability.Snapshot, error)
	Transition(ctx context.Context, b *Booking, from Status) error
}

type pgxRepository struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, lockTimeout: 5 * time.Second}
}

var bookingColumns = []string{
	"b.id", "b.property_id", "p.host_id", "b.guest_id", "b.check_in", "b.check_out",
	"b.guest_count", "b.message", "b.status", "b.host_response", "b.total_price",
	"b.connection_snapshot", "b.created_at", "b.updated_at", "b.responded_at",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var (
		b        Booking
		snapshot []byte
	)
	dest := []any{
		&b.ID, &b.PropertyID, &b.HostID, &b.GuestID, &b.CheckIn, &b.CheckOut,
		&b.GuestCount, &b.Message, &b.Status, &b.HostResponse, &b.TotalPrice,
		&snapshot, &b.CreatedAt, &b.UpdatedAt, &b.RespondedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		b.ConnectionSnapshot = &ConnectionSnapshot{}
		if err := json.Unmarshal(snapshot, b.ConnectionSnapshot); err != nil {
			return nil, fmt.Errorf("decode connection snapshot of booking %s failed: %w", b.ID, err)
		}
	}
	return &b, nil
}

func getBooking(ctx context.Context, q db.DBTX, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.properties p ON p.id = b.property_id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func transition(ctx context.Context, q db.DBTX, b *Booking, from Status) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", b.Status).
		Set("host_response", b.HostResponse).
		Set("responded_at", b.RespondedAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Where(squirrel.Eq{"status": from}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build transition booking query failed: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The row exists (we just read it), so its status moved underneath us.
			return ErrConcurrencyConflict
		}
		return mapWriteError(fmt.Errorf("transition booking failed: %w", err))
	}
	return nil
}

// mapWriteError turns database race signals into domain errors.
func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsExclusionViolation(err):
		return ErrConflict
	case db.IsConcurrencyError(err):
		return &concurrencyError{err: err}
	default:
		return err
	}
}

// concurrencyError keeps the driver error for logs while matching ErrConcurrencyConflict.
type concurrencyError struct {
	err error
}

func (e *concurrencyError) Error() string { return e.err.Error() }

func (e *concurrencyError) Unwrap() []error { return []error{ErrConcurrencyConflict, e.err} }

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	var snapshot any
	if b.ConnectionSnapshot != nil {
		data, err := json.Marshal(b.ConnectionSnapshot)
		if err != nil {
			return fmt.Errorf("encode connection snapshot failed: %w", err)
		}
		snapshot = string(data)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("property_id", "guest_id", "check_in", "check_out", "guest_count",
			"message", "status", "total_price", "connection_snapshot").
		Values(b.PropertyID, b.GuestID, b.CheckIn, b.CheckOut, b.GuestCount,
			b.Message, b.Status, b.TotalPrice, snapshot).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return getBooking(ctx, r.pool, id)
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(bookingColumns, "count(*) OVER() as total_count")...).
		From("public.bookings b").
		Join("public.properties p ON p.id = b.property_id")

	if filter.GuestID != "" {
		query = query.Where(squirrel.Eq{"b.guest_id": filter.GuestID})
	}
	if filter.HostID != "" {
		query = query.Where(squirrel.Eq{"p.host_id": filter.HostID})
	}
	if filter.PropertyID != "" {
		query = query.Where(squirrel.Eq{"b.property_id": filter.PropertyID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("b.check_in DESC", "b.created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var (
		bookings []*Booking
		total    int
	)
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Transition(ctx context.Context, b *Booking, from Status) error {
	return transition(ctx, r.pool, b, from)
}

func (r *pgxRepository) WithPropertyLock(ctx context.Context, propertyID string, fn func(ctx context.Context, tx TxStore) error) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Fail fast instead of queueing forever behind a stuck approval.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock timeout failed: %w", err)
		}
		if err := property.LockForUpdate(ctx, tx, propertyID); err != nil {
			return err
		}
		return fn(ctx, &pgxTxStore{tx: tx})
	})
	return mapWriteError(err)
}

func (r *pgxRepository) CompleteEnded(ctx context.Context, asOf time.Time) (int64, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", StatusCompleted).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"status": StatusApproved}).
		Where(squirrel.LtOrEq{"check_out": availability.DateOf(asOf)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build complete ended bookings query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("complete ended bookings failed: %w", err)
	}
	return ct.RowsAffected(), nil
}

type pgxTxStore struct {
	tx pgx.Tx
}

func (s *pgxTxStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	return getBooking(ctx, s.tx, id)
}

// Snapshot reads inside the locked transaction, so it is authoritative for
// the approval decision.
func (s *pgxTxStore) Snapshot(ctx context.Context, propertyID string) (*availability.Snapshot, error) {
	return availability.NewPgxReader(s.tx).Snapshot(ctx, propertyID, nil)
}

func (s *pgxTxStore) Transition(ctx context.Context, b *Booking, from Status) error {
	return transition(ctx, s.tx, b, from)
}
