package availability

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/nekogravitycat/stay-booking-backend/internal/db"
)

type pgxReader struct {
	q db.DBTX
}

// NewPgxReader reads snapshots through q, which may be a pool or a
// transaction. Inside a transaction holding the property lock the snapshot is
// authoritative for an approval decision.
func NewPgxReader(q db.DBTX) Reader {
	return &pgxReader{q: q}
}

func (r *pgxReader) Snapshot(ctx context.Context, propertyID string, window *Interval) (*Snapshot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	existsSQL, args, err := psql.Select("1").
		From("public.properties").
		Where(squirrel.Eq{"id": propertyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build property exists query failed: %w", err)
	}
	var exists bool
	if err := r.q.QueryRow(ctx, "SELECT EXISTS ("+existsSQL+")", args...).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check property exists failed: %w", err)
	}
	if !exists {
		return nil, ErrPropertyNotFound
	}

	snap := &Snapshot{PropertyID: propertyID}

	// Only approved bookings occupy dates.
	bookingsQuery := psql.Select("id::text", "guest_id::text", "check_in", "check_out").
		From("public.bookings").
		Where(squirrel.Eq{"property_id": propertyID}).
		Where(squirrel.Eq{"status": "approved"}).
		OrderBy("check_in")
	if window != nil {
		bookingsQuery = bookingsQuery.
			Where(squirrel.Lt{"check_in": window.End}).
			Where(squirrel.Gt{"check_out": window.Start})
	}

	sql, args, err := bookingsQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build approved bookings query failed: %w", err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query approved bookings failed: %w", err)
	}
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(&res.BookingID, &res.GuestID, &res.Interval.Start, &res.Interval.End); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan approved booking failed: %w", err)
		}
		snap.Approved = append(snap.Approved, res)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approved bookings failed: %w", err)
	}

	blocksQuery := psql.Select("start_date", "end_date", "reason").
		From("public.property_blocked_intervals").
		Where(squirrel.Eq{"property_id": propertyID}).
		OrderBy("start_date", "id")
	if window != nil {
		blocksQuery = blocksQuery.
			Where(squirrel.Lt{"start_date": window.End}).
			Where(squirrel.Gt{"end_date": window.Start})
	}

	sql, args, err = blocksQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build blocked intervals query failed: %w", err)
	}
	rows, err = r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query blocked intervals failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.Interval.Start, &b.Interval.End, &b.Reason); err != nil {
			return nil, fmt.Errorf("scan blocked interval failed: %w", err)
		}
		snap.Blocked = append(snap.Blocked, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked intervals failed: %w", err)
	}

	return snap, nil
}
