// README: Booking store backed by PostgreSQL.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tourbook/internal/types"
)

const pgUniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const bookingColumns = `
	id, booking_number, service_type, customer_name, customer_email, customer_phone,
	passengers, pickup_location, dropoff_location, pickup_date, pickup_time, special_requests,
	status, status_version, payment_status, payment_intent_id, driver_id, vehicle_id,
	total_amount, currency, cancel_reason,
	created_at, updated_at, confirmed_at, started_at, completed_at, cancelled_at`

func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, booking_number, service_type, customer_name, customer_email, customer_phone,
			passengers, pickup_location, dropoff_location, pickup_date, pickup_time, special_requests,
			status, status_version, payment_status, total_amount, currency, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19
		)`,
		string(b.ID), b.BookingNumber, string(b.ServiceType),
		b.CustomerName, b.CustomerEmail, b.CustomerPhone,
		b.Passengers, b.PickupLocation, b.DropoffLocation,
		b.PickupDate, b.PickupTime, b.SpecialRequests,
		string(b.Status), b.StatusVersion, string(b.PaymentStatus),
		b.TotalPrice.Amount, b.TotalPrice.Currency,
		b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	return scanBooking(row)
}

func (s *Store) GetByPaymentIntent(ctx context.Context, intentID string) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE payment_intent_id = $1`, intentID)
	return scanBooking(row)
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var driverID, vehicleID *string
	err := row.Scan(
		&b.ID, &b.BookingNumber, &b.ServiceType, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone,
		&b.Passengers, &b.PickupLocation, &b.DropoffLocation, &b.PickupDate, &b.PickupTime, &b.SpecialRequests,
		&b.Status, &b.StatusVersion, &b.PaymentStatus, &b.PaymentIntentID, &driverID, &vehicleID,
		&b.TotalPrice.Amount, &b.TotalPrice.Currency, &b.CancelReason,
		&b.CreatedAt, &b.UpdatedAt, &b.ConfirmedAt, &b.StartedAt, &b.CompletedAt, &b.CancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if driverID != nil {
		b.DriverID = types.IDPtr(*driverID)
	}
	if vehicleID != nil {
		b.VehicleID = types.IDPtr(*vehicleID)
	}
	return &b, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
			status_version = status_version + 1,
			updated_at = NOW(),
			confirmed_at = CASE WHEN $1 = 'confirmed' THEN NOW() ELSE confirmed_at END,
			started_at = CASE WHEN $1 = 'in_progress' THEN NOW() ELSE started_at END,
			completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
			cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END,
			cancel_reason = CASE WHEN $1 = 'cancelled' THEN $2 ELSE cancel_reason END
		WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to),
		reason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Assign relies on the partial unique indexes over active bookings; a
// concurrent claim of the same driver or vehicle surfaces as ErrResourceBusy.
func (s *Store) Assign(ctx context.Context, id types.ID, version int, driverID, vehicleID *types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET driver_id = COALESCE($1, driver_id),
			vehicle_id = COALESCE($2, vehicle_id),
			status_version = status_version + 1,
			updated_at = NOW()
		WHERE id = $3 AND status = 'confirmed' AND status_version = $4`,
		idString(driverID),
		idString(vehicleID),
		string(id),
		version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return false, ErrResourceBusy
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ActiveBookingForDriver(ctx context.Context, driverID types.ID) (*types.ID, error) {
	return s.activeFor(ctx, "driver_id", driverID)
}

func (s *Store) ActiveBookingForVehicle(ctx context.Context, vehicleID types.ID) (*types.ID, error) {
	return s.activeFor(ctx, "vehicle_id", vehicleID)
}

func (s *Store) activeFor(ctx context.Context, column string, resID types.ID) (*types.ID, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id FROM bookings
		WHERE `+column+` = $1
		  AND status IN ('pending','confirmed','in_progress')
		LIMIT 1`, string(resID),
	)
	var id string
	err := row.Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return types.IDPtr(id), nil
}

func (s *Store) SetPaymentIntent(ctx context.Context, id types.ID, intentID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings SET payment_intent_id = $1, updated_at = NOW() WHERE id = $2`,
		intentID, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetPaymentStatus(ctx context.Context, id types.ID, ps PaymentStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings SET payment_status = $1, updated_at = NOW() WHERE id = $2`,
		string(ps), string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO booking_state_events (
			booking_id, from_status, to_status, actor_type, actor_id, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(e.BookingID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		idString(e.ActorID),
		e.Reason,
		e.CreatedAt,
	)
	return err
}

func (s *Store) List(ctx context.Context, f Filter) ([]*Booking, int, error) {
	f = f.Normalized()
	where, args := filterClause(f)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.offset())
	rows, err := s.db.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM bookings%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)-1, len(args),
	), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*Booking, 0, f.Limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func filterClause(f Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.PaymentStatus != "" {
		add("payment_status = $%d", string(f.PaymentStatus))
	}
	if f.ServiceType != "" {
		add("service_type = $%d", string(f.ServiceType))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(booking_number ILIKE $%d OR customer_name ILIKE $%d OR customer_email ILIKE $%d OR customer_phone ILIKE $%d)", n, n, n, n))
	}
	if f.DateFrom != nil {
		add("pickup_date >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("pickup_date <= $%d", *f.DateTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) Counts(ctx context.Context, day time.Time) (Counts, error) {
	var c Counts
	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE pickup_date = $1::date)
		FROM bookings`, day.Format(time.DateOnly),
	).Scan(&c.Pending, &c.Confirmed, &c.Today)
	return c, err
}

func idString(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
