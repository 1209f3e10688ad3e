// README: Fleet store backed by PostgreSQL.
package fleet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tourbook/internal/types"
)

// Directory is what the rest of the system needs from the fleet.
type Directory interface {
	GetDriver(ctx context.Context, id types.ID) (*Driver, error)
	GetVehicle(ctx context.Context, id types.ID) (*Vehicle, error)
	ListDrivers(ctx context.Context, status DriverStatus) ([]*Driver, error)
	ListVehicles(ctx context.Context, status VehicleStatus) ([]*Vehicle, error)
	DriverExists(ctx context.Context, id types.ID) (bool, error)
	VehicleExists(ctx context.Context, id types.ID) (bool, error)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) CreateDriver(ctx context.Context, d *Driver) error {
	if d.Status == "" {
		d.Status = DriverAvailable
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO drivers (id, name, email, phone, license_number, status, vehicle_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(d.ID), d.Name, d.Email, d.Phone, d.LicenseNumber, string(d.Status), idString(d.VehicleID),
	)
	return err
}

func (s *Store) CreateVehicle(ctx context.Context, v *Vehicle) error {
	if v.Status == "" {
		v.Status = VehicleAvailable
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO vehicles (id, make, model, license_plate, seats, vehicle_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(v.ID), v.Make, v.Model, v.LicensePlate, v.Seats, v.Type, string(v.Status),
	)
	return err
}

const driverColumns = `id, name, email, phone, license_number, status, vehicle_id`

const vehicleColumns = `id, make, model, license_plate, seats, vehicle_type, status`

func (s *Store) GetDriver(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, string(id))
	d, err := scanDriver(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func (s *Store) GetVehicle(ctx context.Context, id types.ID) (*Vehicle, error) {
	row := s.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, string(id))
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

// ListDrivers returns all drivers, or only those in status when it is set.
func (s *Store) ListDrivers(ctx context.Context, status DriverStatus) ([]*Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+driverColumns+` FROM drivers
		WHERE $1 = '' OR status = $1
		ORDER BY name`, string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) ListVehicles(ctx context.Context, status VehicleStatus) ([]*Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+vehicleColumns+` FROM vehicles
		WHERE $1 = '' OR status = $1
		ORDER BY make, model`, string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) DriverExists(ctx context.Context, id types.ID) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM drivers WHERE id = $1)`, id)
}

func (s *Store) VehicleExists(ctx context.Context, id types.ID) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM vehicles WHERE id = $1)`, id)
}

func (s *Store) exists(ctx context.Context, query string, id types.ID) (bool, error) {
	var ok bool
	if err := s.db.QueryRow(ctx, query, string(id)).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func scanDriver(row pgx.Row) (*Driver, error) {
	var d Driver
	var vehicleID *string
	if err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.LicenseNumber, &d.Status, &vehicleID); err != nil {
		return nil, err
	}
	if vehicleID != nil {
		d.VehicleID = types.IDPtr(*vehicleID)
	}
	return &d, nil
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	if err := row.Scan(&v.ID, &v.Make, &v.Model, &v.LicensePlate, &v.Seats, &v.Type, &v.Status); err != nil {
		return nil, err
	}
	return &v, nil
}

func idString(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
