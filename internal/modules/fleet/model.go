// README: Drivers and vehicles that bookings reference by id.
package fleet

import (
	"errors"

	"tourbook/internal/types"
)

var (
	ErrNotFound   = errors.New("fleet record not found")
	ErrBadRequest = errors.New("bad request")
)

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnTour    DriverStatus = "on_tour"
	DriverBreak     DriverStatus = "break"
	DriverOffline   DriverStatus = "offline"
)

func (s DriverStatus) Valid() bool {
	switch s {
	case DriverAvailable, DriverOnTour, DriverBreak, DriverOffline:
		return true
	}
	return false
}

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleInUse       VehicleStatus = "in_use"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleRetired     VehicleStatus = "retired"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleInUse, VehicleMaintenance, VehicleRetired:
		return true
	}
	return false
}

type Driver struct {
	ID            types.ID     `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	LicenseNumber string       `json:"license_number"`
	Status        DriverStatus `json:"status"`
	VehicleID     *types.ID    `json:"vehicle_id,omitempty"`
}

type Vehicle struct {
	ID           types.ID      `json:"id"`
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	LicensePlate string        `json:"license_plate"`
	Seats        int           `json:"seats"`
	Type         string        `json:"type"`
	Status       VehicleStatus `json:"status"`
}
