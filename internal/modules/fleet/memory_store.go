// README: In-memory fleet directory for local runs and tests.
package fleet

import (
	"context"
	"sort"
	"sync"

	"tourbook/internal/types"
)

type MemoryStore struct {
	mu       sync.RWMutex
	drivers  map[types.ID]Driver
	vehicles map[types.ID]Vehicle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drivers:  make(map[types.ID]Driver),
		vehicles: make(map[types.ID]Vehicle),
	}
}

func (m *MemoryStore) CreateDriver(ctx context.Context, d *Driver) error {
	if d.ID == "" || d.Name == "" {
		return ErrBadRequest
	}
	if d.Status == "" {
		d.Status = DriverAvailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID] = *d
	return nil
}

func (m *MemoryStore) CreateVehicle(ctx context.Context, v *Vehicle) error {
	if v.ID == "" || v.Seats < 1 {
		return ErrBadRequest
	}
	if v.Status == "" {
		v.Status = VehicleAvailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = *v
	return nil
}

func (m *MemoryStore) GetDriver(ctx context.Context, id types.ID) (*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *MemoryStore) GetVehicle(ctx context.Context, id types.ID) (*Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (m *MemoryStore) ListDrivers(ctx context.Context, status DriverStatus) ([]*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if status != "" && d.Status != status {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) ListVehicles(ctx context.Context, status VehicleStatus) ([]*Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		if status != "" && v.Status != status {
			continue
		}
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Make == out[j].Make {
			return out[i].Model < out[j].Model
		}
		return out[i].Make < out[j].Make
	})
	return out, nil
}

func (m *MemoryStore) DriverExists(ctx context.Context, id types.ID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.drivers[id]
	return ok, nil
}

func (m *MemoryStore) VehicleExists(ctx context.Context, id types.ID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vehicles[id]
	return ok, nil
}
