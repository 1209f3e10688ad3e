// README: In-memory booking store for local runs and tests; same compare-and-set rules as Store.
package booking

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tourbook/internal/types"
)

type MemoryStore struct {
	mu       sync.Mutex
	bookings map[types.ID]*Booking
	events   []Event
	seq      int64
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[types.ID]*Booking),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; ok {
		return ErrConflict
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id types.ID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MemoryStore) GetByPaymentIntent(ctx context.Context, intentID string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.PaymentIntentID != nil && *b.PaymentIntentID == intentID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from || b.StatusVersion != version {
		return false, nil
	}
	now := m.now()
	b.Status = to
	b.StatusVersion++
	b.UpdatedAt = now
	switch to {
	case StatusConfirmed:
		b.ConfirmedAt = &now
	case StatusInProgress:
		b.StartedAt = &now
	case StatusCompleted:
		b.CompletedAt = &now
	case StatusCancelled:
		b.CancelledAt = &now
		b.CancelReason = reason
	}
	return true, nil
}

func (m *MemoryStore) Assign(ctx context.Context, id types.ID, version int, driverID, vehicleID *types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != StatusConfirmed || b.StatusVersion != version {
		return false, nil
	}
	for _, other := range m.bookings {
		if other.ID == id || !other.Status.Active() {
			continue
		}
		if sameID(driverID, other.DriverID) || sameID(vehicleID, other.VehicleID) {
			return false, ErrResourceBusy
		}
	}
	if driverID != nil {
		d := *driverID
		b.DriverID = &d
	}
	if vehicleID != nil {
		v := *vehicleID
		b.VehicleID = &v
	}
	b.StatusVersion++
	b.UpdatedAt = m.now()
	return true, nil
}

func (m *MemoryStore) ActiveBookingForDriver(ctx context.Context, driverID types.ID) (*types.ID, error) {
	return m.activeFor(func(b *Booking) bool { return sameID(&driverID, b.DriverID) })
}

func (m *MemoryStore) ActiveBookingForVehicle(ctx context.Context, vehicleID types.ID) (*types.ID, error) {
	return m.activeFor(func(b *Booking) bool { return sameID(&vehicleID, b.VehicleID) })
}

func (m *MemoryStore) activeFor(match func(*Booking) bool) (*types.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Status.Active() && match(b) {
			id := b.ID
			return &id, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) SetPaymentIntent(ctx context.Context, id types.ID, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.PaymentIntentID = &intentID
	b.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) SetPaymentStatus(ctx context.Context, id types.ID, ps PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.PaymentStatus = ps
	b.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) AppendEvent(ctx context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e.ID = m.seq
	m.events = append(m.events, *e)
	return nil
}

// Events returns the audit trail of one booking in append order.
func (m *MemoryStore) Events(id types.ID) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.BookingID == id {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemoryStore) List(ctx context.Context, f Filter) ([]*Booking, int, error) {
	f = f.Normalized()
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*Booking
	for _, b := range m.bookings {
		if f.matches(b) {
			cp := *b
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].BookingNumber > matched[j].BookingNumber
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := f.offset()
	if start >= total {
		return []*Booking{}, total, nil
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f Filter) matches(b *Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.ServiceType != "" && b.ServiceType != f.ServiceType {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(b.BookingNumber), q) &&
			!strings.Contains(strings.ToLower(b.CustomerName), q) &&
			!strings.Contains(strings.ToLower(b.CustomerEmail), q) &&
			!strings.Contains(b.CustomerPhone, q) {
			return false
		}
	}
	if f.DateFrom != nil && b.PickupDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && b.PickupDate.After(*f.DateTo) {
		return false
	}
	return true
}

func (m *MemoryStore) Counts(ctx context.Context, day time.Time) (Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c Counts
	today := day.Format(time.DateOnly)
	for _, b := range m.bookings {
		switch b.Status {
		case StatusPending:
			c.Pending++
		case StatusConfirmed:
			c.Confirmed++
		}
		if b.PickupDate.Format(time.DateOnly) == today {
			c.Today++
		}
	}
	return c, nil
}

func sameID(a, b *types.ID) bool {
	return a != nil && b != nil && *a == *b
}
