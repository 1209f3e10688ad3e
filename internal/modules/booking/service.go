// README: Booking service implements lifecycle transitions, assignment and persistence.
package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tourbook/internal/logging"
	"tourbook/internal/types"
)

// Repository is the persistence collaborator. UpdateStatus and Assign are
// compare-and-set writes keyed on status_version; they report false when the
// precondition no longer holds.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*Booking, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error)
	Assign(ctx context.Context, id types.ID, version int, driverID, vehicleID *types.ID) (bool, error)
	ActiveBookingForDriver(ctx context.Context, driverID types.ID) (*types.ID, error)
	ActiveBookingForVehicle(ctx context.Context, vehicleID types.ID) (*types.ID, error)
	SetPaymentIntent(ctx context.Context, id types.ID, intentID string) error
	SetPaymentStatus(ctx context.Context, id types.ID, ps PaymentStatus) error
	AppendEvent(ctx context.Context, e *Event) error
	List(ctx context.Context, f Filter) ([]*Booking, int, error)
	Counts(ctx context.Context, day time.Time) (Counts, error)
}

// Resources looks up drivers and vehicles; bookings only hold their ids.
type Resources interface {
	DriverExists(ctx context.Context, id types.ID) (bool, error)
	VehicleExists(ctx context.Context, id types.ID) (bool, error)
}

// Notifier consumes transition events (emails, live dashboards).
type Notifier interface {
	Notify(ctx context.Context, e Event, b *Booking) error
}

type Service struct {
	store     Repository
	resources Resources
	notifier  Notifier
	now       func() time.Time
	loc       *time.Location
}

type Option func(*Service)

func WithResources(r Resources) Option { return func(s *Service) { s.resources = r } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLocation sets the zone that decides which pickup date counts as today.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(store Repository, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateCommand struct {
	ServiceType     types.ServiceType
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	Passengers      int
	PickupLocation  string
	DropoffLocation string
	PickupDate      string // YYYY-MM-DD
	PickupTime      string // HH:MM
	SpecialRequests string
	// Total is the fare shown to the customer at submission.
	Total types.Money
}

type TransitionCommand struct {
	BookingID types.ID
	To        Status
	ActorType string
	ActorID   *types.ID
	Reason    string
}

type AssignCommand struct {
	BookingID types.ID
	DriverID  *types.ID
	VehicleID *types.ID
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	if !cmd.ServiceType.Valid() ||
		strings.TrimSpace(cmd.CustomerName) == "" ||
		strings.TrimSpace(cmd.CustomerEmail) == "" ||
		strings.TrimSpace(cmd.CustomerPhone) == "" ||
		strings.TrimSpace(cmd.PickupLocation) == "" ||
		cmd.Passengers < 1 ||
		cmd.Total.Amount < 0 || cmd.Total.Currency == "" {
		return nil, ErrBadRequest
	}
	date, err := time.Parse(time.DateOnly, cmd.PickupDate)
	if err != nil {
		return nil, fmt.Errorf("%w: pickup date: %v", ErrBadRequest, err)
	}

	now := s.now()
	b := &Booking{
		ID:              types.ID(uuid.NewString()),
		BookingNumber:   newBookingNumber(now),
		ServiceType:     cmd.ServiceType,
		CustomerName:    strings.TrimSpace(cmd.CustomerName),
		CustomerEmail:   strings.TrimSpace(cmd.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(cmd.CustomerPhone),
		Passengers:      cmd.Passengers,
		PickupLocation:  strings.TrimSpace(cmd.PickupLocation),
		DropoffLocation: strings.TrimSpace(cmd.DropoffLocation),
		PickupDate:      date,
		PickupTime:      cmd.PickupTime,
		SpecialRequests: strings.TrimSpace(cmd.SpecialRequests),
		Status:          StatusPending,
		StatusVersion:   0,
		PaymentStatus:   PaymentPending,
		TotalPrice:      cmd.Total,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	s.record(ctx, b, Event{
		BookingID:  b.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusPending,
		ActorType:  ActorCustomer,
		CreatedAt:  now,
	})
	return b, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Booking, int, error) {
	return s.store.List(ctx, f.Normalized())
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.store.Counts(ctx, s.now().In(s.loc))
}

// Transition moves a booking to cmd.To. The stored state is untouched on any error.
func (s *Service) Transition(ctx context.Context, cmd TransitionCommand) (*Booking, error) {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, cmd.To) {
		return nil, &InvalidTransitionError{From: b.Status, To: cmd.To}
	}
	var reason *string
	if r := strings.TrimSpace(cmd.Reason); r != "" {
		reason = &r
	}
	ok, err := s.store.UpdateStatus(ctx, b.ID, b.Status, cmd.To, b.StatusVersion, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}

	now := s.now()
	from := b.Status
	b.Status = cmd.To
	b.StatusVersion++
	b.UpdatedAt = now
	switch cmd.To {
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

	actorType := cmd.ActorType
	if actorType == "" {
		actorType = ActorOperator
	}
	s.record(ctx, b, Event{
		BookingID:  b.ID,
		FromStatus: from,
		ToStatus:   cmd.To,
		ActorType:  actorType,
		ActorID:    cmd.ActorID,
		Reason:     reason,
		CreatedAt:  now,
	})
	return b, nil
}

func (s *Service) Confirm(ctx context.Context, id types.ID, actorID *types.ID) (*Booking, error) {
	return s.Transition(ctx, TransitionCommand{BookingID: id, To: StatusConfirmed, ActorType: ActorOperator, ActorID: actorID})
}

func (s *Service) Start(ctx context.Context, id types.ID, actorID *types.ID) (*Booking, error) {
	return s.Transition(ctx, TransitionCommand{BookingID: id, To: StatusInProgress, ActorType: ActorOperator, ActorID: actorID})
}

func (s *Service) Complete(ctx context.Context, id types.ID, actorID *types.ID) (*Booking, error) {
	return s.Transition(ctx, TransitionCommand{BookingID: id, To: StatusCompleted, ActorType: ActorOperator, ActorID: actorID})
}

func (s *Service) Cancel(ctx context.Context, id types.ID, actorType string, actorID *types.ID, reason string) (*Booking, error) {
	return s.Transition(ctx, TransitionCommand{BookingID: id, To: StatusCancelled, ActorType: actorType, ActorID: actorID, Reason: reason})
}

// Assign attaches a driver and/or vehicle to a confirmed booking. A nil ref
// leaves the current assignment unchanged.
func (s *Service) Assign(ctx context.Context, cmd AssignCommand) (*Booking, error) {
	if cmd.DriverID == nil && cmd.VehicleID == nil {
		return nil, ErrBadRequest
	}
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusConfirmed {
		return nil, ErrNotAssignable
	}

	if cmd.DriverID != nil {
		if err := s.checkResource(ctx, b.ID, *cmd.DriverID, s.driverExists, s.store.ActiveBookingForDriver); err != nil {
			return nil, err
		}
	}
	if cmd.VehicleID != nil {
		if err := s.checkResource(ctx, b.ID, *cmd.VehicleID, s.vehicleExists, s.store.ActiveBookingForVehicle); err != nil {
			return nil, err
		}
	}

	ok, err := s.store.Assign(ctx, b.ID, b.StatusVersion, cmd.DriverID, cmd.VehicleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	if cmd.DriverID != nil {
		b.DriverID = cmd.DriverID
	}
	if cmd.VehicleID != nil {
		b.VehicleID = cmd.VehicleID
	}
	b.StatusVersion++
	b.UpdatedAt = s.now()
	logging.EventCtx(ctx, "booking", "assign", fmt.Sprintf("booking=%s driver=%s vehicle=%s", b.ID, idOrDash(b.DriverID), idOrDash(b.VehicleID)))
	return b, nil
}

func (s *Service) AttachPaymentIntent(ctx context.Context, id types.ID, intentID string) error {
	if strings.TrimSpace(intentID) == "" {
		return ErrBadRequest
	}
	return s.store.SetPaymentIntent(ctx, id, intentID)
}

// SetPaymentStatus records the payment collaborator's outcome. It never changes Status.
func (s *Service) SetPaymentStatus(ctx context.Context, id types.ID, ps PaymentStatus) error {
	if !ps.Valid() {
		return ErrBadRequest
	}
	if err := s.store.SetPaymentStatus(ctx, id, ps); err != nil {
		return err
	}
	logging.EventCtx(ctx, "booking", "payment_status", fmt.Sprintf("booking=%s payment=%s", id, ps))
	return nil
}

func (s *Service) SetPaymentStatusByIntent(ctx context.Context, intentID string, ps PaymentStatus) (*Booking, error) {
	b, err := s.store.GetByPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if err := s.SetPaymentStatus(ctx, b.ID, ps); err != nil {
		return nil, err
	}
	b.PaymentStatus = ps
	return b, nil
}

func (s *Service) checkResource(
	ctx context.Context,
	bookingID, resID types.ID,
	exists func(context.Context, types.ID) (bool, error),
	active func(context.Context, types.ID) (*types.ID, error),
) error {
	ok, err := exists(ctx, resID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrResourceNotFound
	}
	other, err := active(ctx, resID)
	if err != nil {
		return err
	}
	if other != nil && *other != bookingID {
		return ErrResourceBusy
	}
	return nil
}

func (s *Service) driverExists(ctx context.Context, id types.ID) (bool, error) {
	if s.resources == nil {
		return true, nil
	}
	return s.resources.DriverExists(ctx, id)
}

func (s *Service) vehicleExists(ctx context.Context, id types.ID) (bool, error) {
	if s.resources == nil {
		return true, nil
	}
	return s.resources.VehicleExists(ctx, id)
}

// record appends the audit event and notifies; neither failure undoes the transition.
func (s *Service) record(ctx context.Context, b *Booking, e Event) {
	if err := s.store.AppendEvent(ctx, &e); err != nil {
		logging.EventCtx(ctx, "booking", "append_event", fmt.Sprintf("booking=%s err=%v", b.ID, err))
	}
	logging.EventCtx(ctx, "booking", "transition", fmt.Sprintf("booking=%s %s->%s actor=%s", b.ID, e.FromStatus, e.ToStatus, e.ActorType))
	if s.notifier == nil {
		return
	}
	cp := *b
	if err := s.notifier.Notify(ctx, e, &cp); err != nil {
		logging.EventCtx(ctx, "booking", "notify", fmt.Sprintf("booking=%s err=%v", b.ID, err))
	}
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newBookingNumber returns ICE-<base36 millis>-<3 random chars>.
func newBookingNumber(now time.Time) string {
	var suffix [3]byte
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36))))
		if err != nil {
			suffix[i] = base36[now.UnixNano()%int64(len(base36))]
			continue
		}
		suffix[i] = base36[n.Int64()]
	}
	return "ICE-" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)) + "-" + string(suffix[:])
}

func idOrDash(id *types.ID) string {
	if id == nil {
		return "-"
	}
	return string(*id)
}

// IsConflict reports whether err asks the caller to refetch and retry.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
