// README: Wizard session service persists one controller per browser session and submits bookings.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tourbook/internal/logging"
	"tourbook/internal/modules/booking"
	"tourbook/internal/modules/pricing"
)

// BookingCreator turns a submission into a persisted booking. booking.Service satisfies it.
type BookingCreator interface {
	Create(ctx context.Context, cmd booking.CreateCommand) (*booking.Booking, error)
}

// View is what the presentation layer renders after every call.
type View struct {
	SessionID string            `json:"session_id"`
	Step      Step              `json:"step"`
	StepName  string            `json:"step_name"`
	Draft     Draft             `json:"draft"`
	Errors    FieldErrors       `json:"errors"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	CanGoBack bool              `json:"can_go_back"`
	IsFinal   bool              `json:"is_final"`
}

type Service struct {
	estimator Estimator
	sessions  SessionStore
	bookings  BookingCreator
	opts      []Option
}

func NewService(est Estimator, sessions SessionStore, bookings BookingCreator, opts ...Option) *Service {
	return &Service{estimator: est, sessions: sessions, bookings: bookings, opts: opts}
}

func (s *Service) Start(ctx context.Context, prefill Prefill) (View, error) {
	id := uuid.NewString()
	c := NewController(s.estimator, prefill, s.opts...)
	if err := s.sessions.Save(ctx, id, c.State()); err != nil {
		return View{}, err
	}
	logging.EventCtx(ctx, "wizard", "start", fmt.Sprintf("session=%s service=%s", id, c.Draft().ServiceType))
	return viewOf(id, c), nil
}

func (s *Service) View(ctx context.Context, id string) (View, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return viewOf(id, c), nil
}

func (s *Service) Edit(ctx context.Context, id string, e Edit) (View, error) {
	return s.mutate(ctx, id, func(c *Controller) error { return c.Apply(e) })
}

// Next returns the updated view together with a *ValidationError when the gate fails;
// the errors are persisted either way.
func (s *Service) Next(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, (*Controller).Next)
}

func (s *Service) Back(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, (*Controller).Back)
}

// Submit creates the booking with the total the customer last saw and ends the session.
// The session is claimed before the booking is written, so one session yields at
// most one booking; a concurrent or repeated submit gets ErrSessionNotFound.
func (s *Service) Submit(ctx context.Context, id string) (*booking.Booking, error) {
	st, err := s.sessions.Claim(ctx, id)
	if err != nil {
		return nil, err
	}
	c := RestoreController(s.estimator, st, s.opts...)
	if c.Submitted() {
		return nil, ErrSubmitted
	}
	sub, err := c.Submit()
	if err != nil {
		// hand the draft back; gate errors travel with it
		s.release(ctx, id, c.State())
		return nil, err
	}

	d := sub.Draft
	b, err := s.bookings.Create(ctx, booking.CreateCommand{
		ServiceType:     d.ServiceType,
		CustomerName:    d.Name,
		CustomerEmail:   d.Email,
		CustomerPhone:   d.Phone,
		Passengers:      d.Passengers,
		PickupLocation:  d.PickupLocation,
		DropoffLocation: d.DropoffLocation,
		PickupDate:      d.Date,
		PickupTime:      d.Time,
		SpecialRequests: d.SpecialRequests,
		Total:           sub.Total,
	})
	if err != nil {
		s.release(ctx, id, st)
		return nil, err
	}
	logging.EventCtx(ctx, "wizard", "submit", fmt.Sprintf("session=%s booking=%s total=%s", id, b.BookingNumber, sub.Total))
	return b, nil
}

// release puts a claimed session back after a submit that created nothing.
func (s *Service) release(ctx context.Context, id string, st State) {
	if err := s.sessions.Save(ctx, id, st); err != nil {
		logging.EventCtx(ctx, "wizard", "submit", fmt.Sprintf("session=%s release_err=%v", id, err))
	}
}

// Quote prices an edit applied to a fresh default draft without creating a session.
func (s *Service) Quote(e Edit) (pricing.Breakdown, error) {
	c := NewController(s.estimator, Prefill{}, s.opts...)
	if err := c.Apply(e); err != nil {
		return pricing.Breakdown{}, err
	}
	return c.Breakdown(), nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*Controller) error) (View, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	opErr := fn(c)
	var ve *ValidationError
	if opErr != nil && !errors.As(opErr, &ve) {
		return viewOf(id, c), opErr
	}
	if err := s.sessions.Update(ctx, id, c.State()); err != nil {
		return View{}, err
	}
	return viewOf(id, c), opErr
}

func (s *Service) load(ctx context.Context, id string) (*Controller, error) {
	st, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	c := RestoreController(s.estimator, st, s.opts...)
	if c.Submitted() {
		return nil, ErrSubmitted
	}
	return c, nil
}

func viewOf(id string, c *Controller) View {
	return View{
		SessionID: id,
		Step:      c.Step(),
		StepName:  c.Step().String(),
		Draft:     c.Draft(),
		Errors:    c.Errors(),
		Breakdown: c.Breakdown(),
		CanGoBack: c.Step() > StepServiceSelection,
		IsFinal:   c.Step() == StepContactDetails,
	}
}

// SessionTTLFromMinutes converts a configured minute count into a TTL.
func SessionTTLFromMinutes(minutes int) time.Duration {
	if minutes <= 0 {
		return DefaultSessionTTL
	}
	return time.Duration(minutes) * time.Minute
}
