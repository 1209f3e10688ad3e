// README: Payment service hands the frozen booking total to the gateway and records webhook outcomes.
package payment

import (
	"context"
	"errors"
	"fmt"

	"tourbook/internal/logging"
	"tourbook/internal/modules/booking"
	"tourbook/internal/types"
)

var (
	ErrAlreadyPaid   = errors.New("booking is already paid")
	ErrNotPayable    = errors.New("booking cannot be paid in its current state")
	ErrBadSignature  = errors.New("webhook signature verification failed")
	ErrUnknownIntent = errors.New("payment intent does not belong to any booking")
)

const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded  = "charge.refunded"
)

type IntentRequest struct {
	BookingID     types.ID
	BookingNumber string
	CustomerEmail string
	Amount        types.Money
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// WebhookEvent is a verified gateway event reduced to what bookings need.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
}

type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	ParseEvent(payload []byte, signature string) (WebhookEvent, error)
}

// Bookings is the slice of booking.Service the payment flow uses.
type Bookings interface {
	Get(ctx context.Context, id types.ID) (*booking.Booking, error)
	AttachPaymentIntent(ctx context.Context, id types.ID, intentID string) error
	SetPaymentStatusByIntent(ctx context.Context, intentID string, ps booking.PaymentStatus) (*booking.Booking, error)
}

type Service struct {
	gateway  Gateway
	bookings Bookings
}

func NewService(gateway Gateway, bookings Bookings) *Service {
	return &Service{gateway: gateway, bookings: bookings}
}

// Initiate opens a payment for the booking's frozen total. The amount is
// never recomputed here.
func (s *Service) Initiate(ctx context.Context, bookingID types.ID) (*Intent, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == booking.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if b.Status == booking.StatusCancelled {
		return nil, ErrNotPayable
	}
	intent, err := s.gateway.CreateIntent(ctx, IntentRequest{
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		CustomerEmail: b.CustomerEmail,
		Amount:        b.PaymentInput(),
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if err := s.bookings.AttachPaymentIntent(ctx, b.ID, intent.ID); err != nil {
		return nil, err
	}
	logging.EventCtx(ctx, "payment", "initiate", fmt.Sprintf("booking=%s intent=%s amount=%s", b.BookingNumber, intent.ID, b.TotalPrice))
	return intent, nil
}

// StatusForEvent maps a gateway event type to the payment status it implies.
func StatusForEvent(eventType string) (booking.PaymentStatus, bool) {
	switch eventType {
	case EventIntentSucceeded:
		return booking.PaymentPaid, true
	case EventIntentFailed:
		return booking.PaymentFailed, true
	case EventChargeRefunded:
		return booking.PaymentRefunded, true
	}
	return "", false
}

// HandleWebhook verifies and applies one gateway event. It only ever touches
// the payment status; booking status is left to operators. Event types it
// does not care about are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	ps, ok := StatusForEvent(evt.Type)
	if !ok || evt.PaymentIntentID == "" {
		logging.EventCtx(ctx, "payment", "webhook_ignored", fmt.Sprintf("event=%s type=%s", evt.ID, evt.Type))
		return nil
	}
	b, err := s.bookings.SetPaymentStatusByIntent(ctx, evt.PaymentIntentID, ps)
	if errors.Is(err, booking.ErrNotFound) {
		return ErrUnknownIntent
	}
	if err != nil {
		return err
	}
	logging.EventCtx(ctx, "payment", "webhook", fmt.Sprintf("event=%s booking=%s payment=%s", evt.ID, b.BookingNumber, ps))
	return nil
}
