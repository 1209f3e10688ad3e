// README: Transition notifiers: fan-out, Redis pub/sub and a log sink.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tourbook/internal/logging"
	"tourbook/internal/modules/booking"
)

// DefaultChannel carries every booking transition for live dashboards.
const DefaultChannel = "booking:transitions"

// Fanout delivers to every notifier and joins their errors.
type Fanout []booking.Notifier

func (f Fanout) Notify(ctx context.Context, e booking.Event, b *booking.Booking) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, e, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Message is the pub/sub payload.
type Message struct {
	BookingID     string    `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ActorType     string    `json:"actor_type"`
	PaymentStatus string    `json:"payment_status"`
	At            time.Time `json:"at"`
}

func NewMessage(e booking.Event, b *booking.Booking) Message {
	return Message{
		BookingID:     string(e.BookingID),
		BookingNumber: b.BookingNumber,
		From:          string(e.FromStatus),
		To:            string(e.ToStatus),
		ActorType:     e.ActorType,
		PaymentStatus: string(b.PaymentStatus),
		At:            e.CreatedAt.UTC(),
	}
}

type Publisher struct {
	redis   *redis.Client
	channel string
}

func NewPublisher(redis *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{redis: redis, channel: channel}
}

func (p *Publisher) Notify(ctx context.Context, e booking.Event, b *booking.Booking) error {
	raw, err := json.Marshal(NewMessage(e, b))
	if err != nil {
		return err
	}
	if err := p.redis.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}

// LogNotifier writes transitions to the log; used when no mail server is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, e booking.Event, b *booking.Booking) error {
	logging.EventCtx(ctx, "notify", "transition",
		fmt.Sprintf("booking=%s %s->%s actor=%s", b.BookingNumber, e.FromStatus, e.ToStatus, e.ActorType))
	return nil
}
