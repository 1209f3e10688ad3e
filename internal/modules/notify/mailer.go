// README: SMTP mailer sending customer and operator emails on booking transitions.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"tourbook/internal/modules/booking"
)

// Sender is satisfied by *mail.Client.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Mailer struct {
	sender     Sender
	from       string
	fromName   string
	adminEmail string
}

func NewMailer(sender Sender, from, fromName, adminEmail string) *Mailer {
	return &Mailer{sender: sender, from: from, fromName: fromName, adminEmail: adminEmail}
}

func (m *Mailer) Notify(ctx context.Context, e booking.Event, b *booking.Booking) error {
	msgs, err := m.Messages(e, b)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	return m.sender.DialAndSendWithContext(ctx, msgs...)
}

// Messages builds the emails a transition triggers. Starting a trip sends nothing.
func (m *Mailer) Messages(e booking.Event, b *booking.Booking) ([]*mail.Msg, error) {
	var out []*mail.Msg
	add := func(to, subject, body string) error {
		msg, err := m.message(to, subject, body)
		if err != nil {
			return err
		}
		out = append(out, msg)
		return nil
	}

	var err error
	switch e.ToStatus {
	case booking.StatusPending:
		err = add(b.CustomerEmail, "Booking received - "+b.BookingNumber, customerBody(b,
			"Thank you for your booking. We will confirm it shortly."))
		if err == nil && m.adminEmail != "" {
			err = add(m.adminEmail, "New booking "+b.BookingNumber, adminBody(b))
		}
	case booking.StatusConfirmed:
		err = add(b.CustomerEmail, "Booking confirmed - "+b.BookingNumber, customerBody(b,
			"Your booking is confirmed. Your driver will meet you at the pickup location."))
	case booking.StatusCompleted:
		err = add(b.CustomerEmail, "Thank you for travelling with us - "+b.BookingNumber, customerBody(b,
			"We hope you enjoyed the trip."))
	case booking.StatusCancelled:
		note := "Your booking has been cancelled."
		if e.Reason != nil && *e.Reason != "" {
			note += " Reason: " + *e.Reason
		}
		err = add(b.CustomerEmail, "Booking cancelled - "+b.BookingNumber, customerBody(b, note))
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Mailer) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func customerBody(b *booking.Booking, lead string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n%s\n\n", b.CustomerName, lead)
	writeDetails(&sb, b)
	return sb.String()
}

func adminBody(b *booking.Booking) string {
	var sb strings.Builder
	sb.WriteString("A new booking was submitted.\n\n")
	writeDetails(&sb, b)
	fmt.Fprintf(&sb, "Customer: %s <%s> %s\n", b.CustomerName, b.CustomerEmail, b.CustomerPhone)
	if b.SpecialRequests != "" {
		fmt.Fprintf(&sb, "Special requests: %s\n", b.SpecialRequests)
	}
	return sb.String()
}

func writeDetails(sb *strings.Builder, b *booking.Booking) {
	fmt.Fprintf(sb, "Booking number: %s\n", b.BookingNumber)
	fmt.Fprintf(sb, "Service: %s\n", b.ServiceType.Label())
	fmt.Fprintf(sb, "Date: %s at %s\n", b.PickupDate.Format("Monday, 2 January 2006"), b.PickupTime)
	fmt.Fprintf(sb, "Pickup: %s\n", b.PickupLocation)
	if b.DropoffLocation != "" {
		fmt.Fprintf(sb, "Drop-off: %s\n", b.DropoffLocation)
	}
	fmt.Fprintf(sb, "Passengers: %d\n", b.Passengers)
	fmt.Fprintf(sb, "Total: %s\n", b.TotalPrice)
}
