// README: Stripe PaymentIntents gateway.
package payment

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"tourbook/internal/types"
)

// Stripe wants ISK in hundredths even though the krona has no minor unit.
var stripeMinorFactor = map[string]int64{
	"ISK": 100,
}

type StripeGateway struct {
	client        *stripe.Client
	webhookSecret string
}

func NewStripeGateway(client *stripe.Client, webhookSecret string) *StripeGateway {
	return &StripeGateway{client: client, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(StripeAmount(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Amount.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"bookingId":     string(req.BookingID),
			"bookingNumber": req.BookingNumber,
		},
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	pi, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, err
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) ParseEvent(payload []byte, signature string) (WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return WebhookEvent{}, err
	}
	out := WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}
	switch out.Type {
	case EventIntentSucceeded, EventIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return WebhookEvent{}, err
		}
		out.PaymentIntentID = pi.ID
	case EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return WebhookEvent{}, err
		}
		if ch.PaymentIntent != nil {
			out.PaymentIntentID = ch.PaymentIntent.ID
		}
	}
	return out, nil
}

// StripeAmount converts a booking total into the integer Stripe expects.
func StripeAmount(m types.Money) int64 {
	if f, ok := stripeMinorFactor[strings.ToUpper(m.Currency)]; ok {
		return m.Amount * f
	}
	return m.Amount
}
