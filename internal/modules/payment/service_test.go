package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"tourbook/internal/modules/booking"
	"tourbook/internal/types"
)

type fakeGateway struct {
	requests []IntentRequest
	event    WebhookEvent
	parseErr error
}

func (f *fakeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	f.requests = append(f.requests, req)
	return &Intent{ID: "pi_test_1", ClientSecret: "pi_test_1_secret"}, nil
}

func (f *fakeGateway) ParseEvent(payload []byte, signature string) (WebhookEvent, error) {
	return f.event, f.parseErr
}

func newBooking(t *testing.T, bookings *booking.Service) *booking.Booking {
	t.Helper()
	b, err := bookings.Create(context.Background(), booking.CreateCommand{
		ServiceType:    types.ServiceCityTaxi,
		CustomerName:   "Anna",
		CustomerEmail:  "anna@example.is",
		CustomerPhone:  "+354 555 1234",
		Passengers:     2,
		PickupLocation: "Harpa",
		PickupDate:     "2026-10-20",
		PickupTime:     "23:00",
		Total:          types.Money{Amount: 24063, Currency: "ISK"},
	})
	require.NoError(t, err)
	return b
}

func TestInitiatePassesFrozenTotal(t *testing.T) {
	ctx := context.Background()
	bookings := booking.NewService(booking.NewMemoryStore())
	gw := &fakeGateway{}
	svc := NewService(gw, bookings)
	b := newBooking(t, bookings)

	intent, err := svc.Initiate(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_test_1", intent.ID)
	require.Len(t, gw.requests, 1)
	assert.Equal(t, types.Money{Amount: 24063, Currency: "ISK"}, gw.requests[0].Amount)

	stored, err := bookings.Get(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentIntentID)
	assert.Equal(t, "pi_test_1", *stored.PaymentIntentID)
}

func TestInitiateRejectsPaidAndCancelled(t *testing.T) {
	ctx := context.Background()
	bookings := booking.NewService(booking.NewMemoryStore())
	svc := NewService(&fakeGateway{}, bookings)

	paid := newBooking(t, bookings)
	require.NoError(t, bookings.SetPaymentStatus(ctx, paid.ID, booking.PaymentPaid))
	_, err := svc.Initiate(ctx, paid.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	cancelled := newBooking(t, bookings)
	_, err = bookings.Cancel(ctx, cancelled.ID, booking.ActorCustomer, nil, "")
	require.NoError(t, err)
	_, err = svc.Initiate(ctx, cancelled.ID)
	assert.ErrorIs(t, err, ErrNotPayable)
}

func TestStatusForEvent(t *testing.T) {
	cases := []struct {
		event string
		want  booking.PaymentStatus
		ok    bool
	}{
		{"payment_intent.succeeded", booking.PaymentPaid, true},
		{"payment_intent.payment_failed", booking.PaymentFailed, true},
		{"charge.refunded", booking.PaymentRefunded, true},
		{"payment_intent.created", "", false},
		{"customer.created", "", false},
	}
	for _, tc := range cases {
		got, ok := StatusForEvent(tc.event)
		assert.Equal(t, tc.ok, ok, tc.event)
		assert.Equal(t, tc.want, got, tc.event)
	}
}

func TestHandleWebhookSetsPaymentStatusOnly(t *testing.T) {
	ctx := context.Background()
	bookings := booking.NewService(booking.NewMemoryStore())
	gw := &fakeGateway{}
	svc := NewService(gw, bookings)
	b := newBooking(t, bookings)
	_, err := svc.Initiate(ctx, b.ID)
	require.NoError(t, err)

	gw.event = WebhookEvent{ID: "evt_1", Type: EventIntentSucceeded, PaymentIntentID: "pi_test_1"}
	require.NoError(t, svc.HandleWebhook(ctx, []byte("{}"), "sig"))

	stored, err := bookings.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, booking.StatusPending, stored.Status)

	gw.event = WebhookEvent{ID: "evt_2", Type: EventChargeRefunded, PaymentIntentID: "pi_test_1"}
	require.NoError(t, svc.HandleWebhook(ctx, []byte("{}"), "sig"))
	stored, err = bookings.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentRefunded, stored.PaymentStatus)
}

func TestHandleWebhookErrors(t *testing.T) {
	ctx := context.Background()
	bookings := booking.NewService(booking.NewMemoryStore())
	gw := &fakeGateway{parseErr: errors.New("no signatures found")}
	svc := NewService(gw, bookings)

	assert.ErrorIs(t, svc.HandleWebhook(ctx, nil, ""), ErrBadSignature)

	gw.parseErr = nil
	gw.event = WebhookEvent{Type: EventIntentFailed, PaymentIntentID: "pi_nobody"}
	assert.ErrorIs(t, svc.HandleWebhook(ctx, nil, ""), ErrUnknownIntent)

	gw.event = WebhookEvent{Type: "customer.created"}
	assert.NoError(t, svc.HandleWebhook(ctx, nil, ""))
}

func TestStripeAmount(t *testing.T) {
	assert.Equal(t, int64(2406300), StripeAmount(types.Money{Amount: 24063, Currency: "ISK"}))
	assert.Equal(t, int64(1250), StripeAmount(types.Money{Amount: 1250, Currency: "EUR"}))
}

func TestStripeGatewayParseEvent(t *testing.T) {
	const secret = "whsec_test"
	gw := NewStripeGateway(nil, secret)

	cases := []struct {
		name    string
		payload string
		want    WebhookEvent
	}{
		{
			name:    "intent succeeded",
			payload: `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`,
			want:    WebhookEvent{ID: "evt_1", Type: EventIntentSucceeded, PaymentIntentID: "pi_1"},
		},
		{
			name:    "charge refunded",
			payload: `{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_2"}}}`,
			want:    WebhookEvent{ID: "evt_2", Type: EventChargeRefunded, PaymentIntentID: "pi_2"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
				Payload:   []byte(tc.payload),
				Secret:    secret,
				Timestamp: time.Now(),
			})
			got, err := gw.ParseEvent(signed.Payload, signed.Header)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := gw.ParseEvent([]byte(cases[0].payload), "t=1,v1=deadbeef")
	assert.Error(t, err)
}
