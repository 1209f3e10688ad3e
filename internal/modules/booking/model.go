// README: Booking aggregate, status definitions and the lifecycle transition table.
package booking

import (
	"time"

	"tourbook/internal/types"
)

type Status string

const (
	StatusNone       Status = "none"
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusPending:    "Pending",
	StatusConfirmed:  "Confirmed",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
	StatusCancelled:  "Cancelled",
}

func (s Status) Label() string { return statusLabels[s] }

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Active bookings hold their driver and vehicle exclusively.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProgress
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

var paymentLabels = map[PaymentStatus]string{
	PaymentPending:  "Pending",
	PaymentPaid:     "Paid",
	PaymentRefunded: "Refunded",
	PaymentFailed:   "Failed",
}

func (p PaymentStatus) Label() string { return paymentLabels[p] }

func (p PaymentStatus) Valid() bool {
	_, ok := paymentLabels[p]
	return ok
}

type Booking struct {
	ID              types.ID          `json:"id"`
	BookingNumber   string            `json:"booking_number"`
	ServiceType     types.ServiceType `json:"service_type"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	Passengers      int               `json:"passengers"`
	PickupLocation  string            `json:"pickup_location"`
	DropoffLocation string            `json:"dropoff_location"`
	PickupDate      time.Time         `json:"pickup_date"`
	PickupTime      string            `json:"pickup_time"`
	SpecialRequests string            `json:"special_requests,omitempty"`
	Status          Status            `json:"status"`
	StatusVersion   int               `json:"status_version"`
	PaymentStatus   PaymentStatus     `json:"payment_status"`
	PaymentIntentID *string           `json:"payment_intent_id,omitempty"`
	DriverID        *types.ID         `json:"driver_id,omitempty"`
	VehicleID       *types.ID         `json:"vehicle_id,omitempty"`
	// TotalPrice is frozen at creation and never recomputed.
	TotalPrice   types.Money `json:"total_price"`
	CancelReason *string     `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	ConfirmedAt  *time.Time  `json:"confirmed_at,omitempty"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	CancelledAt  *time.Time  `json:"cancelled_at,omitempty"`
}

// PaymentInput is what the payment step receives for this booking.
func (b *Booking) PaymentInput() types.Money {
	return b.TotalPrice
}

type Event struct {
	ID         int64     `json:"id"`
	BookingID  types.ID  `json:"booking_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ActorType  string    `json:"actor_type"`
	ActorID    *types.ID `json:"actor_id,omitempty"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	ActorCustomer = "customer"
	ActorOperator = "operator"
	ActorSystem   = "system"
)

// AllowedTransitions represents the booking state flow as code.
// Completed and cancelled have no outgoing edges.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// NextTransitions returns the legal targets from s, for rendering operator actions.
func NextTransitions(s Status) []Status {
	next := AllowedTransitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

type Filter struct {
	Status        Status
	PaymentStatus PaymentStatus
	ServiceType   types.ServiceType
	Search        string
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	Limit         int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	return f
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.Limit
}

type Counts struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Today     int `json:"today"`
}
