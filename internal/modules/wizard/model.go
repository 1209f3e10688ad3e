// README: Wizard steps, the booking draft value and per-field validation errors.
package wizard

import (
	"net/url"
	"strconv"
	"strings"

	"tourbook/internal/modules/pricing"
	"tourbook/internal/types"
)

type Step int

const (
	StepServiceSelection Step = iota + 1
	StepDateTime
	StepLocations
	StepContactDetails
)

var stepNames = map[Step]string{
	StepServiceSelection: "service_selection",
	StepDateTime:         "date_time",
	StepLocations:        "locations",
	StepContactDetails:   "contact_details",
}

func (s Step) String() string { return stepNames[s] }

func (s Step) Valid() bool {
	return s >= StepServiceSelection && s <= StepContactDetails
}

const (
	DefaultTime       = "10:00"
	DefaultPassengers = 2
	MinPassengers     = 1
	MaxPassengers     = 50
)

// Draft is the in-progress reservation. It is a value: every With* call
// returns a new draft and leaves the receiver untouched.
type Draft struct {
	ServiceType     types.ServiceType `json:"service_type"`
	PickupLocation  string            `json:"pickup_location"`
	DropoffLocation string            `json:"dropoff_location"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	Passengers      int               `json:"passengers"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	SpecialRequests string            `json:"special_requests"`
}

func DefaultDraft() Draft {
	return Draft{
		ServiceType: types.ServiceCityTaxi,
		Time:        DefaultTime,
		Passengers:  DefaultPassengers,
	}
}

func (d Draft) WithServiceType(st types.ServiceType) Draft { d.ServiceType = st; return d }
func (d Draft) WithPickup(v string) Draft                  { d.PickupLocation = v; return d }
func (d Draft) WithDropoff(v string) Draft                 { d.DropoffLocation = v; return d }
func (d Draft) WithDate(v string) Draft                    { d.Date = v; return d }
func (d Draft) WithTime(v string) Draft                    { d.Time = v; return d }
func (d Draft) WithName(v string) Draft                    { d.Name = v; return d }
func (d Draft) WithEmail(v string) Draft                   { d.Email = v; return d }
func (d Draft) WithPhone(v string) Draft                   { d.Phone = v; return d }
func (d Draft) WithSpecialRequests(v string) Draft         { d.SpecialRequests = v; return d }

// WithPassengers clamps n into [MinPassengers, MaxPassengers].
func (d Draft) WithPassengers(n int) Draft {
	if n < MinPassengers {
		n = MinPassengers
	}
	if n > MaxPassengers {
		n = MaxPassengers
	}
	d.Passengers = n
	return d
}

func (d Draft) PricingInput() pricing.Input {
	return pricing.Input{
		ServiceType:     d.ServiceType,
		PickupLocation:  d.PickupLocation,
		DropoffLocation: d.DropoffLocation,
		Passengers:      d.Passengers,
		Time:            d.Time,
	}
}

// FieldErrors holds at most one message per draft field.
type FieldErrors struct {
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	Pickup  string `json:"pickup_location,omitempty"`
	Dropoff string `json:"dropoff_location,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (e FieldErrors) Empty() bool {
	return e == FieldErrors{}
}

// Prefill seeds a new draft from a landing-page link.
type Prefill struct {
	ServiceType string
	Pickup      string
	Dropoff     string
	Date        string
}

// PrefillFromQuery reads the type, pickup, dropoff and date parameters.
func PrefillFromQuery(q url.Values) Prefill {
	return Prefill{
		ServiceType: q.Get("type"),
		Pickup:      q.Get("pickup"),
		Dropoff:     q.Get("dropoff"),
		Date:        q.Get("date"),
	}
}

// Apply overlays the prefill on d. An unknown service type keeps the default.
func (p Prefill) Apply(d Draft) Draft {
	if st, err := types.ParseServiceType(p.ServiceType); err == nil {
		d = d.WithServiceType(st)
	}
	if v := strings.TrimSpace(p.Pickup); v != "" {
		d = d.WithPickup(v)
	}
	if v := strings.TrimSpace(p.Dropoff); v != "" {
		d = d.WithDropoff(v)
	}
	if v := strings.TrimSpace(p.Date); v != "" {
		d = d.WithDate(v)
	}
	return d
}

// Edit is a partial update. Nil fields are left alone.
type Edit struct {
	ServiceType     *string `json:"service_type,omitempty"`
	PickupLocation  *string `json:"pickup_location,omitempty"`
	DropoffLocation *string `json:"dropoff_location,omitempty"`
	Date            *string `json:"date,omitempty"`
	Time            *string `json:"time,omitempty"`
	Passengers      *int    `json:"passengers,omitempty"`
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
}

// EditFromQuery builds a quote edit from query parameters.
func EditFromQuery(q url.Values) Edit {
	var e Edit
	str := func(key string) *string {
		if !q.Has(key) {
			return nil
		}
		v := q.Get(key)
		return &v
	}
	e.ServiceType = str("type")
	e.PickupLocation = str("pickup")
	e.DropoffLocation = str("dropoff")
	e.Time = str("time")
	if v := q.Get("passengers"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			e.Passengers = &n
		}
	}
	return e
}

// State is the serializable snapshot of a controller.
type State struct {
	Step      Step        `json:"step"`
	Draft     Draft       `json:"draft"`
	Errors    FieldErrors `json:"errors"`
	Submitted bool        `json:"submitted"`
}

// Submission is what the wizard hands to booking creation.
type Submission struct {
	Draft     Draft             `json:"draft"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Total     types.Money       `json:"total"`
}
