// README: Wizard controller owns one draft, runs step gates and keeps the live fare.
package wizard

import (
	"regexp"
	"strings"
	"time"

	"tourbook/internal/modules/pricing"
	"tourbook/internal/types"
)

// Estimator prices a draft. pricing.Service satisfies it.
type Estimator interface {
	Estimate(in pricing.Input) pricing.Breakdown
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgDateRequired    = "Please select a date"
	msgDateInvalid     = "Please select a valid date"
	msgDatePast        = "Date cannot be in the past"
	msgTimeRequired    = "Please select a time"
	msgTimeInvalid     = "Please select a valid time"
	msgPickupRequired  = "Please enter a pickup location"
	msgDropoffRequired = "Please enter a drop-off location"
	msgNameRequired    = "Please enter your name"
	msgEmailRequired   = "Please enter your email"
	msgEmailInvalid    = "Please enter a valid email address"
	msgPhoneRequired   = "Please enter your phone number"
)

// Controller is not safe for concurrent use; callers serialize access per session.
type Controller struct {
	estimator Estimator
	loc       *time.Location
	now       func() time.Time

	step      Step
	draft     Draft
	errs      FieldErrors
	breakdown pricing.Breakdown
	submitted bool
}

type Option func(*Controller)

// WithLocation sets the timezone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func NewController(est Estimator, prefill Prefill, opts ...Option) *Controller {
	return RestoreController(est, State{
		Step:  StepServiceSelection,
		Draft: prefill.Apply(DefaultDraft()),
	}, opts...)
}

// RestoreController rebuilds a controller from a snapshot and reprices it.
func RestoreController(est Estimator, st State, opts ...Option) *Controller {
	c := &Controller{
		estimator: est,
		loc:       time.UTC,
		now:       time.Now,
		step:      st.Step,
		draft:     st.Draft,
		errs:      st.Errors,
		submitted: st.Submitted,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.step.Valid() {
		c.step = StepServiceSelection
	}
	c.draft = c.draft.WithPassengers(c.draft.Passengers)
	c.reprice()
	return c
}

func (c *Controller) State() State {
	return State{Step: c.step, Draft: c.draft, Errors: c.errs, Submitted: c.submitted}
}

func (c *Controller) Step() Step                   { return c.step }
func (c *Controller) Draft() Draft                 { return c.draft }
func (c *Controller) Errors() FieldErrors          { return c.errs }
func (c *Controller) Breakdown() pricing.Breakdown { return c.breakdown }
func (c *Controller) Submitted() bool              { return c.submitted }

func (c *Controller) SetServiceType(st types.ServiceType) error {
	if !st.Valid() {
		return ErrInvalidServiceType
	}
	return c.update(c.draft.WithServiceType(st), nil)
}

func (c *Controller) SetPickup(v string) error {
	return c.update(c.draft.WithPickup(v), func(e *FieldErrors) { e.Pickup = "" })
}

func (c *Controller) SetDropoff(v string) error {
	return c.update(c.draft.WithDropoff(v), func(e *FieldErrors) { e.Dropoff = "" })
}

func (c *Controller) SetDate(v string) error {
	return c.update(c.draft.WithDate(v), func(e *FieldErrors) { e.Date = "" })
}

func (c *Controller) SetTime(v string) error {
	return c.update(c.draft.WithTime(v), func(e *FieldErrors) { e.Time = "" })
}

func (c *Controller) SetPassengers(n int) error {
	return c.update(c.draft.WithPassengers(n), nil)
}

func (c *Controller) SetName(v string) error {
	return c.update(c.draft.WithName(v), func(e *FieldErrors) { e.Name = "" })
}

func (c *Controller) SetEmail(v string) error {
	return c.update(c.draft.WithEmail(v), func(e *FieldErrors) { e.Email = "" })
}

func (c *Controller) SetPhone(v string) error {
	return c.update(c.draft.WithPhone(v), func(e *FieldErrors) { e.Phone = "" })
}

func (c *Controller) SetSpecialRequests(v string) error {
	return c.update(c.draft.WithSpecialRequests(v), nil)
}

// Apply runs the set fields of e through the matching setters.
func (c *Controller) Apply(e Edit) error {
	if e.ServiceType != nil {
		st, err := types.ParseServiceType(*e.ServiceType)
		if err != nil {
			return ErrInvalidServiceType
		}
		if err := c.SetServiceType(st); err != nil {
			return err
		}
	}
	if e.Passengers != nil {
		if err := c.SetPassengers(*e.Passengers); err != nil {
			return err
		}
	}
	fields := []struct {
		v   *string
		set func(string) error
	}{
		{e.PickupLocation, c.SetPickup},
		{e.DropoffLocation, c.SetDropoff},
		{e.Date, c.SetDate},
		{e.Time, c.SetTime},
		{e.Name, c.SetName},
		{e.Email, c.SetEmail},
		{e.Phone, c.SetPhone},
		{e.SpecialRequests, c.SetSpecialRequests},
	}
	for _, f := range fields {
		if f.v == nil {
			continue
		}
		if err := f.set(*f.v); err != nil {
			return err
		}
	}
	return nil
}

// Next leaves the current step if its gate passes. The gate result replaces
// the whole error set.
func (c *Controller) Next() error {
	if c.submitted {
		return ErrSubmitted
	}
	if c.step == StepContactDetails {
		return ErrLastStep
	}
	c.errs = c.gate(c.step)
	if !c.errs.Empty() {
		return &ValidationError{Step: c.step, Errors: c.errs}
	}
	c.step++
	return nil
}

// Back never validates. On the first step it does nothing.
func (c *Controller) Back() error {
	if c.submitted {
		return ErrSubmitted
	}
	if c.step > StepServiceSelection {
		c.step--
	}
	return nil
}

// Submit hands over the draft with the total currently on display. The
// controller accepts no further calls afterwards.
func (c *Controller) Submit() (Submission, error) {
	if c.submitted {
		return Submission{}, ErrSubmitted
	}
	if c.step != StepContactDetails {
		return Submission{}, ErrNotReady
	}
	c.errs = c.gate(c.step)
	if !c.errs.Empty() {
		return Submission{}, &ValidationError{Step: c.step, Errors: c.errs}
	}
	c.submitted = true
	return Submission{
		Draft:     c.draft,
		Breakdown: c.breakdown,
		Total:     c.breakdown.TotalMoney(),
	}, nil
}

func (c *Controller) update(d Draft, clear func(*FieldErrors)) error {
	if c.submitted {
		return ErrSubmitted
	}
	c.draft = d
	if clear != nil {
		clear(&c.errs)
	}
	c.reprice()
	return nil
}

func (c *Controller) reprice() {
	c.breakdown = c.estimator.Estimate(c.draft.PricingInput())
}

func (c *Controller) gate(s Step) FieldErrors {
	switch s {
	case StepDateTime:
		return c.dateTimeErrors()
	case StepLocations:
		return locationErrors(c.draft)
	case StepContactDetails:
		return contactErrors(c.draft)
	}
	return FieldErrors{}
}

func (c *Controller) dateTimeErrors() FieldErrors {
	var e FieldErrors
	switch date := strings.TrimSpace(c.draft.Date); {
	case date == "":
		e.Date = msgDateRequired
	default:
		day, err := time.ParseInLocation(time.DateOnly, date, c.loc)
		if err != nil {
			e.Date = msgDateInvalid
			break
		}
		now := c.now().In(c.loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
		if day.Before(today) {
			e.Date = msgDatePast
		}
	}
	switch hhmm := strings.TrimSpace(c.draft.Time); {
	case hhmm == "":
		e.Time = msgTimeRequired
	default:
		// pickups are booked on the hour
		t, err := time.Parse("15:04", hhmm)
		if err != nil || t.Minute() != 0 {
			e.Time = msgTimeInvalid
		}
	}
	return e
}

func locationErrors(d Draft) FieldErrors {
	var e FieldErrors
	if strings.TrimSpace(d.PickupLocation) == "" {
		e.Pickup = msgPickupRequired
	}
	if strings.TrimSpace(d.DropoffLocation) == "" {
		e.Dropoff = msgDropoffRequired
	}
	return e
}

func contactErrors(d Draft) FieldErrors {
	var e FieldErrors
	if strings.TrimSpace(d.Name) == "" {
		e.Name = msgNameRequired
	}
	email := strings.TrimSpace(d.Email)
	switch {
	case email == "":
		e.Email = msgEmailRequired
	case !emailPattern.MatchString(email):
		e.Email = msgEmailInvalid
	}
	if strings.TrimSpace(d.Phone) == "" {
		e.Phone = msgPhoneRequired
	}
	return e
}
