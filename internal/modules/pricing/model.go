// README: Pricing tables and the itemized fare breakdown.
package pricing

import "tourbook/internal/types"

// Route is one entry of the known-route table. Matching is symmetric.
type Route struct {
	From string
	To   string
	Km   float64
}

// SurchargeRule is a time-of-day uplift. Hour ranges are half-open [Start, End).
type SurchargeRule struct {
	Name       string
	Label      string
	BasisPts   int64 // 12500 == x1.25
	HourRanges [][2]int
}

type Config struct {
	Currency string

	BaseFares  map[types.ServiceType]int64
	PerKmRates map[types.ServiceType]int64

	// Routes is evaluated in order; keep specific entries above generic ones.
	Routes           []Route
	DefaultCityKm    float64
	DefaultAirportKm float64

	IncludedPassengers  int
	ExtraPassengerFee   int64
	LargeGroupThreshold int
	LargeGroupFee       int64

	// Surcharges is evaluated in priority order, first match wins.
	Surcharges []SurchargeRule
}

// DefaultConfig returns the published tariff.
func DefaultConfig() Config {
	return Config{
		Currency: types.DefaultCurrency,
		BaseFares: map[types.ServiceType]int64{
			types.ServiceCityTaxi:        3500,
			types.ServiceAirportTransfer: 18900,
			types.ServicePrivateTour:     45000,
			types.ServiceCustomTour:      60000,
		},
		PerKmRates: map[types.ServiceType]int64{
			types.ServiceCityTaxi:        350,
			types.ServiceAirportTransfer: 150,
		},
		Routes: []Route{
			{From: "keflavik", To: "reykjavik", Km: 45},
			{From: "kef", To: "reykjavik", Km: 45},
			{From: "airport", To: "reykjavik", Km: 45},
			{From: "keflavik", To: "blue lagoon", Km: 22},
			{From: "airport", To: "blue lagoon", Km: 22},
			{From: "blue lagoon", To: "reykjavik", Km: 45},
			{From: "reykjavik", To: "blue lagoon", Km: 45},
			{From: "reykjavik", To: "sky lagoon", Km: 8},
			{From: "reykjavik", To: "perlan", Km: 3},
		},
		DefaultCityKm:       8,
		DefaultAirportKm:    45,
		IncludedPassengers:  4,
		ExtraPassengerFee:   2000,
		LargeGroupThreshold: 6,
		LargeGroupFee:       5000,
		Surcharges: []SurchargeRule{
			{Name: "night", Label: "Night Rate (22:00-06:00)", BasisPts: 12500, HourRanges: [][2]int{{22, 24}, {0, 6}}},
			{Name: "early", Label: "Early Morning (06:00-08:00)", BasisPts: 11500, HourRanges: [][2]int{{6, 8}}},
			{Name: "peak", Label: "Peak Hours (08:00-09:00, 17:00-19:00)", BasisPts: 11000, HourRanges: [][2]int{{8, 9}, {17, 19}}},
		},
	}
}

// Input is the subset of a draft that affects the fare.
type Input struct {
	ServiceType     types.ServiceType `json:"service_type"`
	PickupLocation  string            `json:"pickup_location"`
	DropoffLocation string            `json:"dropoff_location"`
	Passengers      int               `json:"passengers"`
	Time            string            `json:"time"`
}

const KindAdd = "add"

type LineItem struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
	Kind   string `json:"kind"`
}

type Surcharge struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
	Amount     int64   `json:"amount"`

	basisPts int64
}

type Breakdown struct {
	ServiceLabel      string     `json:"service_label"`
	Items             []LineItem `json:"items"`
	Subtotal          int64      `json:"subtotal"`
	TimeSurcharge     *Surcharge `json:"time_surcharge,omitempty"`
	Total             int64      `json:"total"`
	Currency          string     `json:"currency"`
	DistanceKm        *float64   `json:"distance_km,omitempty"`
	EstimatedDuration string     `json:"estimated_duration,omitempty"`
}

func (b Breakdown) TotalMoney() types.Money {
	return types.Money{Amount: b.Total, Currency: b.Currency}
}
