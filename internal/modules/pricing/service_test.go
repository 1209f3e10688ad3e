package pricing

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourbook/internal/types"
)

func TestService_Estimate(t *testing.T) {
	s := NewService(DefaultConfig())

	tests := []struct {
		name      string
		in        Input
		wantItems []LineItem
		wantSur   string
		wantTotal int64
	}{
		{
			name: "Base Fare Only (no locations yet)",
			in:   Input{ServiceType: types.ServiceCityTaxi, Passengers: 2, Time: "10:00"},
			wantItems: []LineItem{
				{Label: "Base fare", Amount: 3500, Kind: KindAdd},
			},
			wantTotal: 3500,
		},
		{
			name: "City Taxi Night Ride To Blue Lagoon",
			in: Input{
				ServiceType:     types.ServiceCityTaxi,
				PickupLocation:  "Reykjavik City",
				DropoffLocation: "Blue Lagoon",
				Passengers:      2,
				Time:            "23:00",
			},
			wantItems: []LineItem{
				{Label: "Base fare", Amount: 3500, Kind: KindAdd},
				{Label: "Distance (45 km)", Amount: 45 * 350, Kind: KindAdd},
			},
			// 19250 * 0.25 = 4812.5 -> 4813
			wantSur:   "night",
			wantTotal: 19250 + 4813,
		},
		{
			name: "Airport Transfer Folds Distance Into Base",
			in: Input{
				ServiceType:     types.ServiceAirportTransfer,
				PickupLocation:  "Keflavik Airport",
				DropoffLocation: "Hotel Borg, Reykjavik",
				Passengers:      3,
				Time:            "12:00",
			},
			wantItems: []LineItem{
				{Label: "Base fare", Amount: 18900, Kind: KindAdd},
			},
			wantTotal: 18900,
		},
		{
			name: "Five Passengers Early Morning",
			in:   Input{ServiceType: types.ServicePrivateTour, Passengers: 5, Time: "07:00"},
			wantItems: []LineItem{
				{Label: "Base fare", Amount: 45000, Kind: KindAdd},
				{Label: "Extra passengers (1)", Amount: 2000, Kind: KindAdd},
			},
			// 47000 * 0.15 = 7050
			wantSur:   "early",
			wantTotal: 47000 + 7050,
		},
		{
			name: "Seven Passengers Peak",
			in:   Input{ServiceType: types.ServiceCustomTour, Passengers: 7, Time: "17:30"},
			wantItems: []LineItem{
				{Label: "Base fare", Amount: 60000, Kind: KindAdd},
				{Label: "Extra passengers (3)", Amount: 6000, Kind: KindAdd},
				{Label: "Large group surcharge", Amount: 5000, Kind: KindAdd},
			},
			// 71000 * 0.10 = 7100
			wantSur:   "peak",
			wantTotal: 71000 + 7100,
		},
		{
			name: "Unknown City Route Uses Default Distance",
			in: Input{
				ServiceType:     types.ServiceCityTaxi,
				PickupLocation:  "Harpa",
				DropoffLocation: "Hallgrimskirkja",
				Passengers:      1,
				Time:            "14:00",
			},
			wantItems: []LineItem{
				{Label: "Base fare", Amount: 3500, Kind: KindAdd},
				{Label: "Distance (8 km)", Amount: 2800, Kind: KindAdd},
			},
			wantTotal: 6300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Estimate(tt.in)
			assert.Equal(t, tt.wantItems, got.Items)
			if tt.wantSur == "" {
				assert.Nil(t, got.TimeSurcharge)
			} else {
				require.NotNil(t, got.TimeSurcharge)
				assert.Equal(t, tt.wantSur, got.TimeSurcharge.Name)
			}
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, "ISK", got.Currency)
		})
	}
}

func TestService_EstimateScenarioNightSurchargeOnSubtotal(t *testing.T) {
	s := NewService(DefaultConfig())
	b := s.Estimate(Input{
		ServiceType:     types.ServiceCityTaxi,
		PickupLocation:  "Reykjavik City",
		DropoffLocation: "Blue Lagoon",
		Passengers:      2,
		Time:            "23:00",
	})

	require.NotNil(t, b.DistanceKm)
	assert.Equal(t, 45.0, *b.DistanceKm)
	require.NotNil(t, b.TimeSurcharge)
	assert.Equal(t, 1.25, b.TimeSurcharge.Multiplier)
	assert.Equal(t, int64(3500+15750), b.Subtotal)
	assert.Equal(t, b.Subtotal+b.TimeSurcharge.Amount, b.Total)
	for _, it := range b.Items {
		assert.NotContains(t, it.Label, "passengers")
	}
}

func TestService_EstimateIsDeterministic(t *testing.T) {
	s := NewService(DefaultConfig())
	in := Input{
		ServiceType:     types.ServiceCityTaxi,
		PickupLocation:  "KEF airport",
		DropoffLocation: "Downtown Reykjavik",
		Passengers:      6,
		Time:            "05:00",
	}
	first, err := json.Marshal(s.Estimate(in))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := json.Marshal(s.Estimate(in))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestService_PassengerFees(t *testing.T) {
	s := NewService(DefaultConfig())
	for p := 1; p <= 12; p++ {
		b := s.Estimate(Input{ServiceType: types.ServiceCityTaxi, Passengers: p})
		var extra, group bool
		for _, it := range b.Items {
			switch it.Label {
			case fmt.Sprintf("Extra passengers (%d)", p-4):
				extra = true
				assert.Equal(t, int64(p-4)*2000, it.Amount)
			case "Large group surcharge":
				group = true
			}
		}
		assert.Equal(t, p > 4, extra, "passengers=%d extra fee", p)
		assert.Equal(t, p >= 6, group, "passengers=%d group fee", p)
	}
}

func TestService_CustomTables(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Currency = "EUR"
	cfg.BaseFares = map[types.ServiceType]int64{types.ServiceCityTaxi: 500}
	cfg.PerKmRates = map[types.ServiceType]int64{types.ServiceCityTaxi: 100}
	cfg.Routes = []Route{{From: "harbour", To: "museum", Km: 2.5}}
	cfg.Surcharges = nil

	b := NewService(cfg).Estimate(Input{
		ServiceType:     types.ServiceCityTaxi,
		PickupLocation:  "Old Harbour",
		DropoffLocation: "National Museum",
		Passengers:      1,
		Time:            "23:00",
	})
	assert.Equal(t, []LineItem{
		{Label: "Base fare", Amount: 500, Kind: KindAdd},
		{Label: "Distance (2.5 km)", Amount: 250, Kind: KindAdd},
	}, b.Items)
	assert.Nil(t, b.TimeSurcharge)
	assert.Equal(t, types.Money{Amount: 750, Currency: "EUR"}, b.TotalMoney())
}
