// README: Pricing service computes itemized fare estimates.
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tourbook/internal/types"
)

type Service struct {
	cfg       Config
	routes    *RouteResolver
	surcharge *SurchargeCalculator
}

func NewService(cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = types.DefaultCurrency
	}
	return &Service{
		cfg:       cfg,
		routes:    NewRouteResolver(cfg),
		surcharge: NewSurchargeCalculator(cfg),
	}
}

// Estimate is pure and total: missing input yields a smaller breakdown, never an error.
func (s *Service) Estimate(in Input) Breakdown {
	b := Breakdown{
		ServiceLabel: in.ServiceType.Label(),
		Items:        make([]LineItem, 0, 4),
		Currency:     s.cfg.Currency,
	}

	b.Items = append(b.Items, LineItem{Label: "Base fare", Amount: s.cfg.BaseFares[in.ServiceType], Kind: KindAdd})

	hasRoute := strings.TrimSpace(in.PickupLocation) != "" && strings.TrimSpace(in.DropoffLocation) != ""
	km := s.routes.Resolve(in.PickupLocation, in.DropoffLocation, in.ServiceType)
	if hasRoute {
		b.DistanceKm = &km
	}
	b.EstimatedDuration = estimatedDuration(in.ServiceType, km)

	// other service types fold distance into the base fare
	if in.ServiceType == types.ServiceCityTaxi && hasRoute {
		fee := types.RoundHalfUp(km * float64(s.cfg.PerKmRates[in.ServiceType]))
		if fee > 0 {
			b.Items = append(b.Items, LineItem{Label: fmt.Sprintf("Distance (%s km)", formatKm(km)), Amount: fee, Kind: KindAdd})
		}
	}

	if extra := in.Passengers - s.cfg.IncludedPassengers; extra > 0 {
		b.Items = append(b.Items, LineItem{
			Label:  fmt.Sprintf("Extra passengers (%d)", extra),
			Amount: int64(extra) * s.cfg.ExtraPassengerFee,
			Kind:   KindAdd,
		})
	}
	if in.Passengers >= s.cfg.LargeGroupThreshold {
		b.Items = append(b.Items, LineItem{Label: "Large group surcharge", Amount: s.cfg.LargeGroupFee, Kind: KindAdd})
	}

	for _, it := range b.Items {
		b.Subtotal += it.Amount
	}
	b.Total = b.Subtotal

	if sc := s.surcharge.Calculate(in.Time); sc != nil {
		sc.apply(b.Subtotal)
		b.TimeSurcharge = sc
		b.Total += sc.Amount
	}
	return b
}

func (s *Service) ResolveDistance(pickup, dropoff string, st types.ServiceType) float64 {
	return s.routes.Resolve(pickup, dropoff, st)
}

func (s *Service) Surcharge(hhmm string) *Surcharge {
	return s.surcharge.Calculate(hhmm)
}

func (s *Service) Currency() string {
	return s.cfg.Currency
}

func estimatedDuration(st types.ServiceType, km float64) string {
	switch st {
	case types.ServiceCityTaxi:
		// ~40 km/h average in town
		return fmt.Sprintf("%d min", int(math.Ceil(km/40*60)))
	case types.ServiceAirportTransfer:
		return "45-55 min"
	case types.ServicePrivateTour:
		return "4-6 hours"
	default:
		return "6-8 hours"
	}
}

func formatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64)
}
