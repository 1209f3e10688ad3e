// README: Known-route distance lookup with a per-service fallback.
package pricing

import (
	"strings"

	"tourbook/internal/types"
)

type RouteResolver struct {
	routes    []Route
	cityKm    float64
	airportKm float64
}

func NewRouteResolver(cfg Config) *RouteResolver {
	routes := make([]Route, 0, len(cfg.Routes))
	for _, r := range cfg.Routes {
		// an empty place name would match every input
		if r.From == "" || r.To == "" {
			continue
		}
		routes = append(routes, Route{From: strings.ToLower(r.From), To: strings.ToLower(r.To), Km: r.Km})
	}
	return &RouteResolver{routes: routes, cityKm: cfg.DefaultCityKm, airportKm: cfg.DefaultAirportKm}
}

// Resolve never fails; unknown pairs get the service type's default distance.
func (r *RouteResolver) Resolve(pickup, dropoff string, st types.ServiceType) float64 {
	p := strings.ToLower(pickup)
	d := strings.ToLower(dropoff)
	for _, rt := range r.routes {
		if (strings.Contains(p, rt.From) && strings.Contains(d, rt.To)) ||
			(strings.Contains(p, rt.To) && strings.Contains(d, rt.From)) {
			return rt.Km
		}
	}
	if st == types.ServiceAirportTransfer {
		return r.airportKm
	}
	return r.cityKm
}
