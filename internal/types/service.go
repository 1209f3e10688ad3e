// README: Service types offered by the booking wizard and stored on bookings.
package types

import (
	"fmt"
	"strings"
)

type ServiceType string

const (
	ServiceCityTaxi        ServiceType = "city_taxi"
	ServiceAirportTransfer ServiceType = "airport_transfer"
	ServicePrivateTour     ServiceType = "private_tour"
	ServiceCustomTour      ServiceType = "custom_tour"
)

// ServiceTypes lists every service type in display order.
var ServiceTypes = []ServiceType{
	ServiceCityTaxi,
	ServiceAirportTransfer,
	ServicePrivateTour,
	ServiceCustomTour,
}

var serviceLabels = map[ServiceType]string{
	ServiceCityTaxi:        "City Taxi",
	ServiceAirportTransfer: "Airport Transfer",
	ServicePrivateTour:     "Private Tour",
	ServiceCustomTour:      "Custom Tour",
}

// legacy upper-case names still sent by older links (e.g. ?type=TAXI).
var serviceAliases = map[string]ServiceType{
	"taxi":             ServiceCityTaxi,
	"city_taxi":        ServiceCityTaxi,
	"airport_transfer": ServiceAirportTransfer,
	"private_tour":     ServicePrivateTour,
	"custom_tour":      ServiceCustomTour,
}

func (s ServiceType) Label() string {
	if l, ok := serviceLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s ServiceType) Valid() bool {
	_, ok := serviceLabels[s]
	return ok
}

func ParseServiceType(v string) (ServiceType, error) {
	st, ok := serviceAliases[strings.ToLower(strings.TrimSpace(v))]
	if !ok {
		return "", fmt.Errorf("unknown service type %q", v)
	}
	return st, nil
}
