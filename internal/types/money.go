// README: Common money value object used across modules.
package types

import (
	"fmt"
	"math"
)

// DefaultCurrency is the currency fares are quoted in.
const DefaultCurrency = "ISK"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}

// RoundHalfUp rounds to the nearest integer unit, halves away from zero.
func RoundHalfUp(v float64) int64 {
	if v < 0 {
		return -int64(math.Floor(-v + 0.5))
	}
	return int64(math.Floor(v + 0.5))
}
