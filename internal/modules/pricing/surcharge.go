// README: Time-of-day surcharge lookup.
package pricing

import (
	"strconv"
	"strings"
)

const basisPtsOne = 10000

type SurchargeCalculator struct {
	rules []SurchargeRule
}

func NewSurchargeCalculator(cfg Config) *SurchargeCalculator {
	return &SurchargeCalculator{rules: cfg.Surcharges}
}

// Calculate returns nil when no rule applies, including an empty or unparseable time.
func (c *SurchargeCalculator) Calculate(hhmm string) *Surcharge {
	hour, ok := parseHour(hhmm)
	if !ok {
		return nil
	}
	for _, r := range c.rules {
		for _, hr := range r.HourRanges {
			if hour >= hr[0] && hour < hr[1] {
				return &Surcharge{
					Name:       r.Name,
					Label:      r.Label,
					Multiplier: float64(r.BasisPts) / basisPtsOne,
					basisPts:   r.BasisPts,
				}
			}
		}
	}
	return nil
}

// apply sets Amount to round(subtotal * (multiplier - 1)).
func (s *Surcharge) apply(subtotal int64) {
	s.Amount = mulDivHalfUp(subtotal, s.basisPts-basisPtsOne, basisPtsOne)
}

func mulDivHalfUp(v, num, den int64) int64 {
	p := v * num
	if p < 0 {
		return -((-p + den/2) / den)
	}
	return (p + den/2) / den
}

func parseHour(hhmm string) (int, bool) {
	// a bare hour such as "23" counts as 23:00
	h, _, _ := strings.Cut(strings.TrimSpace(hhmm), ":")
	if h == "" {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}
