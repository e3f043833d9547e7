package advisor

import (
	"math"
	"strings"

	"github.com/jhaveri/fie/internal/contracts"
)

// goldSector is the sector tag used for gold exposure checks and the
// gold allocation directive.
const goldSector = "GOLD"

// sectorAllocation sums holding allocation percentages per upper-cased
// sector tag. The map drives applicability checks and allocation
// projections; it is never re-normalized to 100%.
func sectorAllocation(holdings []contracts.Holding) map[string]float64 {
	alloc := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		tag := strings.ToUpper(h.SectorTag)
		if tag == "" {
			tag = "OTHER"
		}
		alloc[tag] += h.AllocationPct
	}
	return alloc
}

// parsePct extracts an integer percentage from a directive magnitude
// such as "50%" or "TO_20%", falling back to def when absent or
// malformed.
func parsePct(magnitude string, def int) int {
	s := strings.TrimSpace(magnitude)
	if s == "" {
		return def
	}
	s = strings.ToUpper(s)
	s = strings.TrimPrefix(s, "TO_")
	s = strings.TrimSuffix(s, "%")

	pct := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return def
		}
		pct = pct*10 + int(r-'0')
	}
	if s == "" {
		return def
	}
	return pct
}

// projectReduction returns the post-trade allocation after trimming a
// position by pct percent, to one decimal.
func projectReduction(before float64, pct int) float64 {
	return round1(before * (1 - float64(pct)/100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// roundAmount rounds a currency amount to the nearest whole unit.
func roundAmount(v float64) float64 {
	return math.Round(v)
}
