// Package market holds the per-symbol ticker state: the interval selector,
// the ticker record with its parallel price/date/volume series, and the
// insertion-ordered store that the rest of the application reads through
// point-in-time snapshots.
package market

import (
	"fmt"
	"strings"
)

// Interval selects the historical time window requested for a ticker.
type Interval int

const (
	Interval1D Interval = iota
	Interval5D
	Interval1Mo
	Interval3Mo
	Interval6Mo
	Interval1Y
	Interval2Y
	Interval5Y
	Interval10Y
	IntervalYTD
	IntervalMax
)

// DefaultInterval is the window a freshly created ticker starts on.
const DefaultInterval = Interval6Mo

// cycle defines the navigation order for Next/Prev. It is a fixed table, not
// a sort by duration: YTD deliberately sits between Max and 1D so that
// cycling through "everything" ends on the year-to-date view.
var cycle = []Interval{
	Interval1D,
	Interval5D,
	Interval1Mo,
	Interval3Mo,
	Interval6Mo,
	Interval1Y,
	Interval2Y,
	Interval5Y,
	Interval10Y,
	IntervalMax,
	IntervalYTD,
}

// cycleIndex returns the position of iv in the cycle, or -1 for values
// outside the enumeration.
func cycleIndex(iv Interval) int {
	for i, c := range cycle {
		if c == iv {
			return i
		}
	}
	return -1
}

// Next returns the cyclic successor of iv. Values outside the enumeration
// resolve to the cycle head itself rather than stepping from it.
func (iv Interval) Next() Interval {
	i := cycleIndex(iv)
	if i < 0 {
		return cycle[0]
	}
	return cycle[(i+1)%len(cycle)]
}

// Prev returns the cyclic predecessor of iv. Values outside the enumeration
// resolve to the cycle head itself.
func (iv Interval) Prev() Interval {
	i := cycleIndex(iv)
	if i < 0 {
		return cycle[0]
	}
	return cycle[(i+len(cycle)-1)%len(cycle)]
}

// Intervals returns the full navigation cycle in order.
func Intervals() []Interval {
	out := make([]Interval, len(cycle))
	copy(out, cycle)
	return out
}

// String returns the short display label used in the chart header.
func (iv Interval) String() string {
	switch iv {
	case Interval1D:
		return "1D"
	case Interval5D:
		return "5D"
	case Interval1Mo:
		return "1M"
	case Interval3Mo:
		return "3M"
	case Interval6Mo:
		return "6M"
	case Interval1Y:
		return "1Y"
	case Interval2Y:
		return "2Y"
	case Interval5Y:
		return "5Y"
	case Interval10Y:
		return "10Y"
	case IntervalYTD:
		return "YTD"
	case IntervalMax:
		return "Max"
	default:
		return "?"
	}
}

// Days returns the approximate calendar span of the window. 1D, 5D, YTD and
// Max have no fixed span and return 0.
func (iv Interval) Days() int {
	switch iv {
	case Interval1Mo:
		return 30
	case Interval3Mo:
		return 91
	case Interval6Mo:
		return 183
	case Interval1Y:
		return 365
	case Interval2Y:
		return 730
	case Interval5Y:
		return 1825
	case Interval10Y:
		return 3650
	default:
		return 0
	}
}

// ParseInterval converts a configuration string such as "6mo" or "1y" into
// an Interval.
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1d":
		return Interval1D, nil
	case "5d":
		return Interval5D, nil
	case "1mo":
		return Interval1Mo, nil
	case "3mo":
		return Interval3Mo, nil
	case "6mo":
		return Interval6Mo, nil
	case "1y":
		return Interval1Y, nil
	case "2y":
		return Interval2Y, nil
	case "5y":
		return Interval5Y, nil
	case "10y":
		return Interval10Y, nil
	case "ytd":
		return IntervalYTD, nil
	case "max":
		return IntervalMax, nil
	default:
		return Interval1D, fmt.Errorf("unknown interval %q", s)
	}
}
