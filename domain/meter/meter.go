// Package meter provides meter reading value types and pure functions.
package meter

// Reading represents one meter (main or sub) for a billing period.
// Previous and Current are independently settable; consumption is always
// derived, never stored.
type Reading struct {
	ID       string
	Name     string
	MeterNo  string
	Previous float64
	Current  float64
}

// Consumption returns the units consumed this period.
// A current reading below the previous one (meter swap, data entry error)
// counts as zero consumption, never negative.
func (r Reading) Consumption() float64 {
	if r.Current < r.Previous {
		return 0
	}
	return r.Current - r.Previous
}

// Rollover returns the reading for the next billing period: the current
// reading becomes the new baseline. The receiver is not modified.
func (r Reading) Rollover() Reading {
	next := r
	next.Previous = r.Current
	return next
}

// TotalConsumption sums consumption across readings.
// This is a PURE function.
func TotalConsumption(readings []Reading) float64 {
	var total float64
	for _, r := range readings {
		total += r.Consumption()
	}
	return total
}
