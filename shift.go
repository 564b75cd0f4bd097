package caravan

import "time"

// Shift is the tracking window of the current session. It is either Inactive
// or Active.
type Shift interface {
	isShift()
}

// Inactive is the absence of shift: current views are the whole ledger.
type Inactive struct{}

// Active is an open shift, started at Start with StartingBalance in the wallet.
type Active struct {
	Start           time.Time
	StartingBalance Copper
}

func (Inactive) isShift() {}
func (Active) isShift()   {}

// StartingBalance returns the balance the shift started with, 0 when inactive.
func StartingBalance(s Shift) Copper {
	switch v := s.(type) {
	case Active:
		return v.StartingBalance
	default:
		return 0
	}
}

// Filter returns the records of the current shift, i.e. with a timestamp at
// or after the shift start, in their original order.
//
// When the shift is inactive the records are returned unchanged.
func Filter[T Record](s Shift, records []T) []T {
	switch v := s.(type) {
	case Active:
		current := make([]T, 0, len(records))
		for _, r := range records {
			if !r.When().Before(v.Start) {
				current = append(current, r)
			}
		}
		return current
	default:
		return records
	}
}
