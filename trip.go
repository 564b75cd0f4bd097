package caravan

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrTripActive is returned when starting a trip while another one runs.
	ErrTripActive = errors.New("a trip is already in progress")
	// ErrNoTrip is returned when finishing or cancelling without a trip.
	ErrNoTrip = errors.New("no trip in progress")
)

// Trip is a caravan on its way. It is not part of the ledger, it becomes the
// duration of a trade when the trade is recorded.
type Trip struct {
	FromNode string    `json:"fromNode"`
	ToNode   string    `json:"toNode"`
	Start    time.Time `json:"startTime"`
}

// Elapsed returns the time spent since the trip started.
func (t Trip) Elapsed(now time.Time) time.Duration {
	if now.Before(t.Start) {
		return 0
	}
	return now.Sub(t.Start)
}

// Minutes returns the elapsed time rounded to the nearest minute.
func (t Trip) Minutes(now time.Time) int {
	return int(math.Round(t.Elapsed(now).Minutes()))
}

// Route returns the route of the trip.
func (t Trip) Route() Route { return Route{From: t.FromNode, To: t.ToNode} }

// FormatElapsed formats d as HH:MM:SS.
func FormatElapsed(d time.Duration) string {
	s := int64(d.Truncate(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}
