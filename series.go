package caravan

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// MinSeriesPoints is the number of points under which a series is not worth
// charting.
const MinSeriesPoints = 2

// Point is a price per pack observed at a given instant.
type Point struct {
	At    time.Time `json:"at"`
	Price Copper    `json:"price"`
}

// Gold returns the price in gold-equivalent, for charts.
func (p Point) Gold() decimal.Decimal { return p.Price.Gold() }

// BuildSeries returns the price per pack of a route in chronological order.
//
// A zero route selects the best route as ranked by ComputeRouteStats. The
// result may hold fewer than MinSeriesPoints points, see Sufficient.
func BuildSeries(trades []Trade, route Route) []Point {
	if route.IsZero() {
		top := ComputeRouteStats(trades)
		if len(top) == 0 {
			return nil
		}
		route = top[0].Route
	}

	var points []Point
	for _, t := range trades {
		if t.Route() == route {
			points = append(points, Point{At: t.Timestamp, Price: t.PricePerPack})
		}
	}
	slices.SortStableFunc(points, func(a, b Point) int { return a.At.Compare(b.At) })
	return points
}

// Sufficient reports whether there is enough data to chart a series.
func Sufficient(points []Point) bool { return len(points) >= MinSeriesPoints }
