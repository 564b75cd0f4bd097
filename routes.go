package caravan

import (
	"slices"
	"time"
)

// TopRoutes is the number of routes kept by ComputeRouteStats.
const TopRoutes = 5

// Route is an ordered pair of nodes: A→B and B→A are distinct routes.
type Route struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// IsZero reports whether no route is selected.
func (r Route) IsZero() bool { return r == Route{} }

func (r Route) String() string { return r.From + " → " + r.To }

// RouteStat aggregates all trades of a route.
type RouteStat struct {
	Route
	TotalProfit Copper    `json:"totalProfit"`
	Count       int       `json:"count"`
	TotalPacks  int       `json:"totalPacks"`
	AvgProfit   Copper    `json:"avgProfit"`
	LastUsed    time.Time `json:"lastUsed"`
}

// ComputeRouteStats ranks routes by average profit per trade and returns the
// TopRoutes best ones.
func ComputeRouteStats(trades []Trade) []RouteStat {
	stats := AllRouteStats(trades)
	if len(stats) > TopRoutes {
		stats = stats[:TopRoutes]
	}
	return stats
}

// AllRouteStats ranks every route by average profit per trade.
//
// Statistics are recomputed from scratch at every call. Routes with the same
// average keep the order in which they first appear in trades.
func AllRouteStats(trades []Trade) []RouteStat {
	index := make(map[Route]int)
	var stats []RouteStat
	for _, t := range trades {
		r := t.Route()
		i, ok := index[r]
		if !ok {
			i = len(stats)
			index[r] = i
			stats = append(stats, RouteStat{Route: r, LastUsed: t.Timestamp})
		}
		s := &stats[i]
		s.TotalProfit += t.Profit
		s.Count++
		s.TotalPacks += t.PacksCount
		if t.Timestamp.After(s.LastUsed) {
			s.LastUsed = t.Timestamp
		}
	}
	for i := range stats {
		stats[i].AvgProfit = roundDiv(stats[i].TotalProfit, Copper(stats[i].Count))
	}
	slices.SortStableFunc(stats, func(a, b RouteStat) int {
		switch {
		case a.AvgProfit > b.AvgProfit:
			return -1
		case a.AvgProfit < b.AvgProfit:
			return 1
		}
		return 0
	})
	return stats
}

// roundDiv returns a/b rounded half up (toward +∞), b > 0.
func roundDiv(a, b Copper) Copper {
	return floorDiv(2*a+b, 2*b)
}

func floorDiv(a, b Copper) Copper {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
