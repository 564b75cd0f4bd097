package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/etnz/caravan"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type dashboardResponse struct {
	caravan.Dashboard
	ShiftActive bool            `json:"shiftActive"`
	ShiftStart  *time.Time      `json:"shiftStart,omitempty"`
	PerHour     decimal.Decimal `json:"perHour"`
	Currency    string          `json:"currency"`
}

func (s *Server) dashboard(c *gin.Context) {
	s.read(c, func(sess *caravan.Session) (any, error) {
		d := sess.Dashboard(s.rates)
		resp := dashboardResponse{
			Dashboard: d,
			PerHour:   d.PerHour.Decimal().Round(2),
			Currency:  d.PerHour.Currency(),
		}
		if a, ok := d.Shift.(caravan.Active); ok {
			resp.ShiftActive = true
			resp.ShiftStart = &a.Start
		}
		return resp, nil
	})
}

func (s *Server) history(c *gin.Context) {
	var kinds []caravan.Kind
	if t := c.Query("type"); t != "" {
		k, err := caravan.ParseKind(t)
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		kinds = append(kinds, k)
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		fail(c, http.StatusBadRequest, caravan.ErrInvalid)
		return
	}
	s.read(c, func(sess *caravan.Session) (any, error) {
		log := caravan.History(sess.CurrentTrades(), sess.CurrentExpenses(), sess.CurrentCoinSales(), kinds...)
		if limit > 0 && len(log) > limit {
			log = log[:limit]
		}
		return gin.H{"records": log}, nil
	})
}

func (s *Server) routeStats(c *gin.Context) {
	all := c.Query("all") == "true"
	s.read(c, func(sess *caravan.Session) (any, error) {
		stats := caravan.ComputeRouteStats(sess.CurrentTrades())
		if all {
			stats = caravan.AllRouteStats(sess.CurrentTrades())
		}
		if stats == nil {
			stats = []caravan.RouteStat{}
		}
		return gin.H{"routes": stats}, nil
	})
}

type seriesPoint struct {
	caravan.Point
	Gold decimal.Decimal `json:"gold"`
}

func (s *Server) series(c *gin.Context) {
	route := caravan.Route{From: c.Query("from"), To: c.Query("to")}
	s.read(c, func(sess *caravan.Session) (any, error) {
		trades := sess.CurrentTrades()
		if route.IsZero() {
			if top := caravan.ComputeRouteStats(trades); len(top) > 0 {
				route = top[0].Route
			}
		}
		points := caravan.BuildSeries(trades, route)
		resp := make([]seriesPoint, 0, len(points))
		for _, p := range points {
			resp = append(resp, seriesPoint{Point: p, Gold: p.Gold()})
		}
		return gin.H{
			"route":      route,
			"points":     resp,
			"sufficient": caravan.Sufficient(points),
		}, nil
	})
}

func (s *Server) nodes(c *gin.Context) {
	s.read(c, func(sess *caravan.Session) (any, error) {
		return gin.H{"nodes": sess.Ledger.Nodes(), "custom": sess.Ledger.CustomNodes()}, nil
	})
}

type nodeRequest struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

func (s *Server) addNode(c *gin.Context) {
	var req nodeRequest
	s.write(c, http.StatusCreated, func(sess *caravan.Session) (any, error) {
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return sess.AddNode(req.Name, req.Region)
	})
}

func (s *Server) recordTrade(c *gin.Context) {
	var req caravan.TradeRequest
	s.write(c, http.StatusCreated, func(sess *caravan.Session) (any, error) {
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return sess.RecordTrade(req)
	})
}

func (s *Server) recordExpense(c *gin.Context) {
	var req caravan.ExpenseRequest
	s.write(c, http.StatusCreated, func(sess *caravan.Session) (any, error) {
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return sess.RecordExpense(req)
	})
}

func (s *Server) recordCoinSale(c *gin.Context) {
	var req caravan.CoinSaleRequest
	s.write(c, http.StatusCreated, func(sess *caravan.Session) (any, error) {
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return sess.RecordCoinSale(req)
	})
}

// The patches list the fields a client may change: absent fields are left
// unchanged, timestamps and trip durations are never changed.
type tradePatch struct {
	FromNode     *string         `json:"fromNode"`
	ToNode       *string         `json:"toNode"`
	PacksCount   *int            `json:"packsCount"`
	PricePerPack *caravan.Copper `json:"pricePerPack"`
}

func (p tradePatch) apply(t caravan.Trade) caravan.Trade {
	if p.FromNode != nil {
		t.FromNode = *p.FromNode
	}
	if p.ToNode != nil {
		t.ToNode = *p.ToNode
	}
	if p.PacksCount != nil {
		t.PacksCount = *p.PacksCount
	}
	if p.PricePerPack != nil {
		t.PricePerPack = *p.PricePerPack
	}
	return t
}

type expensePatch struct {
	Label  *string         `json:"label"`
	Amount *caravan.Copper `json:"amount"`
}

func (p expensePatch) apply(e caravan.Expense) caravan.Expense {
	if p.Label != nil {
		e.Label = *p.Label
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	return e
}

type coinSalePatch struct {
	Amount   *caravan.Copper  `json:"amount"`
	USDPrice *decimal.Decimal `json:"usdPrice"`
}

func (p coinSalePatch) apply(cs caravan.CoinSale) caravan.CoinSale {
	if p.Amount != nil {
		cs.Amount = *p.Amount
	}
	if p.USDPrice != nil {
		cs.USDPrice = *p.USDPrice
	}
	return cs
}

func (s *Server) updateRecord(c *gin.Context) {
	id := c.Param("id")
	s.write(c, http.StatusOK, func(sess *caravan.Session) (any, error) {
		r, ok := sess.Find(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", caravan.ErrNotFound, id)
		}
		var err error
		switch v := r.(type) {
		case caravan.Trade:
			var p tradePatch
			if err := bind(c, &p); err != nil {
				return nil, err
			}
			err = sess.UpdateTrade(p.apply(v))
		case caravan.Expense:
			var p expensePatch
			if err := bind(c, &p); err != nil {
				return nil, err
			}
			err = sess.UpdateExpense(p.apply(v))
		case caravan.CoinSale:
			var p coinSalePatch
			if err := bind(c, &p); err != nil {
				return nil, err
			}
			err = sess.UpdateCoinSale(p.apply(v))
		}
		if err != nil {
			return nil, err
		}
		r, _ = sess.Find(id)
		return r, nil
	})
}

func (s *Server) deleteRecord(c *gin.Context) {
	id := c.Param("id")
	s.write(c, http.StatusOK, func(sess *caravan.Session) (any, error) {
		if !sess.Delete(id) {
			return nil, fmt.Errorf("%w: %q", caravan.ErrNotFound, id)
		}
		return gin.H{"deleted": id}, nil
	})
}

type shiftResponse struct {
	Active          bool           `json:"active"`
	Start           *time.Time     `json:"start,omitempty"`
	StartingBalance caravan.Copper `json:"startingBalance"`
	Balance         caravan.Copper `json:"balance"`
}

func shiftOf(sess *caravan.Session) shiftResponse {
	resp := shiftResponse{Balance: sess.Balance()}
	if a, ok := sess.Shift().(caravan.Active); ok {
		resp.Active = true
		resp.Start = &a.Start
		resp.StartingBalance = a.StartingBalance
	}
	return resp
}

func (s *Server) shift(c *gin.Context) {
	s.read(c, func(sess *caravan.Session) (any, error) { return shiftOf(sess), nil })
}

type startShiftRequest struct {
	StartingBalance caravan.Copper `json:"startingBalance"`
}

func (s *Server) startShift(c *gin.Context) {
	var req startShiftRequest
	s.write(c, http.StatusOK, func(sess *caravan.Session) (any, error) {
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		sess.StartShift(req.StartingBalance)
		return shiftOf(sess), nil
	})
}

func (s *Server) stopShift(c *gin.Context) {
	s.write(c, http.StatusOK, func(sess *caravan.Session) (any, error) {
		sess.StopShift()
		return shiftOf(sess), nil
	})
}

type tripResponse struct {
	Trip    *caravan.Trip `json:"trip"`
	Elapsed string        `json:"elapsed,omitempty"`
	Minutes int           `json:"minutes"`
}

func tripOf(sess *caravan.Session) tripResponse {
	t := sess.Trip()
	if t == nil {
		return tripResponse{}
	}
	now := sess.Now()
	return tripResponse{Trip: t, Elapsed: caravan.FormatElapsed(t.Elapsed(now)), Minutes: t.Minutes(now)}
}

func (s *Server) trip(c *gin.Context) {
	s.read(c, func(sess *caravan.Session) (any, error) { return tripOf(sess), nil })
}

type startTripRequest struct {
	From string `json:"fromNode"`
	To   string `json:"toNode"`
}

func (s *Server) startTrip(c *gin.Context) {
	var req startTripRequest
	s.write(c, http.StatusCreated, func(sess *caravan.Session) (any, error) {
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		if _, err := sess.StartTrip(req.From, req.To); err != nil {
			return nil, err
		}
		return tripOf(sess), nil
	})
}

type finishTripRequest struct {
	PricePerPack caravan.Copper `json:"pricePerPack"`
	Packs        int            `json:"packsCount"`
}

func (s *Server) finishTrip(c *gin.Context) {
	var req finishTripRequest
	s.write(c, http.StatusCreated, func(sess *caravan.Session) (any, error) {
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return sess.FinishTrip(req.PricePerPack, req.Packs)
	})
}

func (s *Server) cancelTrip(c *gin.Context) {
	s.write(c, http.StatusOK, func(sess *caravan.Session) (any, error) {
		if err := sess.CancelTrip(); err != nil {
			return nil, err
		}
		return tripOf(sess), nil
	})
}

func (s *Server) export(c *gin.Context) {
	s.read(c, func(sess *caravan.Session) (any, error) { return sess.Export(), nil })
}

func (s *Server) importDocument(c *gin.Context) {
	s.write(c, http.StatusOK, func(sess *caravan.Session) (any, error) {
		fields, err := sess.Import(c.Request.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", caravan.ErrInvalid, err)
		}
		return gin.H{"imported": fields}, nil
	})
}
