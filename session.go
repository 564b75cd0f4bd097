package caravan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/caravan/storage"
	"github.com/sirupsen/logrus"
)

// Session is the top-level context of the application: the ledger, the
// current shift and the trip in progress, bound to a storage backend.
//
// A Session has a single writer. Callers sharing it between goroutines must
// serialize access.
type Session struct {
	Ledger *Ledger

	shift Shift
	trip  *Trip

	backend storage.Backend
	now     func() time.Time
	dirty   map[string]bool // session keys: shift and trip
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used to timestamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates an empty session on top of backend without loading it.
func NewSession(backend storage.Backend, opts ...Option) *Session {
	s := &Session{
		Ledger:  NewLedger(),
		shift:   Inactive{},
		backend: backend,
		now:     time.Now,
		dirty:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a session and loads its state from backend.
func Open(ctx context.Context, backend storage.Backend, opts ...Option) (*Session, error) {
	s := NewSession(backend, opts...)
	if err := s.Ledger.Load(ctx, backend); err != nil {
		return nil, err
	}
	if err := s.loadShift(ctx); err != nil {
		return nil, err
	}
	if err := s.loadTrip(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Now returns the session clock.
func (s *Session) Now() time.Time { return s.now() }

// Shift returns the current shift.
func (s *Session) Shift() Shift { return s.shift }

// Trip returns the trip in progress, or nil.
func (s *Session) Trip() *Trip {
	if s.trip == nil {
		return nil
	}
	t := *s.trip
	return &t
}

// CurrentTrades returns the trades of the current shift.
func (s *Session) CurrentTrades() []Trade { return Filter(s.shift, s.Ledger.Trades()) }

// CurrentExpenses returns the expenses of the current shift.
func (s *Session) CurrentExpenses() []Expense { return Filter(s.shift, s.Ledger.Expenses()) }

// CurrentCoinSales returns the coin sales of the current shift.
func (s *Session) CurrentCoinSales() []CoinSale { return Filter(s.shift, s.Ledger.CoinSales()) }

// Balance returns the current wallet balance.
//
// With an active shift it is the starting balance plus the shift records,
// otherwise it is the sum of the whole ledger.
func (s *Session) Balance() Copper {
	return ComputeBalance(StartingBalance(s.shift), s.CurrentTrades(), s.CurrentExpenses(), s.CurrentCoinSales())
}

// StartShift opens a new shift now, replacing any active one.
func (s *Session) StartShift(balance Copper) Active {
	a := Active{Start: s.now(), StartingBalance: balance}
	s.shift = a
	s.dirty[KeyDayStartTime] = true
	return a
}

// StopShift closes the shift. Records are left untouched.
func (s *Session) StopShift() {
	s.shift = Inactive{}
	s.dirty[KeyDayStartTime] = true
}

// RecordTrade validates and appends a new trade.
func (s *Session) RecordTrade(req TradeRequest) (Trade, error) {
	if err := req.Validate(s.Ledger); err != nil {
		return Trade{}, err
	}
	t := NewTrade(s.now(), req.From, req.To, req.Packs, req.PricePerPack)
	s.Ledger.AddTrade(t)
	return t, nil
}

// RecordExpense derives the expense from the remaining balance and appends it.
func (s *Session) RecordExpense(req ExpenseRequest) (Expense, error) {
	amount, err := req.Amount(s.Balance())
	if err != nil {
		return Expense{}, err
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = DefaultExpenseLabel
	}
	e := NewExpense(s.now(), label, amount)
	s.Ledger.AddExpense(e)
	return e, nil
}

// RecordCoinSale validates and appends a new coin sale.
func (s *Session) RecordCoinSale(req CoinSaleRequest) (CoinSale, error) {
	if err := req.Validate(); err != nil {
		return CoinSale{}, err
	}
	c := NewCoinSale(s.now(), req.Amount, req.USDPrice)
	s.Ledger.AddCoinSale(c)
	return c, nil
}

// Find returns the record with this id, whatever its kind.
func (s *Session) Find(id string) (Record, bool) { return s.Ledger.Find(id) }

// Delete removes the record with this id, whatever its kind. Unknown ids are
// a no-op that returns false.
func (s *Session) Delete(id string) bool {
	return s.Ledger.DeleteTrade(id) || s.Ledger.DeleteExpense(id) || s.Ledger.DeleteCoinSale(id)
}

// UpdateTrade validates and replaces a trade.
func (s *Session) UpdateTrade(t Trade) error {
	if err := validateTrade(s.Ledger, t); err != nil {
		return err
	}
	if !s.Ledger.UpdateTrade(t) {
		return fmt.Errorf("%w: trade %q", ErrNotFound, t.ID)
	}
	return nil
}

// UpdateExpense validates and replaces an expense.
func (s *Session) UpdateExpense(e Expense) error {
	if err := validateExpense(e); err != nil {
		return err
	}
	if !s.Ledger.UpdateExpense(e) {
		return fmt.Errorf("%w: expense %q", ErrNotFound, e.ID)
	}
	return nil
}

// UpdateCoinSale validates and replaces a coin sale.
func (s *Session) UpdateCoinSale(c CoinSale) error {
	if err := (CoinSaleRequest{Amount: c.Amount, USDPrice: c.USDPrice}).Validate(); err != nil {
		return err
	}
	if !s.Ledger.UpdateCoinSale(c) {
		return fmt.Errorf("%w: coin sale %q", ErrNotFound, c.ID)
	}
	return nil
}

// StartTrip starts the trip timer between two known nodes.
func (s *Session) StartTrip(from, to string) (Trip, error) {
	if s.trip != nil {
		return Trip{}, ErrTripActive
	}
	for _, name := range []string{from, to} {
		if !s.Ledger.HasNode(name) {
			return Trip{}, fmt.Errorf("%w: unknown node %q", ErrInvalid, name)
		}
	}
	t := Trip{FromNode: from, ToNode: to, Start: s.now()}
	s.trip = &t
	s.dirty[KeyActiveTrip] = true
	return t, nil
}

// CancelTrip discards the trip in progress.
func (s *Session) CancelTrip() error {
	if s.trip == nil {
		return ErrNoTrip
	}
	s.trip = nil
	s.dirty[KeyActiveTrip] = true
	return nil
}

// FinishTrip records the trade of the trip in progress with its duration.
func (s *Session) FinishTrip(pricePerPack Copper, packs int) (Trade, error) {
	if s.trip == nil {
		return Trade{}, ErrNoTrip
	}
	req := TradeRequest{From: s.trip.FromNode, To: s.trip.ToNode, PricePerPack: pricePerPack, Packs: packs}
	if err := req.Validate(s.Ledger); err != nil {
		return Trade{}, err
	}
	now := s.now()
	minutes := s.trip.Minutes(now)
	t := NewTrade(now, req.From, req.To, req.Packs, req.PricePerPack)
	t.DurationMinutes = &minutes
	s.Ledger.AddTrade(t)

	s.trip = nil
	s.dirty[KeyActiveTrip] = true
	return t, nil
}

// AddNode adds a custom node.
func (s *Session) AddNode(name, region string) (Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Node{}, fmt.Errorf("%w: node name is required", ErrInvalid)
	}
	n, ok := s.Ledger.AddNode(name, region)
	if !ok {
		return Node{}, fmt.Errorf("%w: node %q already exists", ErrInvalid, name)
	}
	return n, nil
}

// Dirty reports whether some state has not been flushed yet.
func (s *Session) Dirty() bool { return s.Ledger.Dirty() || len(s.dirty) > 0 }

// Flush persists every piece of state modified since the last flush.
//
// Mutations only mark state as dirty, so several mutations are coalesced into
// a single write per key.
func (s *Session) Flush(ctx context.Context) error {
	errs := s.Ledger.Save(ctx, s.backend)
	if s.dirty[KeyDayStartTime] {
		if err := s.saveShift(ctx); err != nil {
			errs = errors.Join(errs, err)
		} else {
			delete(s.dirty, KeyDayStartTime)
		}
	}
	if s.dirty[KeyActiveTrip] {
		if err := s.saveTrip(ctx); err != nil {
			errs = errors.Join(errs, err)
		} else {
			delete(s.dirty, KeyActiveTrip)
		}
	}
	return errs
}

func (s *Session) saveShift(ctx context.Context) error {
	switch v := s.shift.(type) {
	case Active:
		if err := s.backend.Set(ctx, KeyDayStartTime, v.Start.Format(time.RFC3339Nano)); err != nil {
			return err
		}
		return s.backend.Set(ctx, KeyStartingBalance, strconv.FormatInt(int64(v.StartingBalance), 10))
	default:
		return errors.Join(
			s.backend.Remove(ctx, KeyDayStartTime),
			s.backend.Remove(ctx, KeyStartingBalance),
		)
	}
}

func (s *Session) loadShift(ctx context.Context) error {
	start, ok, err := s.backend.Get(ctx, KeyDayStartTime)
	if err != nil || !ok {
		return err
	}
	on, err := time.Parse(time.RFC3339Nano, start)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": KeyDayStartTime, "error": err}).Warn("ignoring malformed shift start")
		return nil
	}
	var balance Copper
	txt, ok, err := s.backend.Get(ctx, KeyStartingBalance)
	if err != nil {
		return err
	}
	if ok {
		n, err := strconv.ParseInt(strings.TrimSpace(txt), 10, 64)
		if err != nil {
			logrus.WithFields(logrus.Fields{"key": KeyStartingBalance, "error": err}).Warn("ignoring malformed starting balance")
		} else {
			balance = Copper(n)
		}
	}
	s.shift = Active{Start: on, StartingBalance: balance}
	return nil
}

func (s *Session) saveTrip(ctx context.Context) error {
	if s.trip == nil {
		return s.backend.Remove(ctx, KeyActiveTrip)
	}
	data, err := json.Marshal(s.trip)
	if err != nil {
		return fmt.Errorf("cannot encode trip: %w", err)
	}
	return s.backend.Set(ctx, KeyActiveTrip, string(data))
}

func (s *Session) loadTrip(ctx context.Context) error {
	txt, ok, err := s.backend.Get(ctx, KeyActiveTrip)
	if err != nil || !ok {
		return err
	}
	var t Trip
	if err := json.Unmarshal([]byte(txt), &t); err != nil {
		logrus.WithFields(logrus.Fields{"key": KeyActiveTrip, "error": err}).Warn("ignoring malformed trip")
		return nil
	}
	s.trip = &t
	return nil
}
