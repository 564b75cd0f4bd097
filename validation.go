package caravan

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalid wraps every rejected record creation or update.
	ErrInvalid = errors.New("invalid record")
	// ErrNonPositiveExpense is returned when the remaining balance is not
	// below the current balance.
	ErrNonPositiveExpense = fmt.Errorf("%w: remaining balance must be lower than the current balance", ErrInvalid)
	// ErrNotFound is returned for unknown record ids.
	ErrNotFound = errors.New("record not found")
)

// DefaultExpenseLabel is used for expenses recorded without a label.
const DefaultExpenseLabel = "Resource purchase"

var validate = validator.New()

// TradeRequest is the input of a new trade.
type TradeRequest struct {
	From         string `json:"fromNode" validate:"required"`
	To           string `json:"toNode" validate:"required"`
	PricePerPack Copper `json:"pricePerPack" validate:"gt=0"`
	Packs        int    `json:"packsCount" validate:"gte=1"`
}

// ExpenseRequest is the input of a new expense: the wallet balance left after
// the purchase, the amount is derived from the current balance.
type ExpenseRequest struct {
	Label     string `json:"label" validate:"max=200"`
	Remaining Copper `json:"remaining" validate:"gte=0"`
}

// CoinSaleRequest is the input of a new coin sale.
type CoinSaleRequest struct {
	Amount   Copper          `json:"amount" validate:"gt=0"`
	USDPrice decimal.Decimal `json:"usdPrice"`
}

// Validate checks the request against the known nodes.
func (r TradeRequest) Validate(l *Ledger) error {
	if err := check(r); err != nil {
		return err
	}
	var unknown []string
	for _, name := range []string{r.From, r.To} {
		if !l.HasNode(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: unknown node %q", ErrInvalid, strings.Join(unknown, ", "))
	}
	return nil
}

// Amount returns the expense derived from the balance before the purchase.
func (r ExpenseRequest) Amount(balance Copper) (Copper, error) {
	if err := check(r); err != nil {
		return 0, err
	}
	amount := balance - r.Remaining
	if amount <= 0 {
		return 0, ErrNonPositiveExpense
	}
	return amount, nil
}

// Validate checks the request.
func (r CoinSaleRequest) Validate() error {
	if err := check(r); err != nil {
		return err
	}
	if r.USDPrice.IsNegative() {
		return fmt.Errorf("%w: usd price must not be negative", ErrInvalid)
	}
	return nil
}

// check runs the struct tag validations and turns failures into a single
// readable ErrInvalid.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			fields = append(fields, fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			fields = append(fields, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	sort.Strings(fields)
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, "; "))
}

// validateTrade checks an updated trade.
func validateTrade(l *Ledger, t Trade) error {
	return TradeRequest{From: t.FromNode, To: t.ToNode, PricePerPack: t.PricePerPack, Packs: t.PacksCount}.Validate(l)
}

// validateExpense checks an updated expense.
func validateExpense(e Expense) error {
	if e.Amount <= 0 {
		return fmt.Errorf("%w: expense amount must be positive", ErrInvalid)
	}
	return nil
}
