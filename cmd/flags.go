package cmd

import (
	"github.com/etnz/caravan"
	"github.com/shopspring/decimal"
)

// copperFlag is an amount flag in the "1з 50с" notation.
type copperFlag struct {
	value caravan.Copper
	set   bool
}

func (f *copperFlag) String() string {
	if !f.set {
		return ""
	}
	return f.value.String()
}

func (f *copperFlag) Set(s string) error {
	v, err := caravan.ParseCopper(s)
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

// decimalFlag is a decimal number flag.
type decimalFlag struct {
	value decimal.Decimal
	set   bool
}

func (f *decimalFlag) String() string {
	if !f.set {
		return ""
	}
	return f.value.String()
}

func (f *decimalFlag) Set(s string) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}
