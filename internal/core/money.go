// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and euro representations.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// ParseDecimalToCents converts a decimal string to cents.
//
// It accepts dot (12.34) and comma (12,34) decimal separators. When a comma
// is present, dots are read as thousands separators (1.050,00) and must come
// before it, so "1,234.56" is rejected rather than misread. More than two
// fractional digits are rounded half away from zero. Signs are rejected, so the
// result is always a non-negative magnitude.
//
// Examples:
//
//	ParseDecimalToCents("12.34")    -> 1234, nil
//	ParseDecimalToCents("12,34")    -> 1234, nil
//	ParseDecimalToCents("1.050,00") -> 105000, nil
//	ParseDecimalToCents("12.345")   -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if i := strings.Index(s, ","); i >= 0 {
		if strings.Contains(s[i+1:], ".") || strings.Count(s, ",") > 1 {
			return 0, ErrInvalidAmount
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return decimalToCents(d.Shift(2))
}

// CentsFromMinorUnits parses an amount that is already expressed in minor
// units but may carry float noise, e.g. 1998.9999999999998.
func CentsFromMinorUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return decimalToCents(d)
}

func decimalToCents(cents decimal.Decimal) (int64, error) {
	if cents.IsNegative() {
		return 0, ErrInvalidAmount
	}
	cents = cents.Round(0)
	if cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// Decimal returns the amount in euros as an exact decimal string with two
// fractional digits.
func (m Money) Decimal() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// Euros returns the euro value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// Negative reports whether the amount is below zero. Only balances can be.
func (m Money) Negative() bool {
	return m.Cents < 0
}
