// Package core holds the expense-tracking domain types.
//
// This file contains cost parsing and formatting. Costs are held as paisa
// (hundredths of a rupee) in int64 to avoid floating-point drift; every
// rendered cost carries exactly two fractional digits.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseCost converts a decimal string to paisa with half-up rounding on the
// third fractional digit. An empty string is zero: cost fields on the entry
// form may be left blank. Negative values are rejected.
//
// Examples:
//
//	ParseCost("")       -> 0, nil
//	ParseCost("500")    -> 50000, nil
//	ParseCost("12.34")  -> 1234, nil
//	ParseCost("12.345") -> 1235, nil (rounds up)
func ParseCost(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, nil
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return Money{Paisa: iv*100 + frac}, nil
}

// String renders the amount with exactly two fractional digits, e.g. "123.45".
func (m Money) String() string {
	paisa := m.Paisa
	neg := paisa < 0
	if neg {
		paisa = -paisa
	}
	s := strconv.FormatInt(paisa/100, 10) + "." + fmt.Sprintf("%02d", paisa%100)
	if neg {
		return "-" + s
	}
	return s
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Paisa: m.Paisa + o.Paisa}
}
