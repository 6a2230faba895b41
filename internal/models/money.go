package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in minor currency units (paise). All arithmetic in the
// booking flow happens on this type; conversion to major units is for display
// only and never feeds back into a calculation.
type Money int64

func (m Money) MulNights(nights int) Money {
	return m * Money(nights)
}

func (m Money) Sub(other Money) Money {
	return m - other
}

// ClampZero floors a payable amount at zero so a discount can never produce
// a negative total.
func (m Money) ClampZero() Money {
	if m < 0 {
		return 0
	}
	return m
}

func (m Money) Major() float64 {
	return float64(m) / 100
}

// Display renders the amount in major units with thousands grouping,
// e.g. 1234550 -> "12,345.50".
func (m Money) Display() string {
	negative := m < 0
	v := int64(m)
	if negative {
		v = -v
	}

	whole := v / 100
	frac := v % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := fmt.Sprintf("%s.%02d", b.String(), frac)
	if negative {
		return "-" + out
	}
	return out
}
