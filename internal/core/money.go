// Package core provides price scrubbing for imported statements.
//
// Bank and card exports carry prices in every regional notation ("¥1,200",
// "1.200 JPY", "-1,200"). The ledger stores the smallest currency unit as an
// integer, so the scrubber keeps digits only.
package core

import (
	"errors"
	"strconv"
	"strings"
)

// PlaceholderStore is the value some exports put in empty store columns.
const PlaceholderStore = "-"

// ErrPriceOutOfRange means the digits of a price do not fit in an int64.
var ErrPriceOutOfRange = errors.New("price out of range")

// ScrubPrice strips every non-digit character from s and returns the
// remaining number. Sign and decimal markers are discarded on purpose: the
// concatenated digits already are the smallest-unit amount.
//
// Examples:
//
//	ScrubPrice("¥1,200") -> 1200, nil
//	ScrubPrice("-1,200") -> 1200, nil
//	ScrubPrice("0")      -> 0, ErrInvalidPrice
//	ScrubPrice("")       -> 0, ErrInvalidPrice
//
// Digits too long for an int64 give ErrPriceOutOfRange.
func ScrubPrice(s string) (int64, error) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		// Full-width digits show up in Japanese exports.
		if r >= '０' && r <= '９' {
			b.WriteRune('0' + (r - '０'))
		}
	}
	digits := b.String()
	if digits == "" {
		return 0, ErrInvalidPrice
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, ErrPriceOutOfRange
	}
	if err != nil || v <= 0 {
		return 0, ErrInvalidPrice
	}
	return v, nil
}
