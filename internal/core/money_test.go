package core

import (
	"errors"
	"testing"
)

func TestScrubPrice(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		err error
	}{
		{"1200", 1200, nil},
		{"¥1,200", 1200, nil},
		{"-1,200", 1200, nil},
		{"1,200円", 1200, nil},
		{"１，２００", 1200, nil},
		{" 0480 ", 480, nil},
		{"1.5", 15, nil},
		{"9223372036854775807", 9223372036854775807, nil},
		{"0", 0, ErrInvalidPrice},
		{"000", 0, ErrInvalidPrice},
		{"", 0, ErrInvalidPrice},
		{"-", 0, ErrInvalidPrice},
		{"abc", 0, ErrInvalidPrice},
		{"9223372036854775808", 0, ErrPriceOutOfRange},
		{"99999999999999999999999", 0, ErrPriceOutOfRange},
	}
	for _, tc := range cases {
		got, err := ScrubPrice(tc.in)
		if got != tc.out || !errors.Is(err, tc.err) || (tc.err == nil && err != nil) {
			t.Fatalf("%q expected (%d,%v), got (%d,%v)", tc.in, tc.out, tc.err, got, err)
		}
	}
}
