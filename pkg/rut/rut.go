// Package rut validates and normalizes Chilean RUT identifiers.
package rut

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("invalid RUT")

// Normalize strips dots, spaces and dashes, validates the check digit and
// returns the canonical "12345678-5" form with an upper-case K.
func Normalize(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(".", "", " ", "", "-", "").Replace(s)
	if len(s) < 2 || len(s) > 9 {
		return "", ErrInvalid
	}

	body, dv := s[:len(s)-1], s[len(s)-1:]
	n, err := strconv.Atoi(body)
	if err != nil || n <= 0 {
		return "", ErrInvalid
	}
	if CheckDigit(n) != dv {
		return "", ErrInvalid
	}

	return strconv.Itoa(n) + "-" + dv, nil
}

func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// CheckDigit computes the modulo-11 verifier for the numeric part.
func CheckDigit(n int) string {
	sum, factor := 0, 2
	for ; n > 0; n /= 10 {
		sum += (n % 10) * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(r)
	}
}
