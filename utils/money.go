package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidAmount is returned for input that cannot be resolved to a finite
// number. Callers must reject the operation — never coerce to zero.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts human-entered money strings to a number, accepting
// mixed pt-BR and en-US separator conventions without a locale flag:
//
//	"1.234,56"  => 1234.56
//	"1,234.56"  => 1234.56
//	"1234,56"   => 1234.56
//	"1234.56"   => 1234.56
//	"1.000"     => 1000     (dot as thousands)
//	"1.000.000" => 1000000  (multiple dots as thousands)
//	"1000"      => 1000
//
// When both separators occur, the one appearing last is the decimal point.
// A single dot followed by exactly 3 digits is read as a thousands separator
// ("1.000" is one thousand, not 1.0) — a deliberate bias for a 2-decimal
// currency, covered by tests.
func ParseAmount(raw string) (float64, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// comma is decimal ("1.234,56"): dots are thousands
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// dot is decimal ("1,234.56"): commas are thousands
			s = strings.ReplaceAll(s, ",", "")
		}

	case hasComma:
		// comma is the decimal point; a second comma makes ParseFloat fail
		s = strings.Replace(s, ",", ".", 1)

	case hasDot:
		parts := strings.Split(s, ".")
		if len(parts) > 2 {
			// "1.000.000" — every dot is a thousands separator
			s = strings.Join(parts, "")
		} else if len(parts[1]) == 3 && len(parts[0]) >= 1 {
			// "1.000" — thousands, not a sub-cent decimal
			s = parts[0] + parts[1]
		}
		// otherwise a plain decimal like "1.5"
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// FormatAmount renders n with 2 decimal places, dot-grouped thousands and a
// comma decimal ("1234567.8" => "1.234.567,80"). Non-finite input formats as
// zero. Display only — stored values are always the parsed number, never the
// formatted string.
func FormatAmount(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	s := strconv.FormatFloat(RoundToTwo(n), 'f', 2, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}
