package lexical

import (
	"math"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/strconv"

	"github.com/cssgrammar/grammar"
)

// Numeric is the result of re-scanning the raw text of a numeric token.
type Numeric struct {
	Type  Type // Integer, Real, Percentage or Dimension
	Float float64
	Int   int64
	Unit  string
}

// DimensionLen returns the length of the number and of the unit that follows it. The unit is either % or an identifier.
func DimensionLen(s string) (int, int) {
	num := parse.Number([]byte(s))
	if num == 0 || num == len(s) {
		return num, 0
	} else if s[num] == '%' {
		return num, 1
	}
	unit := s[num:]
	if !grammar.IsIdent(unit) {
		return num, 0
	}
	return num, len(unit)
}

// ParseNumeric re-scans the text of a numeric token into its value and unit. Escapes in the unit must already be resolved.
func ParseNumeric(s string) (Numeric, bool) {
	num, unit := DimensionLen(s)
	if num == 0 || num+unit != len(s) {
		return Numeric{}, false
	}
	f, n := strconv.ParseFloat([]byte(s[:num]))
	if n != num {
		return Numeric{}, false
	}
	r := Numeric{Float: f}
	switch {
	case unit == 1 && s[num] == '%':
		r.Type = Percentage
	case 0 < unit:
		r.Type = Dimension
		r.Unit = s[num:]
	case strings.ContainsAny(s, ".eE") || math.Abs(f) > math.MaxInt64/2:
		r.Type = Real
	default:
		r.Type = Integer
		r.Int = int64(f)
	}
	return r, true
}

// IsNumericStart returns true when s starts like a numeric token.
func IsNumericStart(s string) bool {
	if 0 < len(s) && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if 0 < len(s) && s[0] == '.' {
		s = s[1:]
	}
	return 0 < len(s) && isDigit(s[0])
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
