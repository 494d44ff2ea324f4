package selector

import (
	"strconv"
	"strings"
)

// ParseAnB parses the An+B microsyntax of positional pseudo-classes, including odd and even.
func ParseAnB(s string) (a, b int, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	case "":
		return 0, 0, false
	}

	n := strings.IndexByte(s, 'n')
	if n == -1 {
		b, ok = parseSignedInt(s)
		return 0, b, ok
	}

	switch coef := s[:n]; coef {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		if a, ok = parseSignedInt(coef); !ok {
			return 0, 0, false
		}
	}

	rest := strings.TrimSpace(s[n+1:])
	if rest == "" {
		return a, 0, true
	}
	sign := rest[0]
	if sign != '+' && sign != '-' {
		return 0, 0, false
	}
	digits := strings.TrimSpace(rest[1:])
	if !allDigits(digits) {
		return 0, 0, false
	}
	if b, ok = parseSignedInt(digits); !ok {
		return 0, 0, false
	}
	if sign == '-' {
		b = -b
	}
	return a, b, true
}

// FormatAnB serializes An+B in its canonical form.
func FormatAnB(a, b int) string {
	if a == 0 {
		return strconv.Itoa(b)
	}
	sb := strings.Builder{}
	switch a {
	case 1:
	case -1:
		sb.WriteByte('-')
	default:
		sb.WriteString(strconv.Itoa(a))
	}
	sb.WriteByte('n')
	if 0 < b {
		sb.WriteByte('+')
		sb.WriteString(strconv.Itoa(b))
	} else if b < 0 {
		sb.WriteString(strconv.Itoa(b))
	}
	return sb.String()
}

func parseSignedInt(s string) (int, bool) {
	digits := s
	if 0 < len(s) && (s[0] == '+' || s[0] == '-') {
		digits = s[1:]
	}
	if !allDigits(digits) {
		return 0, false
	}
	i, err := strconv.Atoi(s)
	return i, err == nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || '9' < s[i] {
			return false
		}
	}
	return true
}
