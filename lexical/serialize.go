package lexical

import (
	"math"
	"strconv"
	"strings"

	"github.com/cssgrammar/grammar"
)

// String returns the CSS text of the chain starting at v.
func (v Value) String() string {
	if v.IsNil() {
		return ""
	}
	sb := strings.Builder{}
	writeChain(&sb, v)
	return sb.String()
}

// CSSText returns the CSS text of the single unit v, including its parameters.
func (v Value) CSSText() string {
	if v.IsNil() {
		return ""
	}
	sb := strings.Builder{}
	writeUnit(&sb, v)
	return sb.String()
}

func writeChain(sb *strings.Builder, v Value) {
	var prev Value
	for ; !v.IsNil(); v = v.Next() {
		if !prev.IsNil() && needsSpace(prev, v) {
			sb.WriteByte(' ')
		}
		writeUnit(sb, v)
		prev = v
	}
}

// needsSpace returns true when a separator is written between two consecutive units.
func needsSpace(prev, v Value) bool {
	switch v.Type() {
	case OperatorComma, OperatorMultiply, OperatorSlash, RightBracket, CompatPrio:
		return false
	case OperatorPlus, OperatorMinus:
		return true
	}
	switch prev.Type() {
	case LeftBracket, OperatorMultiply, OperatorSlash:
		return false
	}
	return true
}

func writeUnit(sb *strings.Builder, v Value) {
	n := v.node()
	switch n.typ {
	case Inherit, Initial, Unset, Revert, RevertLayer:
		sb.WriteString(keywordNames[n.typ])
	case Integer:
		sb.WriteString(strconv.FormatInt(n.integer, 10))
	case Real:
		s := FormatNumber(n.num)
		sb.WriteString(s)
		if !strings.ContainsAny(s, ".en") {
			sb.WriteString(".0")
		}
	case Percentage:
		sb.WriteString(FormatNumber(n.num))
		sb.WriteByte('%')
	case Dimension:
		sb.WriteString(FormatNumber(n.num))
		writeUnitName(sb, n.unit)
	case Ident:
		sb.WriteString(grammar.EscapeIdent(n.text))
	case String:
		sb.WriteString(grammar.QuoteString(n.text, quoteOf(n.quote)))
	case URI:
		sb.WriteString("url(")
		if n.quote == 0 && safeUnquotedURL(n.text) {
			sb.WriteString(n.text)
		} else {
			sb.WriteString(grammar.QuoteString(n.text, quoteOf(n.quote)))
		}
		sb.WriteByte(')')
	case OperatorComma:
		sb.WriteByte(',')
	case OperatorPlus:
		sb.WriteByte('+')
	case OperatorMinus:
		sb.WriteByte('-')
	case OperatorMultiply:
		sb.WriteByte('*')
	case OperatorSlash:
		sb.WriteByte('/')
	case LeftBracket:
		sb.WriteByte('[')
	case RightBracket:
		sb.WriteByte(']')
	case SubExpression:
		sb.WriteByte('(')
		writeChain(sb, v.Parameters())
		sb.WriteByte(')')
	case Empty:
	case UnicodeRange, UnicodeWildcard, CompatIdent, CompatPrio, Block, Unknown:
		sb.WriteString(n.text)
	default:
		if n.typ == RGBColor && strings.HasPrefix(n.text, "#") {
			sb.WriteString(n.text)
			return
		}
		sb.WriteString(grammar.EscapeIdent(n.text))
		sb.WriteByte('(')
		writeChain(sb, v.Parameters())
		sb.WriteByte(')')
	}
}

var keywordNames = map[Type]string{
	Inherit:     "inherit",
	Initial:     "initial",
	Unset:       "unset",
	Revert:      "revert",
	RevertLayer: "revert-layer",
}

func quoteOf(q byte) byte {
	if q == '\'' {
		return q
	}
	return '"'
}

// writeUnitName writes a dimension unit, escaping a leading e that would otherwise read as an exponent.
func writeUnitName(sb *strings.Builder, unit string) {
	if 1 < len(unit) && (unit[0] == 'e' || unit[0] == 'E') && (isDigit(unit[1]) || unit[1] == '-' || unit[1] == '+') {
		sb.WriteString(`\`)
		sb.WriteString(strconv.FormatInt(int64(unit[0]), 16))
		sb.WriteByte(' ')
		sb.WriteString(grammar.EscapeIdent("a" + unit[1:])[1:])
		return
	}
	sb.WriteString(grammar.EscapeIdent(unit))
}

func safeUnquotedURL(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c <= ' ' || c == 0x7F, c == '"', c == '\'', c == '(', c == ')', c == '\\':
			return false
		}
	}
	return true
}

// FormatNumber returns the shortest CSS representation of f.
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs < 1e-6 || 1e21 <= abs {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		return strings.Replace(s, "e+", "e", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
