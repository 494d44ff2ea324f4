package lexical

import "strings"

// Equal reports whether the chains starting at x and y are structurally equal. Comments are ignored, function names and
// units compare case-insensitively. The values may live in different arenas.
func Equal(x, y Value) bool {
	for ; !x.IsNil() && !y.IsNil(); x, y = x.Next(), y.Next() {
		if !EqualUnit(x, y) {
			return false
		}
	}
	return x.IsNil() && y.IsNil()
}

// EqualUnit reports whether the single units x and y are structurally equal, including their parameters.
func EqualUnit(x, y Value) bool {
	if x.IsNil() || y.IsNil() {
		return x.IsNil() == y.IsNil()
	}
	a, b := x.node(), y.node()
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case Integer:
		if a.integer != b.integer {
			return false
		}
	case Real, Percentage:
		if a.num != b.num {
			return false
		}
	case Dimension:
		if a.num != b.num || !strings.EqualFold(a.unit, b.unit) {
			return false
		}
	case String, URI, Block:
		if a.text != b.text {
			return false
		}
	case Ident:
		if a.text != b.text {
			return false
		}
	default:
		if !strings.EqualFold(a.text, b.text) {
			return false
		}
	}
	return Equal(x.Parameters(), y.Parameters())
}
