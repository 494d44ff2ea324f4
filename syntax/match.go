package syntax

import (
	"strconv"
	"strings"

	"github.com/cssgrammar/grammar/lexical"
)

// Match is the tri-state result of matching a value against a grammar.
type Match uint8

// Match values.
const (
	False Match = iota
	True
	Pending // the outcome depends on var() or attr() substitution
)

// String returns the string representation of a Match.
func (m Match) String() string {
	switch m {
	case False:
		return "False"
	case True:
		return "True"
	case Pending:
		return "Pending"
	}
	return "Invalid(" + strconv.Itoa(int(m)) + ")"
}

func matchOf(b bool) Match {
	if b {
		return True
	}
	return False
}

// Matches matches the value chain v against the grammar s. It returns True when an alternative matches, otherwise
// Pending when an alternative might match after substitution, and False when none can.
func Matches(v lexical.Value, s *Syntax) Match {
	if s == nil || v.IsNil() {
		return False
	} else if s.Category == Universal {
		return True
	} else if v.Type().IsKeyword() && v.Next().IsNil() {
		return True
	}

	m := False
	for alt := s; alt != nil; alt = alt.Next {
		switch matchAlternative(v, alt, s) {
		case True:
			return True
		case Pending:
			m = Pending
		}
	}
	return m
}

// MatchesGrammar parses the grammar text and matches v against it.
func MatchesGrammar(v lexical.Value, text string) (Match, error) {
	s, err := Parse(text)
	if err != nil {
		return False, err
	}
	return Matches(v, s), nil
}

func matchAlternative(v lexical.Value, alt, root *Syntax) Match {
	if alt.Category == TransformList {
		return matchEach(v, TransformFunction, "", root)
	}
	switch alt.Multiplier {
	case Space:
		return matchEach(v, alt.Category, alt.Name, root)
	case List:
		m := True
		start, n := v, 0
		for u := v; ; u = u.Next() {
			if u.IsNil() || u.Type() == lexical.OperatorComma {
				if n == 0 {
					return False
				}
				switch matchSingle(start, n, alt.Category, alt.Name, root) {
				case False:
					return False
				case Pending:
					m = Pending
				}
				if u.IsNil() {
					return m
				}
				start, n = u.Next(), 0
				continue
			}
			n++
		}
	}
	return matchSingle(v, v.Len(), alt.Category, alt.Name, root)
}

// matchSingle matches a segment of n units that must hold exactly one component.
func matchSingle(v lexical.Value, n int, c Category, name string, root *Syntax) Match {
	if n != 1 {
		for u := v; 0 < n; u, n = u.Next(), n-1 {
			if u.Type() == lexical.Var {
				return Pending
			}
		}
		return False
	}
	return matchUnit(v, c, name, root)
}

// matchEach matches every unit of a space-separated chain.
func matchEach(v lexical.Value, c Category, name string, root *Syntax) Match {
	m := True
	for u := v; !u.IsNil(); u = u.Next() {
		if u.Type() == lexical.OperatorComma {
			return False
		}
		switch matchUnit(u, c, name, root) {
		case False:
			return False
		case Pending:
			m = Pending
		}
	}
	return m
}

// coversLengthPercentage returns true if a length and a percentage both match some alternative of s. A mixed sum
// such as calc(1px + 1%) is neither, so only single values may rely on it.
func coversLengthPercentage(s *Syntax) bool {
	return s.Has(LengthPercentage) || s.Has(Length) && s.Has(Percentage)
}

func matchUnit(u lexical.Value, c Category, name string, root *Syntax) Match {
	switch u.Type() {
	case lexical.Var:
		return Pending
	case lexical.Attr:
		return matchAttr(u, c, root)
	case lexical.Calc, lexical.MathFunction:
		d, st := analyzeUnit(u)
		switch st {
		case invalid:
			return False
		case pending:
			return Pending
		case lenient:
			// the sum may mix lengths and percentages, which only <length-percentage> accepts
			if root.Has(LengthPercentage) {
				return True
			} else if isLengthOrPercentage(c) {
				return Pending
			}
			return False
		}
		return matchOf(d.Accepts(c))
	case lexical.Integer:
		return matchOf(c == Integer || c == Number || isZeroLength(u, c))
	case lexical.Real:
		return matchOf(c == Number || isZeroLength(u, c))
	case lexical.Percentage:
		return matchOf(c == Percentage || c == LengthPercentage)
	case lexical.Dimension:
		uc := UnitCategory(u.Unit())
		return matchOf(uc != Universal && (uc == c || uc == Length && c == LengthPercentage))
	case lexical.Ident:
		switch c {
		case Ident:
			return matchOf(strings.EqualFold(u.Text(), name))
		case CustomIdent:
			return matchOf(!isReservedIdent(u.Text()))
		case Color:
			return matchOf(lexical.IsColorKeyword(u.Text()))
		}
	case lexical.String:
		return matchOf(c == String)
	case lexical.URI:
		return matchOf(c == URL || c == Image)
	case lexical.Gradient, lexical.ImageSet, lexical.ElementReference:
		return matchOf(c == Image)
	case lexical.TransformFunction:
		return matchOf(c == TransformFunction)
	default:
		if u.Type().IsColor() {
			return matchOf(c == Color)
		}
	}
	return False
}

// isZeroLength returns true for a unitless zero in a length context.
func isZeroLength(u lexical.Value, c Category) bool {
	return (c == Length || c == LengthPercentage) && u.Float() == 0
}

// attrCategoryMatches returns true if a value of the declared attr() type always matches c.
func attrCategoryMatches(declared, c Category) bool {
	return declared == c || isLengthOrPercentage(declared) && c == LengthPercentage || declared == Integer && c == Number
}

// matchAttr matches attr(name type, fallback). When the declared type and the fallback disagree the result stays
// pending, unless they split between length and percentage and the grammar accepts both.
func matchAttr(u lexical.Value, c Category, root *Syntax) Match {
	declared, fallback := attrParts(u)
	if declared == Universal {
		return False
	}
	typed := attrCategoryMatches(declared, c)
	if fallback.IsNil() {
		return matchOf(typed)
	}
	var fm Match
	if fallback.Next().IsNil() {
		fm = matchUnit(fallback, c, "", root)
	} else {
		fm = Pending
	}
	if typed && fm == True {
		return True
	} else if !typed && fm == False {
		return False
	} else if fm == Pending {
		return Pending
	}

	fd, fst := analyzeUnit(fallback)
	fc, ok := fd.Single()
	if fst == valid && ok && isLengthOrPercentage(declared) && isLengthOrPercentage(fc) && declared != fc && coversLengthPercentage(root) {
		return True
	}
	return Pending
}
