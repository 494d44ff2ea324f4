package condition

import (
	"strconv"
	"strings"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/lexical"
)

// RangeOp is the comparison of a media feature.
type RangeOp uint8

// RangeOp values.
const (
	OpNone  RangeOp = iota // boolean context, (color)
	OpColon                // (width: 100px)
	OpEQ
	OpLT
	OpLE
	OpGT
	OpGE
)

var rangeOpText = [...]string{"", ":", "=", "<", "<=", ">", ">="}

// String returns the operator as written in CSS.
func (op RangeOp) String() string {
	if int(op) < len(rangeOpText) {
		return rangeOpText[op]
	}
	return "Invalid(" + strconv.Itoa(int(op)) + ")"
}

// Flip returns the operator with its operands swapped, so that a < b becomes b > a.
func (op RangeOp) Flip() RangeOp {
	switch op {
	case OpLT:
		return OpGT
	case OpLE:
		return OpGE
	case OpGT:
		return OpLT
	case OpGE:
		return OpLE
	}
	return op
}

// IsLess returns true for < and <=.
func (op RangeOp) IsLess() bool {
	return op == OpLT || op == OpLE
}

// IsGreater returns true for > and >=.
func (op RangeOp) IsGreater() bool {
	return op == OpGT || op == OpGE
}

// Feature is a media feature predicate. The forms are (name), (name: value), (name op value) and
// (left leftOp name op value). Reversed comparisons such as (100px < width) are stored as (width > 100px), and legacy
// min-/max- prefixes as >= and <= with LegacyName holding the name as written.
type Feature struct {
	Name       string
	Op         RangeOp
	Value      lexical.Value
	LeftOp     RangeOp
	Left       lexical.Value
	LegacyName string
}

// Kind returns FeatureCondition.
func (c *Feature) Kind() Kind {
	return FeatureCondition
}

// IsRange returns true for comparisons, legacy prefixes included.
func (c *Feature) IsRange() bool {
	return OpEQ <= c.Op || c.LeftOp != OpNone
}

func (c *Feature) String() string { return toString(c) }
func (c *Feature) writeTo(sb *strings.Builder) {
	sb.WriteByte('(')
	switch {
	case c.LegacyName != "":
		sb.WriteString(c.LegacyName)
		sb.WriteString(": ")
		sb.WriteString(c.Value.String())
	case c.LeftOp != OpNone:
		sb.WriteString(c.Left.String())
		sb.WriteByte(' ')
		sb.WriteString(c.LeftOp.String())
		sb.WriteByte(' ')
		sb.WriteString(grammar.EscapeIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(c.Op.String())
		sb.WriteByte(' ')
		sb.WriteString(c.Value.String())
	case c.Op == OpNone:
		sb.WriteString(grammar.EscapeIdent(c.Name))
	case c.Op == OpColon:
		sb.WriteString(grammar.EscapeIdent(c.Name))
		sb.WriteString(": ")
		sb.WriteString(c.Value.String())
	default:
		sb.WriteString(grammar.EscapeIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(c.Op.String())
		sb.WriteByte(' ')
		sb.WriteString(c.Value.String())
	}
	sb.WriteByte(')')
}

func (c *Feature) equal(d *Feature) bool {
	return c.Name == d.Name && c.Op == d.Op && c.LeftOp == d.LeftOp && c.LegacyName == d.LegacyName &&
		lexical.Equal(c.Value, d.Value) && lexical.Equal(c.Left, d.Left)
}

////////////////////////////////////////////////////////////////

// MediaQuery is one query of a media query list: [not|only] type [and condition], or a condition alone.
type MediaQuery struct {
	Not       bool
	Only      bool
	Type      string
	Condition Condition
}

// NotAll is the query that replaces an invalid media query.
func NotAll() MediaQuery {
	return MediaQuery{Not: true, Type: "all"}
}

// IsNotAll returns true for the query that matches nothing.
func (q MediaQuery) IsNotAll() bool {
	return q.Not && q.Type == "all" && q.Condition == nil
}

func (q MediaQuery) String() string {
	sb := strings.Builder{}
	q.writeTo(&sb)
	return sb.String()
}

func (q MediaQuery) writeTo(sb *strings.Builder) {
	if q.Type == "" {
		if q.Condition != nil {
			q.Condition.writeTo(sb)
		}
		return
	}
	if q.Not {
		sb.WriteString("not ")
	} else if q.Only {
		sb.WriteString("only ")
	}
	sb.WriteString(grammar.EscapeIdent(q.Type))
	if q.Condition != nil {
		sb.WriteString(" and ")
		if q.Condition.Kind() == OrCondition || q.Condition.Kind() == NotCondition {
			sb.WriteByte('(')
			q.Condition.writeTo(sb)
			sb.WriteByte(')')
		} else {
			q.Condition.writeTo(sb)
		}
	}
}

// Equal reports whether two queries are structurally equal.
func (q MediaQuery) Equal(r MediaQuery) bool {
	return q.Not == r.Not && q.Only == r.Only && q.Type == r.Type && Equal(q.Condition, r.Condition)
}

// MediaQueryList is a comma-separated list of media queries. The empty list matches all media.
type MediaQueryList []MediaQuery

func (l MediaQueryList) String() string {
	sb := strings.Builder{}
	for i, q := range l {
		if i != 0 {
			sb.WriteString(", ")
		}
		q.writeTo(&sb)
	}
	return sb.String()
}

// Equal reports whether l and m hold equal queries in the same order.
func (l MediaQueryList) Equal(m MediaQueryList) bool {
	if len(l) != len(m) {
		return false
	}
	for i := range l {
		if !l[i].Equal(m[i]) {
			return false
		}
	}
	return true
}

// IsNotAll returns true if every query of a non-empty list matches nothing.
func (l MediaQueryList) IsNotAll() bool {
	for _, q := range l {
		if !q.IsNotAll() {
			return false
		}
	}
	return 0 < len(l)
}
