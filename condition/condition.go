// Package condition contains the boolean condition trees of @supports rules and media queries. AND and OR nodes are
// binary, longer chains lean to the right.
package condition

import (
	"strconv"
	"strings"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/lexical"
	"github.com/cssgrammar/grammar/selector"
)

// Kind determines the type of a condition.
type Kind uint8

// Kind values.
const (
	AndCondition Kind = iota
	OrCondition
	NotCondition
	DeclarationCondition
	SelectorCondition
	FeatureCondition
	FalseCondition
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case AndCondition:
		return "And"
	case OrCondition:
		return "Or"
	case NotCondition:
		return "Not"
	case DeclarationCondition:
		return "Declaration"
	case SelectorCondition:
		return "Selector"
	case FeatureCondition:
		return "Feature"
	case FalseCondition:
		return "False"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// Condition is a node of a boolean condition tree.
type Condition interface {
	Kind() Kind
	String() string
	writeTo(sb *strings.Builder)
}

////////////////////////////////////////////////////////////////

// Operation is a binary AND or OR node.
type Operation struct {
	Op          Kind // AndCondition or OrCondition
	Left, Right Condition
}

// Kind returns the operator.
func (c *Operation) Kind() Kind {
	return c.Op
}

func (c *Operation) String() string { return toString(c) }
func (c *Operation) writeTo(sb *strings.Builder) {
	writeOperand(sb, c.Left, false, c.Op)
	if c.Op == AndCondition {
		sb.WriteString(" and ")
	} else {
		sb.WriteString(" or ")
	}
	writeOperand(sb, c.Right, true, c.Op)
}

// writeOperand parenthesizes nested operations unless they continue the chain of op.
func writeOperand(sb *strings.Builder, c Condition, right bool, op Kind) {
	switch c.Kind() {
	case AndCondition, OrCondition:
		if !right || c.Kind() != op {
			sb.WriteByte('(')
			c.writeTo(sb)
			sb.WriteByte(')')
			return
		}
	case NotCondition:
		sb.WriteByte('(')
		c.writeTo(sb)
		sb.WriteByte(')')
		return
	}
	c.writeTo(sb)
}

// Not negates its operand.
type Not struct {
	Operand Condition
}

// Kind returns NotCondition.
func (c *Not) Kind() Kind {
	return NotCondition
}

func (c *Not) String() string { return toString(c) }
func (c *Not) writeTo(sb *strings.Builder) {
	sb.WriteString("not ")
	switch c.Operand.Kind() {
	case AndCondition, OrCondition, NotCondition:
		sb.WriteByte('(')
		c.Operand.writeTo(sb)
		sb.WriteByte(')')
	default:
		c.Operand.writeTo(sb)
	}
}

// Declaration is the (property: value) predicate of @supports.
type Declaration struct {
	Property  string
	Value     lexical.Value
	Important bool
}

// Kind returns DeclarationCondition.
func (c *Declaration) Kind() Kind {
	return DeclarationCondition
}

func (c *Declaration) String() string { return toString(c) }
func (c *Declaration) writeTo(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(grammar.EscapeIdent(c.Property))
	sb.WriteString(": ")
	sb.WriteString(c.Value.String())
	if c.Important {
		sb.WriteString(" !important")
	}
	sb.WriteByte(')')
}

// Selector is the selector() predicate of @supports.
type Selector struct {
	Selectors selector.List
}

// Kind returns SelectorCondition.
func (c *Selector) Kind() Kind {
	return SelectorCondition
}

func (c *Selector) String() string { return toString(c) }
func (c *Selector) writeTo(sb *strings.Builder) {
	sb.WriteString("selector(")
	sb.WriteString(c.Selectors.String())
	sb.WriteByte(')')
}

// False stands in for a predicate that is never supported, such as unknown functions or general enclosed text.
// Text keeps the source so that it serializes as written.
type False struct {
	Text string
}

// Kind returns FalseCondition.
func (c *False) Kind() Kind {
	return FalseCondition
}

func (c *False) String() string { return c.Text }
func (c *False) writeTo(sb *strings.Builder) {
	sb.WriteString(c.Text)
}

func toString(c Condition) string {
	sb := strings.Builder{}
	c.writeTo(&sb)
	return sb.String()
}

////////////////////////////////////////////////////////////////

// Append adds c to the chain with operator op. The chain keeps leaning to the right, a chain of another operator
// becomes the left operand of a new node.
func Append(chain Condition, op Kind, c Condition) Condition {
	if chain == nil {
		return c
	}
	o, ok := chain.(*Operation)
	if !ok || o.Op != op {
		return &Operation{Op: op, Left: chain, Right: c}
	}
	last := o
	for {
		next, ok := last.Right.(*Operation)
		if !ok || next.Op != op {
			break
		}
		last = next
	}
	last.Right = &Operation{Op: op, Left: last.Right, Right: c}
	return o
}

// Operands returns the operands of a chain of AND or OR nodes in source order. Other conditions are returned alone.
func Operands(c Condition) []Condition {
	o, ok := c.(*Operation)
	if !ok {
		return []Condition{c}
	}
	var cs []Condition
	for {
		cs = append(cs, o.Left)
		next, ok := o.Right.(*Operation)
		if !ok || next.Op != o.Op {
			return append(cs, o.Right)
		}
		o = next
	}
}

// Equal reports whether two conditions are structurally equal.
func Equal(c, d Condition) bool {
	if c == nil || d == nil {
		return c == nil && d == nil
	} else if c.Kind() != d.Kind() {
		return false
	}
	switch a := c.(type) {
	case *Operation:
		b := d.(*Operation)
		return Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case *Not:
		return Equal(a.Operand, d.(*Not).Operand)
	case *Declaration:
		b := d.(*Declaration)
		return a.Property == b.Property && a.Important == b.Important && lexical.Equal(a.Value, b.Value)
	case *Selector:
		return a.Selectors.Equal(d.(*Selector).Selectors)
	case *Feature:
		return a.equal(d.(*Feature))
	case *False:
		return a.Text == d.(*False).Text
	}
	return false
}
