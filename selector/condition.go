package selector

import (
	"strconv"
	"strings"

	"github.com/cssgrammar/grammar"
)

// ConditionKind determines the type of a condition.
type ConditionKind uint8

// ConditionKind values.
const (
	ClassCondition ConditionKind = iota
	IDCondition
	AttributeCondition
	LangCondition
	PseudoClassCondition
	PseudoElementCondition
	PositionalCondition
	SelectorArgumentCondition
	AndCondition
)

// String returns the string representation of a ConditionKind.
func (k ConditionKind) String() string {
	switch k {
	case ClassCondition:
		return "Class"
	case IDCondition:
		return "ID"
	case AttributeCondition:
		return "Attribute"
	case LangCondition:
		return "Lang"
	case PseudoClassCondition:
		return "PseudoClass"
	case PseudoElementCondition:
		return "PseudoElement"
	case PositionalCondition:
		return "Positional"
	case SelectorArgumentCondition:
		return "SelectorArgument"
	case AndCondition:
		return "And"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// Condition is attached to a simple selector by a ConditionalSelector.
type Condition interface {
	ConditionKind() ConditionKind
	String() string
	writeTo(sb *strings.Builder)
}

// AttrOp is the matching operator of an attribute condition.
type AttrOp uint8

// AttrOp values.
const (
	AttrExists    AttrOp = iota // [a]
	AttrEquals                  // [a=b]
	AttrIncludes                // [a~=b]
	AttrDashMatch               // [a|=b]
	AttrPrefix                  // [a^=b]
	AttrSuffix                  // [a$=b]
	AttrSubstring               // [a*=b]
)

var attrOpText = [...]string{"", "=", "~=", "|=", "^=", "$=", "*="}

// String returns the operator as written in CSS.
func (op AttrOp) String() string {
	if int(op) < len(attrOpText) {
		return attrOpText[op]
	}
	return "Invalid(" + strconv.Itoa(int(op)) + ")"
}

////////////////////////////////////////////////////////////////

// Class is a .class condition.
type Class struct {
	Name string
}

func (c *Class) ConditionKind() ConditionKind { return ClassCondition }
func (c *Class) String() string               { return toString(c) }
func (c *Class) writeTo(sb *strings.Builder) {
	sb.WriteByte('.')
	sb.WriteString(grammar.EscapeIdent(c.Name))
}

// ID is a #id condition.
type ID struct {
	Name string
}

func (c *ID) ConditionKind() ConditionKind { return IDCondition }
func (c *ID) String() string               { return toString(c) }
func (c *ID) writeTo(sb *strings.Builder) {
	sb.WriteByte('#')
	sb.WriteString(grammar.EscapeIdent(c.Name))
}

// Attribute is an attribute condition such as [lang|=en i].
type Attribute struct {
	Op           AttrOp
	Namespace    string
	HasNamespace bool
	Name         string
	Value        string
	Flag         byte // 'i', 's' or zero
}

func (c *Attribute) ConditionKind() ConditionKind { return AttributeCondition }
func (c *Attribute) String() string               { return toString(c) }
func (c *Attribute) writeTo(sb *strings.Builder) {
	sb.WriteByte('[')
	if c.HasNamespace {
		if c.Namespace == "*" {
			sb.WriteByte('*')
		} else {
			sb.WriteString(grammar.EscapeIdent(c.Namespace))
		}
		sb.WriteByte('|')
	}
	sb.WriteString(grammar.EscapeIdent(c.Name))
	if c.Op != AttrExists {
		sb.WriteString(c.Op.String())
		sb.WriteString(grammar.QuoteString(c.Value, '"'))
		if c.Flag != 0 {
			sb.WriteByte(' ')
			sb.WriteByte(c.Flag)
		}
	}
	sb.WriteByte(']')
}

// Lang is the :lang() pseudo-class with its language ranges.
type Lang struct {
	Ranges []string
}

func (c *Lang) ConditionKind() ConditionKind { return LangCondition }
func (c *Lang) String() string               { return toString(c) }
func (c *Lang) writeTo(sb *strings.Builder) {
	sb.WriteString(":lang(")
	for i, r := range c.Ranges {
		if i != 0 {
			sb.WriteString(", ")
		}
		if grammar.IsIdent(r) {
			sb.WriteString(r)
		} else {
			sb.WriteString(grammar.QuoteString(r, '"'))
		}
	}
	sb.WriteByte(')')
}

// Pseudo is a pseudo-class or pseudo-element, optionally with an argument kept as text, eg. :dir(rtl) or ::part(label).
type Pseudo struct {
	Element     bool
	Name        string
	Argument    string
	HasArgument bool
}

// ConditionKind returns PseudoElementCondition or PseudoClassCondition.
func (c *Pseudo) ConditionKind() ConditionKind {
	if c.Element {
		return PseudoElementCondition
	}
	return PseudoClassCondition
}

func (c *Pseudo) String() string { return toString(c) }
func (c *Pseudo) writeTo(sb *strings.Builder) {
	sb.WriteByte(':')
	if c.Element {
		sb.WriteByte(':')
	}
	sb.WriteString(grammar.EscapeIdent(c.Name))
	if c.HasArgument {
		sb.WriteByte('(')
		sb.WriteString(c.Argument)
		sb.WriteByte(')')
	}
}

// Positional is an index-based pseudo-class that matches elements at positions An+B. :first-child and friends are
// stored with A=0 and B=1.
type Positional struct {
	Name string
	A, B int
	Of   List // only for :nth-child() and :nth-last-child()
}

func (c *Positional) ConditionKind() ConditionKind { return PositionalCondition }
func (c *Positional) String() string               { return toString(c) }
func (c *Positional) writeTo(sb *strings.Builder) {
	sb.WriteByte(':')
	sb.WriteString(c.Name)
	if !strings.HasPrefix(c.Name, "nth-") {
		return
	}
	sb.WriteByte('(')
	sb.WriteString(FormatAnB(c.A, c.B))
	if 0 < len(c.Of) {
		sb.WriteString(" of ")
		c.Of.writeTo(sb)
	}
	sb.WriteByte(')')
}

// SelectorArgument is a pseudo-class taking a selector list, eg. :not(), :is(), :where() or :has().
type SelectorArgument struct {
	Name      string
	Selectors List
}

func (c *SelectorArgument) ConditionKind() ConditionKind { return SelectorArgumentCondition }
func (c *SelectorArgument) String() string               { return toString(c) }
func (c *SelectorArgument) writeTo(sb *strings.Builder) {
	sb.WriteByte(':')
	sb.WriteString(c.Name)
	sb.WriteByte('(')
	c.Selectors.writeTo(sb)
	sb.WriteByte(')')
}

// And is the conjunction of the conditions of one compound selector, in source order.
type And struct {
	Conditions []Condition
}

func (c *And) ConditionKind() ConditionKind { return AndCondition }
func (c *And) String() string               { return toString(c) }
func (c *And) writeTo(sb *strings.Builder) {
	for _, d := range c.Conditions {
		d.writeTo(sb)
	}
}

// Join returns the conjunction of c and d. Either may be nil.
func Join(c, d Condition) Condition {
	if c == nil {
		return d
	} else if d == nil {
		return c
	}
	and, ok := c.(*And)
	if !ok {
		and = &And{Conditions: []Condition{c}}
	}
	and.Conditions = append(and.Conditions, d)
	return and
}
