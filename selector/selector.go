// Package selector contains the selector model built by the selector recognizer: simple and combinator selectors,
// the conditions attached to them, and selector lists.
package selector

import (
	"strconv"
	"strings"

	"github.com/cssgrammar/grammar"
)

// Kind determines the type of a selector.
type Kind uint8

// Kind values.
const (
	Element Kind = iota
	Universal
	Nesting
	Descendant
	Child
	NextSibling
	SubsequentSibling
	Column
	Conditional
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case Element:
		return "Element"
	case Universal:
		return "Universal"
	case Nesting:
		return "Nesting"
	case Descendant:
		return "Descendant"
	case Child:
		return "Child"
	case NextSibling:
		return "NextSibling"
	case SubsequentSibling:
		return "SubsequentSibling"
	case Column:
		return "Column"
	case Conditional:
		return "Conditional"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// IsCombinator returns true for the kinds that join two selectors.
func (k Kind) IsCombinator() bool {
	return Descendant <= k && k <= Column
}

// Selector is one complex selector of a selector list.
type Selector interface {
	Kind() Kind
	String() string
	writeTo(sb *strings.Builder)
}

////////////////////////////////////////////////////////////////

// ElementSelector is a type selector or, with the name *, the universal selector.
type ElementSelector struct {
	Namespace    string // prefix, * for any namespace
	HasNamespace bool   // written with a |, an empty Namespace selects elements without namespace
	Name         string
}

// Kind returns Universal for * and Element otherwise.
func (s *ElementSelector) Kind() Kind {
	if s.Name == "*" {
		return Universal
	}
	return Element
}

func (s *ElementSelector) String() string {
	return toString(s)
}

func (s *ElementSelector) writeTo(sb *strings.Builder) {
	if s.HasNamespace {
		if s.Namespace == "*" {
			sb.WriteByte('*')
		} else {
			sb.WriteString(grammar.EscapeIdent(s.Namespace))
		}
		sb.WriteByte('|')
	}
	if s.Name == "*" {
		sb.WriteByte('*')
	} else {
		sb.WriteString(grammar.EscapeIdent(s.Name))
	}
}

// implicit returns true for a universal selector that may be omitted before a condition.
func (s *ElementSelector) implicit() bool {
	return s.Name == "*" && !s.HasNamespace
}

// NestingSelector is the & selector of nested style rules.
type NestingSelector struct{}

// Kind returns Nesting.
func (s *NestingSelector) Kind() Kind {
	return Nesting
}

func (s *NestingSelector) String() string {
	return "&"
}

func (s *NestingSelector) writeTo(sb *strings.Builder) {
	sb.WriteByte('&')
}

// CombinatorSelector joins two selectors. A nil Left makes it a relative selector, eg. in :has() arguments.
type CombinatorSelector struct {
	Combinator Kind
	Left       Selector
	Right      Selector
}

// Kind returns the combinator.
func (s *CombinatorSelector) Kind() Kind {
	return s.Combinator
}

func (s *CombinatorSelector) String() string {
	return toString(s)
}

func (s *CombinatorSelector) writeTo(sb *strings.Builder) {
	if s.Left != nil {
		s.Left.writeTo(sb)
		if s.Combinator == Descendant {
			sb.WriteByte(' ')
		} else {
			sb.WriteByte(' ')
			sb.WriteString(combinatorText[s.Combinator])
			sb.WriteByte(' ')
		}
	} else if s.Combinator != Descendant {
		sb.WriteString(combinatorText[s.Combinator])
		sb.WriteByte(' ')
	}
	s.Right.writeTo(sb)
}

var combinatorText = map[Kind]string{
	Child:             ">",
	NextSibling:       "+",
	SubsequentSibling: "~",
	Column:            "||",
}

// ConditionalSelector is a simple selector with conditions such as classes or pseudo-classes.
type ConditionalSelector struct {
	Simple    Selector // *ElementSelector or *NestingSelector
	Condition Condition
}

// Kind returns Conditional.
func (s *ConditionalSelector) Kind() Kind {
	return Conditional
}

func (s *ConditionalSelector) String() string {
	return toString(s)
}

func (s *ConditionalSelector) writeTo(sb *strings.Builder) {
	if e, ok := s.Simple.(*ElementSelector); !ok || !e.implicit() {
		s.Simple.writeTo(sb)
	}
	s.Condition.writeTo(sb)
}

func toString(s interface{ writeTo(*strings.Builder) }) string {
	sb := strings.Builder{}
	s.writeTo(&sb)
	return sb.String()
}

////////////////////////////////////////////////////////////////

// List is a comma-separated selector list.
type List []Selector

func (l List) String() string {
	sb := strings.Builder{}
	l.writeTo(&sb)
	return sb.String()
}

func (l List) writeTo(sb *strings.Builder) {
	for i, s := range l {
		if i != 0 {
			sb.WriteString(", ")
		}
		s.writeTo(sb)
	}
}

// Contains returns true if l holds a selector equal to s.
func (l List) Contains(s Selector) bool {
	for _, t := range l {
		if Equal(s, t) {
			return true
		}
	}
	return false
}

// Equal reports whether l and m hold equal selectors in the same order.
func (l List) Equal(m List) bool {
	if len(l) != len(m) {
		return false
	}
	for i := range l {
		if !Equal(l[i], m[i]) {
			return false
		}
	}
	return true
}
