package lexical

import (
	"github.com/cssgrammar/grammar"
)

const none = -1

type node struct {
	typ     Type
	num     float64
	integer int64
	unit    string
	text    string
	quote   byte
	escaped bool

	next, prev, params, owner int
	comments                  *comments
}

type comments struct {
	preceding []string
	trailing  []string
}

// Arena stores the units of lexical values. Units refer to each other by index, an arena only ever grows and is bounded
// by its node ceiling.
type Arena struct {
	nodes []node
	limit int
}

// NewArena returns an arena holding at most limit units. A limit of zero or less selects grammar.DefaultMaxEditNodes.
func NewArena(limit int) *Arena {
	if limit <= 0 {
		limit = grammar.DefaultMaxEditNodes
	}
	return &Arena{limit: limit}
}

// Len returns the number of units allocated.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Limit returns the node ceiling.
func (a *Arena) Limit() int {
	return a.limit
}

// New allocates a detached unit of type t.
func (a *Arena) New(t Type) (Value, error) {
	if len(a.nodes) >= a.limit {
		return Value{}, grammar.NewBudgetError(grammar.ErrEditSize, "lexical value exceeds %d units", a.limit)
	}
	a.nodes = append(a.nodes, node{typ: t, next: none, prev: none, params: none, owner: none})
	return Value{a, len(a.nodes) - 1}, nil
}

// NewNumeric allocates a detached numeric unit.
func (a *Arena) NewNumeric(n Numeric) (Value, error) {
	v, err := a.New(n.Type)
	if err != nil {
		return v, err
	}
	nd := v.node()
	nd.num, nd.integer, nd.unit = n.Float, n.Int, n.Unit
	if n.Type == Integer {
		nd.num = float64(n.Int)
	}
	return v, nil
}

// NewText allocates a detached unit of type t carrying text, eg. an identifier, a string or a function name.
func (a *Arena) NewText(t Type, text string) (Value, error) {
	v, err := a.New(t)
	if err != nil {
		return v, err
	}
	v.node().text = text
	return v, nil
}

// Append links the detached unit w after last.
func (a *Arena) Append(last, w Value) {
	l, n := last.node(), w.node()
	l.next, n.prev, n.owner = w.i, last.i, l.owner
}

// AppendParameter links the detached unit w after last in the parameters of fn. A nil last makes w the first parameter.
func (a *Arena) AppendParameter(fn, last, w Value) {
	if last.IsNil() {
		fn.node().params = w.i
		n := w.node()
		n.prev, n.owner = none, fn.i
		return
	}
	a.Append(last, w)
	w.node().owner = fn.i
}

////////////////////////////////////////////////////////////////

// Value is a handle to one unit of a lexical value. The zero Value is nil.
type Value struct {
	a *Arena
	i int
}

func (v Value) node() *node {
	return &v.a.nodes[v.i]
}

func (v Value) at(i int) Value {
	if i == none {
		return Value{}
	}
	return Value{v.a, i}
}

// IsNil returns true for the zero Value.
func (v Value) IsNil() bool {
	return v.a == nil
}

// Arena returns the arena holding the unit.
func (v Value) Arena() *Arena {
	return v.a
}

// Index returns the arena index of the unit.
func (v Value) Index() int {
	return v.i
}

// Type returns the unit type, Unknown for nil.
func (v Value) Type() Type {
	if v.IsNil() {
		return Unknown
	}
	return v.node().typ
}

// Float returns the numeric payload.
func (v Value) Float() float64 {
	return v.node().num
}

// Int returns the integer payload of Integer units.
func (v Value) Int() int64 {
	return v.node().integer
}

// Unit returns the unit of Dimension units as written.
func (v Value) Unit() string {
	return v.node().unit
}

// Text returns the unescaped text of identifiers, strings and URIs, the name of functions, or the source text of
// colors, unicode ranges and compat units.
func (v Value) Text() string {
	return v.node().text
}

// Quote returns the quote character of strings and URIs, or zero when unquoted.
func (v Value) Quote() byte {
	return v.node().quote
}

// Escaped returns true if the source needed escapes to express the text.
func (v Value) Escaped() bool {
	return v.node().escaped
}

// SetQuote sets the quote character.
func (v Value) SetQuote(q byte) {
	v.node().quote = q
}

// SetEscaped records that the source needed escapes to express the text.
func (v Value) SetEscaped(escaped bool) {
	v.node().escaped = escaped
}

// Next returns the following sibling.
func (v Value) Next() Value {
	return v.at(v.node().next)
}

// Previous returns the preceding sibling.
func (v Value) Previous() Value {
	return v.at(v.node().prev)
}

// Parameters returns the first parameter of a function.
func (v Value) Parameters() Value {
	return v.at(v.node().params)
}

// Owner returns the function whose parameters contain the unit.
func (v Value) Owner() Value {
	return v.at(v.node().owner)
}

// Last returns the last unit of the chain starting at v.
func (v Value) Last() Value {
	for !v.Next().IsNil() {
		v = v.Next()
	}
	return v
}

// Len returns the number of units in the chain starting at v.
func (v Value) Len() int {
	n := 0
	for ; !v.IsNil(); v = v.Next() {
		n++
	}
	return n
}

// Units returns the units of the chain starting at v.
func (v Value) Units() []Value {
	var vs []Value
	for ; !v.IsNil(); v = v.Next() {
		vs = append(vs, v)
	}
	return vs
}

// AddPrecedingComment attaches a comment found before the unit.
func (v Value) AddPrecedingComment(text string) {
	n := v.node()
	if n.comments == nil {
		n.comments = &comments{}
	}
	n.comments.preceding = append(n.comments.preceding, text)
}

// AddTrailingComment attaches a comment found after the unit.
func (v Value) AddTrailingComment(text string) {
	n := v.node()
	if n.comments == nil {
		n.comments = &comments{}
	}
	n.comments.trailing = append(n.comments.trailing, text)
}

// Comments returns the comments found before and after the unit.
func (v Value) Comments() ([]string, []string) {
	if c := v.node().comments; c != nil {
		return c.preceding, c.trailing
	}
	return nil, nil
}
