package lexical

import (
	"github.com/cssgrammar/grammar"
)

// count returns the number of units in the chain starting at v, including parameters, stopping once limit is passed.
func count(v Value, limit int) int {
	n := 0
	for ; !v.IsNil() && n <= limit; v = v.Next() {
		n++
		if p := v.Parameters(); !p.IsNil() {
			n += count(p, limit-n)
		}
	}
	return n
}

// adopt returns the chain w as units of a. Chains held by another arena are copied.
func (a *Arena) adopt(w Value) (Value, error) {
	if n := count(w, a.limit); n > a.limit {
		return Value{}, grammar.NewBudgetError(grammar.ErrEditSize, "replacement of %d units exceeds %d units", n, a.limit)
	}
	if w.a == a {
		return w, nil
	}
	return a.copyChain(w, none)
}

func (a *Arena) copyChain(w Value, owner int) (Value, error) {
	var first, last Value
	for ; !w.IsNil(); w = w.Next() {
		c, err := a.New(w.Type())
		if err != nil {
			return Value{}, err
		}
		src := w.node()
		dst := c.node()
		dst.num, dst.integer, dst.unit, dst.text = src.num, src.integer, src.unit, src.text
		dst.quote, dst.escaped = src.quote, src.escaped
		if src.comments != nil {
			dst.comments = &comments{
				preceding: append([]string{}, src.comments.preceding...),
				trailing:  append([]string{}, src.comments.trailing...),
			}
		}
		if p := w.Parameters(); !p.IsNil() {
			params, err := a.copyChain(p, c.i)
			if err != nil {
				return Value{}, err
			}
			c.node().params = params.i
		}
		c.node().owner = owner
		if last.IsNil() {
			first = c
		} else {
			a.Append(last, c)
		}
		last = c
	}
	return first, nil
}

// detached returns true if w heads a chain that is not linked into another value.
func detached(w Value) bool {
	n := w.node()
	return n.prev == none && n.owner == none
}

// InsertNext inserts the chain w right after v. Chains from another arena are copied first. It returns the first
// inserted unit.
func (v Value) InsertNext(w Value) (Value, error) {
	if w.IsNil() {
		return w, nil
	} else if w.a == v.a && !detached(w) {
		return Value{}, grammar.NewError(nil, 0, grammar.KindSyntax, grammar.ErrInvalidValue, "inserted unit is still linked")
	}
	w, err := v.a.adopt(w)
	if err != nil {
		return Value{}, err
	}
	n := v.node()
	owner, next := n.owner, n.next
	last := w
	for u := w; !u.IsNil(); u = u.Next() {
		u.node().owner = owner
		last = u
	}
	n.next = w.i
	w.node().prev = v.i
	last.node().next = next
	if next != none {
		v.a.nodes[next].prev = last.i
	}
	return w, nil
}

// ReplaceBy puts the chain w in place of v, which becomes detached. Chains from another arena are copied first and
// replacements larger than the arena ceiling fail with a budget error. It returns the first unit of the replacement.
func (v Value) ReplaceBy(w Value) (Value, error) {
	if w.IsNil() {
		return v.Remove(), nil
	} else if w.a == v.a && !detached(w) {
		return Value{}, grammar.NewError(nil, 0, grammar.KindSyntax, grammar.ErrInvalidValue, "replacement is still linked")
	}
	w, err := v.a.adopt(w)
	if err != nil {
		return Value{}, err
	}
	n := v.node()
	prev, next, owner := n.prev, n.next, n.owner
	last := w
	for u := w; !u.IsNil(); u = u.Next() {
		u.node().owner = owner
		last = u
	}
	w.node().prev = prev
	last.node().next = next
	if prev != none {
		v.a.nodes[prev].next = w.i
	} else if owner != none {
		v.a.nodes[owner].params = w.i
	}
	if next != none {
		v.a.nodes[next].prev = last.i
	}
	n.prev, n.next, n.owner = none, none, none
	return w, nil
}

// Remove unlinks v from its chain and returns the unit that followed it.
func (v Value) Remove() Value {
	n := v.node()
	prev, next, owner := n.prev, n.next, n.owner
	if prev != none {
		v.a.nodes[prev].next = next
	} else if owner != none {
		v.a.nodes[owner].params = next
	}
	if next != none {
		v.a.nodes[next].prev = prev
	}
	n.prev, n.next, n.owner = none, none, none
	return v.at(next)
}

// Clone returns a detached deep copy of the single unit v, parameters included.
func (v Value) Clone() (Value, error) {
	next := v.node().next
	v.node().next = none
	c, err := v.a.copyChain(v, none)
	v.node().next = next
	return c, err
}
