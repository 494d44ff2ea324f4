package condition

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdewolff/test"

	"github.com/cssgrammar/grammar/lexical"
	"github.com/cssgrammar/grammar/selector"
)

func value(t *testing.T, s string) lexical.Value {
	a := lexical.NewArena(0)
	var v lexical.Value
	var err error
	if n, ok := lexical.ParseNumeric(s); ok {
		v, err = a.NewNumeric(n)
	} else {
		v, err = a.NewText(lexical.Ident, s)
	}
	require.NoError(t, err)
	return v
}

func decl(t *testing.T, prop, val string) *Declaration {
	return &Declaration{Property: prop, Value: value(t, val)}
}

func TestAppend(t *testing.T) {
	a, b, c := decl(t, "a", "1"), decl(t, "b", "2"), decl(t, "c", "3")

	var chain Condition
	chain = Append(chain, AndCondition, a)
	chain = Append(chain, AndCondition, b)
	chain = Append(chain, AndCondition, c)
	test.String(t, chain.String(), "(a: 1) and (b: 2) and (c: 3)")

	op := chain.(*Operation)
	test.T(t, op.Left, Condition(a))
	right, ok := op.Right.(*Operation)
	test.That(t, ok, "chain leans to the right")
	test.T(t, right.Right, Condition(c))
	test.T(t, len(Operands(chain)), 3)

	or := Append(Append(nil, OrCondition, a), OrCondition, b)
	mixed := Append(or, AndCondition, c)
	test.String(t, mixed.String(), "((a: 1) or (b: 2)) and (c: 3)")
	test.T(t, len(Operands(mixed)), 2)
}

func TestConditionString(t *testing.T) {
	a, b := decl(t, "display", "grid"), decl(t, "color", "red")
	sel := &Selector{Selectors: selector.List{&selector.CombinatorSelector{Combinator: selector.Child, Left: &selector.ElementSelector{Name: "a"}, Right: &selector.ElementSelector{Name: "b"}}}}
	var tests = []struct {
		c        Condition
		expected string
	}{
		{a, "(display: grid)"},
		{&Declaration{Property: "color", Value: value(t, "red"), Important: true}, "(color: red !important)"},
		{&Not{Operand: a}, "not (display: grid)"},
		{&Not{Operand: Append(a, AndCondition, b)}, "not ((display: grid) and (color: red))"},
		{Append(&Not{Operand: a}, AndCondition, b), "(not (display: grid)) and (color: red)"},
		{Append(a, OrCondition, Append(b, AndCondition, a)), "(display: grid) or ((color: red) and (display: grid))"},
		{sel, "selector(a > b)"},
		{&False{Text: "font-tech(color-COLRv1)"}, "font-tech(color-COLRv1)"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			test.String(t, tt.c.String(), tt.expected)
		})
	}
}

func TestFeatureString(t *testing.T) {
	var tests = []struct {
		f        *Feature
		expected string
	}{
		{&Feature{Name: "color"}, "(color)"},
		{&Feature{Name: "orientation", Op: OpColon, Value: value(t, "portrait")}, "(orientation: portrait)"},
		{&Feature{Name: "width", Op: OpGE, Value: value(t, "100px")}, "(width >= 100px)"},
		{&Feature{Name: "width", Op: OpGE, Value: value(t, "100px"), LegacyName: "min-width"}, "(min-width: 100px)"},
		{&Feature{Name: "width", LeftOp: OpLT, Left: value(t, "1px"), Op: OpLE, Value: value(t, "2px")}, "(1px < width <= 2px)"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			test.String(t, tt.f.String(), tt.expected)
		})
	}
	test.That(t, (&Feature{Name: "width", Op: OpGE, Value: value(t, "1px")}).IsRange())
	test.That(t, !(&Feature{Name: "width", Op: OpColon, Value: value(t, "1px")}).IsRange())
	test.T(t, OpLT.Flip(), OpGT)
	test.T(t, OpColon.Flip(), OpColon)
}

func TestEqual(t *testing.T) {
	x := Append(decl(t, "a", "1"), AndCondition, decl(t, "b", "2px"))
	y := Append(decl(t, "a", "1"), AndCondition, decl(t, "b", "2PX"))
	z := Append(decl(t, "a", "1"), OrCondition, decl(t, "b", "2px"))
	test.That(t, Equal(x, y))
	test.That(t, !Equal(x, z))
	test.That(t, !Equal(x, nil))
	test.That(t, Equal(&Feature{Name: "color"}, &Feature{Name: "color"}))
	test.That(t, !Equal(&Feature{Name: "color"}, &Feature{Name: "grid"}))
}

func TestMediaQueryList(t *testing.T) {
	f := &Feature{Name: "color"}
	l := MediaQueryList{
		{Type: "screen", Condition: f},
		{Type: "print", Only: true},
		{Condition: &Not{Operand: f}},
		NotAll(),
	}
	test.String(t, l.String(), "screen and (color), only print, not (color), not all")
	test.That(t, l.Equal(MediaQueryList{{Type: "screen", Condition: &Feature{Name: "color"}}, {Type: "print", Only: true}, {Condition: &Not{Operand: f}}, NotAll()}))
	test.That(t, !l.Equal(l[:1]))
	test.That(t, MediaQueryList{NotAll()}.IsNotAll())
	test.That(t, !l.IsNotAll())

	q := MediaQuery{Type: "screen", Condition: Append(f, OrCondition, &Feature{Name: "grid"})}
	test.String(t, q.String(), "screen and ((color) or (grid))")
}
