package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdewolff/test"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/lexical"
)

type builder struct {
	t *testing.T
	a *lexical.Arena
}

func newBuilder(t *testing.T) *builder {
	return &builder{t, lexical.NewArena(0)}
}

func (b *builder) num(s string) lexical.Value {
	n, ok := lexical.ParseNumeric(s)
	require.True(b.t, ok, s)
	v, err := b.a.NewNumeric(n)
	require.NoError(b.t, err)
	return v
}

func (b *builder) text(typ lexical.Type, s string) lexical.Value {
	v, err := b.a.NewText(typ, s)
	require.NoError(b.t, err)
	return v
}

func (b *builder) ident(s string) lexical.Value { return b.text(lexical.Ident, s) }
func (b *builder) op(typ lexical.Type) lexical.Value {
	v, err := b.a.New(typ)
	require.NoError(b.t, err)
	return v
}

func (b *builder) chain(vs ...lexical.Value) lexical.Value {
	for i := 1; i < len(vs); i++ {
		b.a.Append(vs[i-1], vs[i])
	}
	return vs[0]
}

func (b *builder) fn(typ lexical.Type, name string, params ...lexical.Value) lexical.Value {
	f := b.text(typ, name)
	var last lexical.Value
	for _, p := range params {
		b.a.AppendParameter(f, last, p)
		last = p
	}
	return f
}

func (b *builder) plus() lexical.Value  { return b.op(lexical.OperatorPlus) }
func (b *builder) times() lexical.Value { return b.op(lexical.OperatorMultiply) }
func (b *builder) slash() lexical.Value { return b.op(lexical.OperatorSlash) }
func (b *builder) comma() lexical.Value { return b.op(lexical.OperatorComma) }

func (b *builder) calc(params ...lexical.Value) lexical.Value {
	return b.fn(lexical.Calc, "calc", params...)
}

////////////////////////////////////////////////////////////////

func TestParse(t *testing.T) {
	var tests = []struct {
		grammar  string
		expected string
	}{
		{"*", "*"},
		{"<length>", "<length>"},
		{" auto |<color> ", "auto | <color>"},
		{"<length-percentage>#", "<length-percentage>#"},
		{"<integer>+ | none", "<integer>+ | none"},
		{"<transform-list>", "<transform-list>"},
		{"<custom-ident>", "<custom-ident>"},
	}
	for _, tt := range tests {
		t.Run(tt.grammar, func(t *testing.T) {
			s, err := Parse(tt.grammar)
			require.NoError(t, err)
			test.String(t, s.String(), tt.expected)
		})
	}

	s, err := Parse("auto | <length>#")
	require.NoError(t, err)
	test.T(t, len(s.Alternatives()), 2)
	test.T(t, s.Category, Ident)
	test.String(t, s.Name, "auto")
	test.T(t, s.Next.Multiplier, List)
	test.That(t, !s.Has(Length), "multiplied alternatives are not plain")

	s2, err := Parse("auto | <length>#")
	require.NoError(t, err)
	test.That(t, s == s2, "parsed grammars are cached")
}

func TestParseError(t *testing.T) {
	var tests = []string{
		"",
		"<foo>",
		"a | | b",
		"<transform-list>#",
		"inherit",
		"default",
		"* | <length>",
		"1px",
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, err := Parse(tt)
			require.Error(t, err)
			perr, ok := err.(*grammar.Error)
			require.True(t, ok)
			test.T(t, perr.Code, grammar.ErrInvalidSyntax)
		})
	}
	require.Panics(t, func() { MustParse("<nope>") })
}

func TestUnitCategory(t *testing.T) {
	test.T(t, UnitCategory("PX"), Length)
	test.T(t, UnitCategory("turn"), Angle)
	test.T(t, UnitCategory("ms"), Time)
	test.T(t, UnitCategory("kHz"), Frequency)
	test.T(t, UnitCategory("dppx"), Resolution)
	test.T(t, UnitCategory("fr"), Flex)
	test.T(t, UnitCategory("foo"), Universal)
}

func TestDimension(t *testing.T) {
	length, pct, time := dimensionOf(Length), dimensionOf(Percentage), dimensionOf(Time)

	area := length.Multiply(length, 1)
	test.T(t, len(area.Factors), 1)
	test.T(t, area.Factors[0], Factor{Length, 2})
	test.That(t, area.Multiply(length, -1).Equal(length))
	test.That(t, length.Multiply(length, -1).IsNumber())

	speed := length.Multiply(time, -1)
	test.T(t, len(speed.Factors), 2)
	test.That(t, speed.Equal(time.Multiply(Dimension{}, 1).Multiply(time, -2).Multiply(length, 1)))

	lp, ok := length.Add(pct)
	test.That(t, ok)
	test.That(t, lp.IsLengthPercentage())
	test.That(t, lp.Accepts(LengthPercentage))
	test.That(t, !lp.Accepts(Length))
	test.That(t, !lp.Accepts(Percentage))

	_, ok = length.Add(time)
	test.That(t, !ok)
	_, ok = area.Add(length)
	test.That(t, !ok)

	test.That(t, length.Accepts(Length))
	test.That(t, length.Accepts(LengthPercentage))
	test.That(t, !length.Accepts(Percentage))
	test.That(t, Dimension{}.Accepts(Number))
	test.That(t, !Dimension{}.Accepts(Length))
}

func TestAnalyze(t *testing.T) {
	b := newBuilder(t)
	var tests = []struct {
		name      string
		v         lexical.Value
		ok        bool
		isPending bool
	}{
		{"calc(1px + 2em)", b.calc(b.num("1px"), b.plus(), b.num("2em")), true, false},
		{"calc(1px * 2)", b.calc(b.num("1px"), b.times(), b.num("2")), true, false},
		{"calc(1px / 1px)", b.calc(b.num("1px"), b.slash(), b.num("1px")), true, false},
		{"calc(1px + 1s)", b.calc(b.num("1px"), b.plus(), b.num("1s")), false, false},
		{"calc(1px +)", b.calc(b.num("1px"), b.plus()), false, false},
		{"calc(1foo)", b.calc(b.num("1foo")), false, false},
		{"calc(pi * 1deg)", b.calc(b.ident("pi"), b.times(), b.num("1deg")), true, false},
		{"calc(var(--x) + 1px)", b.calc(b.fn(lexical.Var, "var", b.ident("--x")), b.plus(), b.num("1px")), false, true},
		{"min(1px, 2%)", b.fn(lexical.MathFunction, "min", b.num("1px"), b.comma(), b.num("2%")), true, false},
		{"min(1px, 2s)", b.fn(lexical.MathFunction, "min", b.num("1px"), b.comma(), b.num("2s")), false, false},
		{"clamp(1px, 2px)", b.fn(lexical.MathFunction, "clamp", b.num("1px"), b.comma(), b.num("2px")), false, false},
		{"sin(45deg)", b.fn(lexical.MathFunction, "sin", b.num("45deg")), true, false},
		{"sin(1px)", b.fn(lexical.MathFunction, "sin", b.num("1px")), false, false},
		{"atan2(1px, 2px)", b.fn(lexical.MathFunction, "atan2", b.num("1px"), b.comma(), b.num("2px")), true, false},
		{"pow(2px, 2)", b.fn(lexical.MathFunction, "pow", b.num("2px"), b.comma(), b.num("2")), false, false},
		{"round(up, 3px, 2px)", b.fn(lexical.MathFunction, "round", b.ident("up"), b.comma(), b.num("3px"), b.comma(), b.num("2px")), true, false},
		{"mod(3px)", b.fn(lexical.MathFunction, "mod", b.num("3px")), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, isPending := Analyze(tt.v)
			test.T(t, ok, tt.ok)
			test.T(t, isPending, tt.isPending)
		})
	}

	d, ok, _ := Analyze(b.fn(lexical.MathFunction, "atan", b.num("1")))
	test.That(t, ok)
	test.That(t, d.Accepts(Angle))

	d, ok, _ = Analyze(b.calc(b.num("1px"), b.times(), b.num("1px")))
	test.That(t, ok)
	test.That(t, !d.Accepts(Length), "area is not a length")
}

func TestMatch(t *testing.T) {
	b := newBuilder(t)
	attr := func(typ string, fallback lexical.Value) lexical.Value {
		params := []lexical.Value{b.ident("data-w"), b.ident(typ)}
		if !fallback.IsNil() {
			params = append(params, b.comma(), fallback)
		}
		return b.fn(lexical.Attr, "attr", params...)
	}
	var tests = []struct {
		name     string
		v        lexical.Value
		grammar  string
		expected Match
	}{
		{"10px length", b.num("10px"), "<length>", True},
		{"10px length-percentage", b.num("10px"), "<length-percentage>", True},
		{"10px percentage", b.num("10px"), "<percentage>", False},
		{"10% percentage", b.num("10%"), "<percentage>", True},
		{"0 length", b.num("0"), "<length>", True},
		{"1 length", b.num("1"), "<length>", False},
		{"1.5 integer", b.num("1.5"), "<integer>", False},
		{"3 number", b.num("3"), "<number>", True},
		{"auto keyword", b.ident("AUTO"), "auto | <length>", True},
		{"foo keyword", b.ident("foo"), "auto | <length>", False},
		{"custom-ident", b.ident("slide"), "<custom-ident>", True},
		{"reserved custom-ident", b.ident("default"), "<custom-ident>", False},
		{"color keyword", b.ident("rebeccapurple"), "<color>", True},
		{"currentcolor", b.ident("currentColor"), "<color>", True},
		{"not a color", b.ident("bogus"), "<color>", False},
		{"hex color", b.text(lexical.RGBColor, "#fff"), "<color>", True},
		{"string", b.text(lexical.String, "a"), "<string>", True},
		{"url image", b.text(lexical.URI, "a.png"), "<image>", True},
		{"url", b.text(lexical.URI, "a.png"), "<url>", True},
		{"inherit", b.op(lexical.Inherit), "<length>", True},
		{"universal", b.chain(b.ident("a"), b.comma(), b.num("1s")), "*", True},
		{"list", b.chain(b.num("1px"), b.comma(), b.num("2%")), "<length-percentage>#", True},
		{"list single", b.num("1px"), "<length>#", True},
		{"list trailing comma", b.chain(b.num("1px"), b.comma()), "<length>#", False},
		{"list of pairs", b.chain(b.num("1px"), b.num("2px")), "<length>#", False},
		{"space", b.chain(b.num("1px"), b.num("2px"), b.num("3px")), "<length>+", True},
		{"space with comma", b.chain(b.num("1px"), b.comma(), b.num("2px")), "<length>+", False},
		{"two units", b.chain(b.num("1px"), b.num("2px")), "<length>", False},
		{"transform-list", b.chain(b.fn(lexical.TransformFunction, "scale", b.num("2")), b.fn(lexical.TransformFunction, "rotate", b.num("1deg"))), "<transform-list>", True},

		{"calc length-percentage as length", b.calc(b.num("1px"), b.plus(), b.num("1%")), "<length>", False},
		{"calc length-percentage as percentage", b.calc(b.num("1px"), b.plus(), b.num("1%")), "<percentage>", False},
		{"calc length-percentage", b.calc(b.num("1px"), b.plus(), b.num("1%")), "<length-percentage>", True},
		{"calc length-percentage alternatives", b.calc(b.num("1px"), b.plus(), b.num("1%")), "<length> | <percentage>", False},
		{"calc length and time", b.calc(b.num("1px"), b.plus(), b.num("1s")), "<length>", False},
		{"calc length and time as time", b.calc(b.num("1px"), b.plus(), b.num("1s")), "<time>", False},
		{"calc var", b.calc(b.fn(lexical.Var, "var", b.ident("--x")), b.plus(), b.num("1px")), "<length>", Pending},
		{"calc number as integer", b.calc(b.num("1"), b.plus(), b.num("2")), "<integer>", True},
		{"var", b.fn(lexical.Var, "var", b.ident("--x")), "<length>", Pending},
		{"var in list", b.chain(b.fn(lexical.Var, "var", b.ident("--x")), b.num("1px")), "<length>", Pending},

		{"attr length", attr("px", lexical.Value{}), "<length>", True},
		{"attr length fallback", attr("px", b.num("1px")), "<length>", True},
		{"attr length percentage fallback", attr("px", b.num("10%")), "<length>", Pending},
		{"attr length percentage fallback covered", attr("px", b.num("10%")), "<length> | <percentage>", True},
		{"attr length percentage fallback length-percentage", attr("px", b.num("10%")), "<length-percentage>", True},
		{"attr time fallback", attr("s", b.num("1px")), "<time>", Pending},
		{"attr number as length", attr("number", lexical.Value{}), "<length>", False},
		{"calc attr lenient", b.calc(attr("px", b.num("10%")), b.plus(), b.num("1px")), "<length-percentage>", True},
		{"calc attr lenient length", b.calc(attr("px", b.num("10%")), b.plus(), b.num("1px")), "<length>", Pending},
		{"calc attr lenient covered", b.calc(attr("px", b.num("10%")), b.plus(), b.num("1px")), "<length> | <percentage>", Pending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MatchesGrammar(tt.v, tt.grammar)
			require.NoError(t, err)
			test.T(t, m, tt.expected)
		})
	}
}

func TestMatchString(t *testing.T) {
	test.String(t, False.String(), "False")
	test.String(t, True.String(), "True")
	test.String(t, Pending.String(), "Pending")
	test.String(t, Match(9).String(), "Invalid(9)")
	test.String(t, Category(99).String(), "Invalid(99)")
}
