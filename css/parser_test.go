package css

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdewolff/test"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/condition"
	"github.com/cssgrammar/grammar/lexical"
	"github.com/cssgrammar/grammar/selector"
)

// recorder writes the callbacks it receives as short lines.
type recorder struct {
	BaseHandler
	events     []string
	docs, ends int
}

func (r *recorder) add(format string, a ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, a...))
}

func (r *recorder) String() string {
	return strings.Join(r.events, " | ")
}

func (r *recorder) StartDocument() { r.docs++ }
func (r *recorder) EndDocument()   { r.ends++ }

func (r *recorder) Comment(text string, lf bool) { r.add("comment %s lf=%v", text, lf) }
func (r *recorder) Charset(enc string)           { r.add("charset %s", enc) }
func (r *recorder) NamespaceDeclaration(prefix, uri string) {
	r.add("namespace %s %s", prefix, uri)
}

func (r *recorder) ImportStyle(imp Import) {
	s := "import " + imp.URI
	if imp.HasLayer {
		s += " layer(" + imp.Layer + ")"
	}
	if imp.Supports != nil {
		s += " supports" + imp.Supports.String()
	}
	if 0 < len(imp.Media) {
		s += " " + imp.Media.String()
	}
	r.add("%s", s)
}

func (r *recorder) StartMedia(l condition.MediaQueryList) { r.add("media %s", l) }
func (r *recorder) EndMedia(condition.MediaQueryList)     { r.add("/media") }
func (r *recorder) StartSupports(c condition.Condition)   { r.add("supports %s", c) }
func (r *recorder) EndSupports(condition.Condition)       { r.add("/supports") }
func (r *recorder) LayerStatement(names []string)         { r.add("layers %s", strings.Join(names, ", ")) }
func (r *recorder) StartLayer(name string)                { r.add("layer(%s)", name) }
func (r *recorder) EndLayer(string)                       { r.add("/layer") }
func (r *recorder) StartPage(sels []PageSelector) {
	names := []string{}
	for _, sel := range sels {
		names = append(names, sel.String())
	}
	r.add("page %s", strings.Join(names, ", "))
}
func (r *recorder) EndPage([]PageSelector)        { r.add("/page") }
func (r *recorder) StartMargin(name string)       { r.add("margin %s", name) }
func (r *recorder) EndMargin(string)              { r.add("/margin") }
func (r *recorder) StartFontFace()                { r.add("font-face") }
func (r *recorder) EndFontFace()                  { r.add("/font-face") }
func (r *recorder) StartCounterStyle(name string) { r.add("counter-style %s", name) }
func (r *recorder) EndCounterStyle(string)        { r.add("/counter-style") }
func (r *recorder) StartKeyframes(name string)    { r.add("keyframes %s", name) }
func (r *recorder) EndKeyframes(string)           { r.add("/keyframes") }
func (r *recorder) StartKeyframe(v lexical.Value) { r.add("keyframe %s", v) }
func (r *recorder) EndKeyframe(lexical.Value)     { r.add("/keyframe") }
func (r *recorder) StartFontFeatures(families []string) {
	r.add("font-feature-values %s", strings.Join(families, ", "))
}
func (r *recorder) EndFontFeatures([]string)      { r.add("/font-feature-values") }
func (r *recorder) StartFeatureMap(name string)   { r.add("@%s", name) }
func (r *recorder) EndFeatureMap(name string)     { r.add("/%s", name) }
func (r *recorder) StartProperty(name string)     { r.add("property %s", name) }
func (r *recorder) EndProperty(discard bool)      { r.add("/property discard=%v", discard) }
func (r *recorder) StartSelector(l selector.List) { r.add("sel %s", l) }
func (r *recorder) EndSelector(selector.List)     { r.add("/sel") }
func (r *recorder) IgnorableAtRule(text string)   { r.add("ignored %s", text) }
func (r *recorder) Property(name string, v lexical.Value, important bool) {
	if important {
		r.add("%s: %s !important", name, v)
		return
	}
	r.add("%s: %s", name, v)
}

func parseSheet(opts grammar.Options, css string) (*recorder, *ErrorList, error) {
	rec := &recorder{}
	errs := &ErrorList{}
	p := New(opts)
	p.SetDocumentHandler(rec)
	p.SetErrorHandler(errs)
	err := p.ParseStyleSheet(strings.NewReader(css))
	return rec, errs, err
}

func codeOf(t *testing.T, err error) grammar.ErrorCode {
	t.Helper()
	var e *grammar.Error
	require.ErrorAs(t, err, &e)
	return e.Code
}

////////////////////////////////////////////////////////////////

func TestStyleSheet(t *testing.T) {
	var tests = []struct {
		css      string
		expected string
	}{
		{"a{color:red}", "sel a | color: red | /sel"},
		{"a { color: RED; }", "sel a | color: red | /sel"},
		{"a{color:red!important}", "sel a | color: red !important | /sel"},
		{"a{color:red ! important;margin:0}", "sel a | color: red !important | margin: 0 | /sel"},
		{"a > b.c, #d{x:y}", "sel a > b.c, #d | x: y | /sel"},
		{"ul li:first-child{x:y}", "sel ul li:first-child | x: y | /sel"},
		{"a:not(.b, .c)::before{x:y}", "sel a:not(.b, .c)::before | x: y | /sel"},
		{"li:nth-child(2n+1 of .x){x:y}", "sel li:nth-child(2n+1 of .x) | x: y | /sel"},
		{"a:has(> img){x:y}", "sel a:has(> img) | x: y | /sel"},
		{"[href^='http' i]{x:y}", `sel [href^="http" i] | x: y | /sel`},
		{"a{--x: ;}", "sel a | --x:  | /sel"},
		{"a{font-family:Arial, \"Times New Roman\"}", `sel a | font-family: Arial, "Times New Roman" | /sel`},
		{"a{width:calc(100% - 2em)}", "sel a | width: calc(100% - 2em) | /sel"},
		{"a{background:url(x.png) #FFF}", "sel a | background: url(x.png) #FFF | /sel"},
		{"a{grid-template-columns:[a] 1fr [b]}", "sel a | grid-template-columns: [a] 1fr [b] | /sel"},
		{"@charset \"utf-8\";a{}", "charset utf-8 | sel a | /sel"},
		{"@import \"a.css\" screen;", "import a.css screen"},
		{"@import url(\"a.css\") layer(base) supports(display: grid) print;", "import a.css layer(base) supports(display: grid) print"},
		{"@import url(a.css) layer supports((display: grid) or (display: flex));", "import a.css layer() supports(display: grid) or (display: flex)"},
		{"@namespace svg url(http://www.w3.org/2000/svg);svg|rect{}", "namespace svg http://www.w3.org/2000/svg | sel svg|rect | /sel"},
		{"@media screen and (min-width: 100px){a{color:red}}", "media screen and (min-width: 100px) | sel a | color: red | /sel | /media"},
		{"@media (400px <= width <= 700px){}", "media (400px <= width <= 700px) | /media"},
		{"@media (600px < width){}", "media (width > 600px) | /media"},
		{"@supports (display: grid) and (not (display: inline-grid)){a{x:y}}", "supports (display: grid) and (not (display: inline-grid)) | sel a | x: y | /sel | /supports"},
		{"@supports selector(a > b){}", "supports selector(a > b) | /supports"},
		{"@layer a, b.c;@layer{x{}}", "layers a, b.c | layer() | sel x | /sel | /layer"},
		{"@layer base{a{}}", "layer(base) | sel a | /sel | /layer"},
		{"@page :first{margin:1in;@top-left{content:\"x\"}}", `page :first | margin: 1in | margin top-left | content: "x" | /margin | /page`},
		{"@font-face{font-family:X;src:url(x.woff)}", "font-face | font-family: X | src: url(x.woff) | /font-face"},
		{"@keyframes spin{from{a:b}50%{a:c}to{a:d}}", "keyframes spin | keyframe from | a: b | /keyframe | keyframe 50% | a: c | /keyframe | keyframe to | a: d | /keyframe | /keyframes"},
		{"@-webkit-keyframes spin{from, 50%{a:b}}", "keyframes spin | keyframe from, 50% | a: b | /keyframe | /keyframes"},
		{"@font-feature-values Font One{@styleset{nice-style:12}}", "font-feature-values Font One | @styleset | nice-style: 12 | /styleset | /font-feature-values"},
		{"@counter-style thumbs{system:cyclic}", "counter-style thumbs | system: cyclic | /counter-style"},
		{"@foo bar;a{}", "ignored @foo bar; | sel a | /sel"},
		{"a{}\n/*c*/", "sel a | /sel | comment c lf=true"},
		{"<!-- a{} -->", "sel a | /sel"},
	}
	for _, tt := range tests {
		t.Run(tt.css, func(t *testing.T) {
			rec, errs, err := parseSheet(grammar.DefaultOptions(), tt.css)
			require.NoError(t, err)
			test.T(t, len(errs.Errors), 0, "errors")
			test.String(t, rec.String(), tt.expected)
			test.T(t, rec.docs, 1)
			test.T(t, rec.ends, 1)
		})
	}
}

func TestNestedRules(t *testing.T) {
	var tests = []struct {
		css      string
		expected string
	}{
		{"a{color:red;@media print{color:blue}}", "sel a | color: red | media print | color: blue | /media | /sel"},
		{"a{&:hover{color:blue}.b{c:d}}", "sel a | sel &:hover | color: blue | /sel | sel .b | c: d | /sel | /sel"},
		{"a{> b{c:d}}", "sel a | sel > b | c: d | /sel | /sel"},
		{"a{@supports (x: y){c:d}}", "sel a | supports (x: y) | c: d | /supports | /sel"},
	}
	for _, tt := range tests {
		t.Run(tt.css, func(t *testing.T) {
			rec, errs, err := parseSheet(grammar.DefaultOptions(), tt.css)
			require.NoError(t, err)
			test.T(t, len(errs.Errors), 0, "errors")
			test.String(t, rec.String(), tt.expected)
		})
	}
}

func TestRecovery(t *testing.T) {
	var tests = []struct {
		css      string
		expected string
		codes    []grammar.ErrorCode
	}{
		{"a{color: ; color: red;}", "sel a | color: red | /sel", []grammar.ErrorCode{grammar.ErrEmptyValue}},
		{"a{color:red inherit;x:y}", "sel a | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidValue}},
		{"a{width:calc(1px +2px);x:y}", "sel a | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidOperator}},
		{"a{color:red !bad;x:y}", "sel a | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidPriority}},
		{"a{color red;x:y}", "sel a | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidRule}},
		{".a,,.b{color:red}b{x:y}", "sel b | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidSelector}},
		{"[attr=]{color:red}b{x:y}", "sel b | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidAttribute}},
		{"a:has(:has(b)){x:y}b{x:y}", "sel b | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidPseudo}},
		{"a:has(::before){x:y}b{x:y}", "sel b | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidPseudo}},
		{"foo|a{x:y}b{x:y}", "sel b | x: y | /sel", []grammar.ErrorCode{grammar.ErrUnknownNamespace}},
		{"a{}@import \"x.css\";b{x:y}", "sel a | /sel | sel b | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidAtRule}},
		{"@media screen and, print{a{x:y}}", "media not all, print | sel a | x: y | /sel | /media", []grammar.ErrorCode{grammar.ErrInvalidMediaQuery}},
		{"@supports (a: b) and (c: d) or (e: f){a{x:y}}b{x:y}", "sel b | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidCondition}},
		{"@keyframes k{150x{a:b}to{a:c}}", "keyframes k | keyframe to | a: c | /keyframe | /keyframes", []grammar.ErrorCode{grammar.ErrInvalidRule}},
		{"@keyframes none{}a{x:y}", "sel a | x: y | /sel", []grammar.ErrorCode{grammar.ErrInvalidAtRule}},
		{"a{color:red", "sel a | color: red | /sel", nil},
		{"a{color:(red)}", "sel a | /sel", []grammar.ErrorCode{grammar.ErrUnexpectedChar}},
		{"a{--x:{a:b};y:z}", "sel a | --x: {a:b} | y: z | /sel", nil},
		{"a{--x: [;]; w:v}", "sel a | --x: [;] | w: v | /sel", nil},
		{"a{--x: /**/ {a{b}} c !important}", "sel a | --x: {a{b}} c !important | /sel", nil},
		{"a{x: [;]; w:v}", "sel a | w: v | /sel", []grammar.ErrorCode{grammar.ErrUnexpectedChar}},
	}
	for _, tt := range tests {
		t.Run(tt.css, func(t *testing.T) {
			rec, errs, err := parseSheet(grammar.DefaultOptions(), tt.css)
			require.NoError(t, err)
			test.String(t, rec.String(), tt.expected)
			if tt.codes == nil {
				tt.codes = []grammar.ErrorCode{}
			}
			assert.Equal(t, tt.codes, errs.Codes())
		})
	}
}

func TestWarnings(t *testing.T) {
	var tests = []struct {
		flags    grammar.Flag
		css      string
		expected string
		code     grammar.ErrorCode
	}{
		{0, "a{}@charset \"utf-8\";", "sel a | /sel", grammar.WarnCharsetPosition},
		{0, ".a, .a{}", "sel .a, .a | /sel", grammar.WarnDuplicateSelector},
		{0, "@foo;", "ignored @foo;", grammar.WarnIgnoredAtRule},
		{0, "a{_zoom:1}", "sel a | _zoom: 1 | /sel", grammar.WarnSuspiciousProperty},
		{grammar.FlagStarHack, "a{*zoom:1}", "sel a | *zoom: 1 | /sel", grammar.WarnCompatHack},
		{grammar.FlagIEPrio, "a{color:red !ie}", "sel a | color: red !important | /sel", grammar.WarnCompatHack},
		{grammar.FlagIEPrioChar, "a{color:red!}", "sel a | color: red! | /sel", grammar.WarnCompatHack},
		{0, "@supports font-tech(color-COLRv1){}", "supports font-tech(color-COLRv1) | /supports", grammar.WarnUnsupportedPredicate},
		{0, "@property --x{syntax:\"<length>\";inherits:false;initial-value:red}", `property --x | syntax: "<length>" | inherits: false | initial-value: red | /property discard=true`, grammar.WarnDiscardedRule},
	}
	for _, tt := range tests {
		t.Run(tt.css, func(t *testing.T) {
			opts := grammar.DefaultOptions()
			opts.Flags = tt.flags
			rec, errs, err := parseSheet(opts, tt.css)
			require.NoError(t, err)
			test.T(t, len(errs.Errors), 0, "errors")
			test.String(t, rec.String(), tt.expected)
			require.NotEmpty(t, errs.Warnings)
			test.T(t, errs.Warnings[0].Code, tt.code)
			test.T(t, errs.Warnings[0].Kind, grammar.KindWarning)
		})
	}
}

func TestStarHackDisabled(t *testing.T) {
	_, errs, err := parseSheet(grammar.DefaultOptions(), "a{*zoom:1}")
	require.NoError(t, err)
	assert.Equal(t, []grammar.ErrorCode{grammar.ErrInvalidRule}, errs.Codes())
}

func TestProperty(t *testing.T) {
	var tests = []struct {
		css     string
		discard bool
	}{
		{`@property --x{syntax:"<length>";inherits:false;initial-value:0px}`, false},
		{`@property --x{syntax:"*";inherits:true}`, false},
		{`@property --x{syntax:"<color> | none";inherits:true;initial-value:none}`, false},
		{`@property --x{syntax:"<length>";inherits:false}`, true},
		{`@property --x{syntax:"<length>";initial-value:1px}`, true},
		{`@property --x{syntax:"<length>";inherits:maybe;initial-value:1px}`, true},
		{`@property --x{syntax:"<bogus>";inherits:false;initial-value:1px}`, true},
		{`@property --x{syntax:length;inherits:false;initial-value:1px}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.css, func(t *testing.T) {
			rec, errs, err := parseSheet(grammar.DefaultOptions(), tt.css)
			require.NoError(t, err)
			test.T(t, len(errs.Errors), 0, "errors")
			test.String(t, rec.events[0], "property --x")
			test.String(t, rec.events[len(rec.events)-1], fmt.Sprintf("/property discard=%v", tt.discard))
		})
	}
}

func TestAbortWithoutErrorHandler(t *testing.T) {
	rec := &recorder{}
	p := New(grammar.DefaultOptions())
	p.SetDocumentHandler(rec)
	err := p.ParseStyleSheet(strings.NewReader("@media print{a{color:}b{x:y}}"))
	test.T(t, codeOf(t, err), grammar.ErrEmptyValue)
	assert.ErrorIs(t, err, grammar.ErrSyntax)

	// blocks are closed when the parse stops
	test.String(t, rec.String(), "media print | sel a | /sel | /media")
	test.T(t, rec.ends, 1)

	line, col, _ := err.(*grammar.Error).Position()
	test.T(t, line, 1)
	test.T(t, col, 22)
}

func TestBudgets(t *testing.T) {
	t.Run("nesting", func(t *testing.T) {
		p := New(grammar.DefaultOptions())
		p.SetErrorHandler(&ErrorList{})

		cond := strings.Repeat("(", 32) + "a: b" + strings.Repeat(")", 32)
		c, err := p.ParseSupportsCondition(cond)
		require.NoError(t, err)
		test.String(t, c.String(), "(a: b)")

		cond = strings.Repeat("(", 33) + "a: b" + strings.Repeat(")", 33)
		_, err = p.ParseSupportsCondition(cond)
		test.That(t, grammar.IsBudget(err), "budget error")
		test.T(t, codeOf(t, err), grammar.ErrNestingDepth)
	})

	t.Run("stream", func(t *testing.T) {
		opts := grammar.DefaultOptions()
		opts.MaxStreamSize = 1
		rec, _, err := parseSheet(opts, strings.Repeat(" ", grammar.MinMaxStreamSize+1))
		test.That(t, grammar.IsBudget(err), "budget error")
		test.T(t, codeOf(t, err), grammar.ErrStreamSize)
		test.T(t, rec.docs, 0)

		_, err = New(opts).ParseSelectors(strings.Repeat("a ", grammar.MinMaxStreamSize))
		test.That(t, grammar.IsBudget(err), "budget error")
	})

	t.Run("edit", func(t *testing.T) {
		opts := grammar.DefaultOptions()
		opts.MaxEditNodes = 2
		rec, _, err := parseSheet(opts, "a{margin:1px 2px 3px}b{x:y}")
		test.That(t, grammar.IsBudget(err), "budget error")
		test.T(t, codeOf(t, err), grammar.ErrEditSize)
		test.String(t, rec.String(), "sel a | /sel")
		test.T(t, rec.ends, 1)
	})
}

////////////////////////////////////////////////////////////////

func TestParseSelectors(t *testing.T) {
	var tests = []struct {
		sel      string
		expected string
	}{
		{"a", "a"},
		{"*", "*"},
		{"a b > c + d ~ e", "a b > c + d ~ e"},
		{"a , b", "a, b"},
		{".x.y#z", ".x.y#z"},
		{"*|a, |b", "*|a, |b"},
		{"[a][b=c][d~='e' s]", `[a][b="c"][d~="e" s]`},
		{":is(a, b) c", ":is(a, b) c"},
		{":lang(en, \"fr-*\")", `:lang(en, "fr-*")`},
		{"li:nth-of-type(odd)", "li:nth-of-type(2n+1)"},
		{"a:first-line", "a:first-line"},
		{"::part(label)", "::part(label)"},
		{"col || td", "col || td"},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			l, err := New(grammar.DefaultOptions()).ParseSelectors(tt.sel)
			require.NoError(t, err)
			test.String(t, l.String(), tt.expected)
		})
	}

	var errorTests = []struct {
		sel  string
		code grammar.ErrorCode
	}{
		{"", grammar.ErrInvalidSelector},
		{".a,,.b", grammar.ErrInvalidSelector},
		{"a >", grammar.ErrInvalidSelector},
		{"[attr=]", grammar.ErrInvalidAttribute},
		{"a:has(:has(b))", grammar.ErrInvalidPseudo},
		{"a:has(::before)", grammar.ErrInvalidPseudo},
		{"a:nth-child(foo)", grammar.ErrInvalidPseudo},
		{"a:first-child(1)", grammar.ErrInvalidPseudo},
		{"a)", grammar.ErrUnmatchedBracket},
		{"ns|a", grammar.ErrUnknownNamespace},
		{"a b{", grammar.ErrUnexpectedChar},
	}
	for _, tt := range errorTests {
		t.Run(tt.sel, func(t *testing.T) {
			_, err := New(grammar.DefaultOptions()).ParseSelectors(tt.sel)
			test.T(t, codeOf(t, err), tt.code)
		})
	}
}

func TestParsePropertyValue(t *testing.T) {
	var tests = []struct {
		property string
		value    string
		expected string
	}{
		{"color", "RED", "red"},
		{"", "RED", "RED"},
		{"--X", "Foo  Bar", "Foo Bar"},
		{"animation-name", "Spin", "Spin"},
		{"margin", "0 auto", "0 auto"},
		{"width", "min(10px, 5%)", "min(10px, 5%)"},
		{"width", "calc((1px + 2px) * 3)", "calc((1px + 2px)*3)"},
		{"font", "12px/1.5 serif", "12px/1.5 serif"},
		{"color", "inherit", "inherit"},
		{"unicode-range", "U+0025-00FF, u+4??", "u+0025-00ff, u+4??"},
		{"background", "url( 'a b.png' )", "url('a b.png')"},
		{"content", "\"a\" attr(title)", `"a" attr(title)`},
		{"--x", "{a: b} [;]", "{a: b} [;]"},
		{"--x", "(a, b)", "(a, b)"},
		{"--x", "{a", "{a}"},
	}
	for _, tt := range tests {
		t.Run(tt.property+":"+tt.value, func(t *testing.T) {
			v, err := New(grammar.DefaultOptions()).ParsePropertyValueFor(tt.property, tt.value)
			require.NoError(t, err)
			test.String(t, v.String(), tt.expected)
		})
	}

	var errorTests = []struct {
		property string
		value    string
		code     grammar.ErrorCode
	}{
		{"color", "", grammar.ErrEmptyValue},
		{"color", "red inherit", grammar.ErrInvalidValue},
		{"color", "inherit red", grammar.ErrInvalidValue},
		{"width", "calc(1px + )", grammar.ErrInvalidOperator},
		{"width", "calc(1px, 2px)", grammar.ErrInvalidOperator},
		{"width", "(1px)", grammar.ErrUnexpectedChar},
		{"color", "#ggg", grammar.ErrInvalidValue},
		{"grid-area", "[a", grammar.ErrUnmatchedBracket},
		{"color", "red)", grammar.ErrUnmatchedBracket},
	}
	for _, tt := range errorTests {
		t.Run(tt.property+":"+tt.value, func(t *testing.T) {
			_, err := New(grammar.DefaultOptions()).ParsePropertyValueFor(tt.property, tt.value)
			test.T(t, codeOf(t, err), tt.code)
		})
	}
}

func TestParsePropertyValueTypes(t *testing.T) {
	v, err := New(grammar.DefaultOptions()).ParsePropertyValue("1 2.5 50% 3em #abc u+26 url(x)")
	require.NoError(t, err)
	types := []lexical.Type{}
	for u := v; !u.IsNil(); u = u.Next() {
		types = append(types, u.Type())
	}
	assert.Equal(t, []lexical.Type{lexical.Integer, lexical.Real, lexical.Percentage, lexical.Dimension, lexical.RGBColor, lexical.UnicodeRange, lexical.URI}, types)

	v, err = New(grammar.DefaultOptions()).ParsePropertyValue("a/* x */ b")
	require.NoError(t, err)
	_, trailing := v.Comments()
	assert.Equal(t, []string{" x "}, trailing)
}

func TestIEValues(t *testing.T) {
	opts := grammar.DefaultOptions()
	opts.Flags = grammar.FlagIEValues
	p := New(opts)
	p.SetErrorHandler(&ErrorList{})

	v, err := p.ParsePropertyValueFor("filter", "progid:DXImageTransform.Microsoft.Alpha(Opacity=80)")
	require.NoError(t, err)
	test.T(t, v.Type(), lexical.CompatIdent)
	test.String(t, v.String(), "progid:DXImageTransform.Microsoft.Alpha(Opacity=80)")

	v, err = p.ParsePropertyValueFor("width", `100px\9`)
	require.NoError(t, err)
	test.T(t, v.Type(), lexical.CompatIdent)
}

func TestParseMediaQueryList(t *testing.T) {
	var tests = []struct {
		media    string
		expected string
	}{
		{"", ""},
		{"screen and (color), print", "screen and (color), print"},
		{"(min-width: 100px) and (max-width: 200px)", "(min-width: 100px) and (max-width: 200px)"},
		{"not print and (orientation: landscape)", "not print and (orientation: landscape)"},
		{"only screen", "only screen"},
		{"not (color) or (hover)", "not all"},
		{"(width >= 600px)", "(width >= 600px)"},
		{"(100px < width)", "(width > 100px)"},
		{"screen and, print", "not all, print"},
		{"and", "not all"},
		{"screen and (color) or (hover)", "not all"},
		{"(1px < width > 2px)", "not all"},
	}
	for _, tt := range tests {
		t.Run(tt.media, func(t *testing.T) {
			p := New(grammar.DefaultOptions())
			p.SetErrorHandler(&ErrorList{})
			l, err := p.ParseMediaQueryList(tt.media)
			require.NoError(t, err)
			test.String(t, l.String(), tt.expected)
		})
	}

	l, err := New(grammar.DefaultOptions()).ParseMediaQueryList("(min-width: 100px) and (max-width: 200px)")
	require.NoError(t, err)
	ops := condition.Operands(l[0].Condition)
	require.Len(t, ops, 2)
	lo, hi := ops[0].(*condition.Feature), ops[1].(*condition.Feature)
	test.T(t, lo.Name, "width")
	test.T(t, lo.Op, condition.OpGE)
	test.T(t, hi.Op, condition.OpLE)
	test.T(t, hi.LegacyName, "max-width")
}

func TestParseSupportsCondition(t *testing.T) {
	var tests = []struct {
		cond     string
		expected string
	}{
		{"(display: grid)", "(display: grid)"},
		{"not (display: grid)", "not (display: grid)"},
		{"(a: b) or (c: d) or (e: f)", "(a: b) or (c: d) or (e: f)"},
		{"((a: b) or (c: d)) and (e: f)", "((a: b) or (c: d)) and (e: f)"},
		{"(color: red !important)", "(color: red !important)"},
		{"selector(a > b)", "selector(a > b)"},
		{"font-tech(color-COLRv1)", "font-tech(color-COLRv1)"},
		{"(foo bar)", "(foo bar)"},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			p := New(grammar.DefaultOptions())
			p.SetErrorHandler(&ErrorList{})
			c, err := p.ParseSupportsCondition(tt.cond)
			require.NoError(t, err)
			test.String(t, c.String(), tt.expected)
		})
	}

	var errorTests = []struct {
		cond string
		code grammar.ErrorCode
	}{
		{"", grammar.ErrInvalidCondition},
		{"(a: b) and (c: d) or (e: f)", grammar.ErrInvalidCondition},
		{"not (a: b) and (c: d)", grammar.ErrInvalidCondition},
		{"(a: b) (c: d)", grammar.ErrInvalidCondition},
		{"and(a: b)", grammar.ErrInvalidCondition},
		{"((a: b)", grammar.ErrUnexpectedEOF},
		{"(a: b))", grammar.ErrUnmatchedBracket},
	}
	for _, tt := range errorTests {
		t.Run(tt.cond, func(t *testing.T) {
			_, err := New(grammar.DefaultOptions()).ParseSupportsCondition(tt.cond)
			test.T(t, codeOf(t, err), tt.code)
		})
	}
}

func TestParseParts(t *testing.T) {
	rec := &recorder{}
	p := New(grammar.DefaultOptions())
	p.SetDocumentHandler(rec)

	require.NoError(t, p.ParseStyleDeclaration("color: red; margin: 0 !important; &:hover { x: y }"))
	test.String(t, rec.String(), "color: red | margin: 0 !important | sel &:hover | x: y | /sel")

	rec.events = nil
	require.NoError(t, p.ParseRule("@media print { a { x: y } }"))
	test.String(t, rec.String(), "media print | sel a | x: y | /sel | /media")

	rec.events = nil
	err := p.ParseRule("a{} b{}")
	test.T(t, codeOf(t, err), grammar.ErrInvalidRule)

	rec.events = nil
	require.NoError(t, p.ParsePageRuleBody("size: A4; @bottom-center { content: counter(page) }"))
	test.String(t, rec.String(), "size: a4 | margin bottom-center | content: counter(page) | /margin")

	rec.events = nil
	require.NoError(t, p.ParseKeyframesBody("0% { a: b } 100% { a: c }"))
	test.String(t, rec.String(), "keyframe 0% | a: b | /keyframe | keyframe 100% | a: c | /keyframe")

	rec.events = nil
	require.NoError(t, p.ParseFontFeatureValuesBody("font-display: swap; @swash { fancy: 1 }"))
	test.String(t, rec.String(), "font-display: swap | @swash | fancy: 1 | /swash")
}

func TestParseStyleSheetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.css")
	require.NoError(t, os.WriteFile(path, []byte("a { color: red }"), 0o644))

	rec := &recorder{}
	p := New(grammar.DefaultOptions())
	p.SetDocumentHandler(rec)
	require.NoError(t, p.ParseStyleSheetFile(path))
	test.String(t, rec.String(), "sel a | color: red | /sel")

	err := p.ParseStyleSheetFile(filepath.Join(t.TempDir(), "missing.css"))
	test.T(t, codeOf(t, err), grammar.ErrIO)
}

func TestRoundTrip(t *testing.T) {
	var tests = []string{
		"a > b.c:hover, #d::after",
		"ul li:nth-child(2n+1 of .x)",
		":is(a, b):not(.c) ~ d",
	}
	for _, sel := range tests {
		t.Run(sel, func(t *testing.T) {
			p := New(grammar.DefaultOptions())
			l, err := p.ParseSelectors(sel)
			require.NoError(t, err)
			l2, err := p.ParseSelectors(l.String())
			require.NoError(t, err)
			test.That(t, l.Equal(l2), "selector lists differ")
		})
	}

	values := []string{"calc(100% - 2em)", "1px solid rgb(0, 0, 0)", "\"a\\\"b\" 'c'"}
	for _, val := range values {
		t.Run(val, func(t *testing.T) {
			p := New(grammar.DefaultOptions())
			v, err := p.ParsePropertyValue(val)
			require.NoError(t, err)
			v2, err := p.ParsePropertyValue(v.String())
			require.NoError(t, err)
			test.That(t, lexical.Equal(v, v2), "values differ")
		})
	}
}

func TestManagerContext(t *testing.T) {
	m := newManager([]byte("a"), grammar.DefaultOptions(), nil, nil)
	m.yield(newBlock(m, ctxTop, false, nil))
	m.yield(newSelectorRec(m, nil))
	test.String(t, m.Context(), "style-sheet > selector")
	m.restore()
	test.String(t, m.Context(), "style-sheet")
	m.unwind()
	test.String(t, m.Context(), "")
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	opts := grammar.DefaultOptions()
	opts.Logger = zap.New(core)

	c, err := New(opts).ParseSupportsCondition("font-tech(color-COLRv1)")
	require.NoError(t, err)
	test.String(t, c.String(), "font-tech(color-COLRv1)")

	// warnings go to the logger when there is no error handler
	warns := logs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "UnsupportedPredicate", warns[0].ContextMap()["code"])
	assert.Equal(t, int64(1), warns[0].ContextMap()["line"])
	assert.NotZero(t, logs.FilterMessage("yield").Len())

	// and stay there when one is set
	core, logs = observer.New(zap.DebugLevel)
	opts.Logger = zap.New(core)
	p := New(opts)
	errs := &ErrorList{}
	p.SetErrorHandler(errs)
	_, err = p.ParseSupportsCondition("font-tech(color-COLRv1)")
	require.NoError(t, err)
	test.T(t, len(errs.Warnings), 1)
	test.T(t, logs.FilterLevelExact(zap.WarnLevel).Len(), 0)
}
