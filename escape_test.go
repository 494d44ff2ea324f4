package grammar

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestIsIdent(t *testing.T) {
	var tests = []struct {
		s        string
		expected bool
	}{
		{"color", true},
		{"-moz-box", true},
		{"--custom", true},
		{"_x1", true},
		{"日本", true},
		{"", false},
		{"-", false},
		{"1a", false},
		{"-1a", false},
		{"a.b", false},
		{"a b", false},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			test.T(t, IsIdent(tt.s), tt.expected)
		})
	}
}

func TestUnescape(t *testing.T) {
	var tests = []struct {
		s        string
		expected string
	}{
		{`abc`, "abc"},
		{`a\:b`, "a:b"},
		{`\31 a`, "1a"},
		{`\000041`, "A"},
		{`\0`, "�"},
		{`\D800`, "�"},
		{`x\`, "x�"},
		{`\e9 t\e9`, "été"},
		{`\\`, `\`},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			test.String(t, Unescape(tt.s), tt.expected)
		})
	}
}

func TestUnescapeIdempotent(t *testing.T) {
	for _, s := range []string{"color", "a:b", "été", "1a", "-moz-x"} {
		test.String(t, Unescape(Unescape(s)), Unescape(s), s)
	}
}

func TestEscapeIdent(t *testing.T) {
	var tests = []struct {
		s        string
		expected string
	}{
		{"color", "color"},
		{"a:b", `a\:b`},
		{"1a", `\31 a`},
		{"-1a", `-\31 a`},
		{"-", `\-`},
		{"a b", `a\ b`},
		{"a\tb", `a\9 b`},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			test.String(t, EscapeIdent(tt.s), tt.expected)
			test.String(t, Unescape(EscapeIdent(tt.s)), tt.s, "round trip")
		})
	}
}

func TestQuoteString(t *testing.T) {
	test.String(t, QuoteString(`it's`, '\''), `'it\'s'`)
	test.String(t, QuoteString(`a"b`, '"'), `"a\"b"`)
	test.String(t, QuoteString("a\nb", '"'), `"a\a b"`)
}
