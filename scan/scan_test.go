package scan

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/tdewolff/test"

	"github.com/cssgrammar/grammar"
)

type recorder struct {
	events []string
	stopAt int
}

func (r *recorder) add(format string, a ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, a...))
}

func (r *recorder) Word(pos int, text string)      { r.add("w(%s)", text) }
func (r *recorder) Character(pos int, c rune)      { r.add("c(%c)", c) }
func (r *recorder) Escaped(pos int, c rune)        { r.add("e(%c)", c) }
func (r *recorder) Separator(pos int, c rune)      { r.add("_") }
func (r *recorder) LeftParen(pos int)              { r.add("(") }
func (r *recorder) RightParen(pos int)             { r.add(")") }
func (r *recorder) LeftBracket(pos int)            { r.add("[") }
func (r *recorder) RightBracket(pos int)           { r.add("]") }
func (r *recorder) LeftBrace(pos int)              { r.add("{") }
func (r *recorder) RightBrace(pos int)             { r.add("}") }
func (r *recorder) EndOfStream(n int)              { r.add("eof(%d)", n) }
func (r *recorder) LexicalError(pos int, m string) { r.add("err(%s)", m) }
func (r *recorder) Quoted(pos int, text string, quote rune) {
	if quote == 0 {
		r.add("q(%s)", text)
	} else {
		r.add("q(%c%s)", quote, text)
	}
}
func (r *recorder) QuotedWithControl(pos int, text string, quote rune) {
	r.add("qc(%q)", text)
}
func (r *recorder) Commented(pos int, kind CommentKind, text string) {
	r.add("/%s:%s/", kind, text)
}
func (r *recorder) Stopped() bool {
	return r.stopAt != 0 && len(r.events) >= r.stopAt
}

func TestScanner(t *testing.T) {
	var tests = []struct {
		css      string
		expected string
	}{
		{"a{color:red}", "w(a) { w(color) c(:) w(red) } eof(12)"},
		{"@media screen", "c(@) w(media) _ w(screen) eof(13)"},
		{"#fff", "c(#) w(fff) eof(4)"},
		{"rgb(1, 2%)", "w(rgb) ( w(1) c(,) _ w(2%) ) eof(10)"},
		{"10px -1.5em", "w(10px) _ w(-1.5em) eof(11)"},
		{"a\\:b", "w(a) e(:) w(b) eof(4)"},
		{"\\31 0", "e(1) w(0) eof(5)"},
		{"'it\\'s'", "q('it's) eof(7)"},
		{"url( x.png )", "w(url) ( q(x.png) ) eof(12)"},
		{"url('x.png')", "w(url) ( q('x.png) ) eof(12)"},
		{"[a~=b]", "[ w(a) c(~) c(=) w(b) ] eof(6)"},
		{"a||b", "w(a) c(|) c(|) w(b) eof(4)"},
		{"/* x */a", "/Regular: x / w(a) eof(8)"},
		{"<!-- -->", "/SGML:<!--/ _ /SGML:-->/ eof(8)"},
		{"U+0-7F", "w(U+0-7F) eof(6)"},
		{"a > b", "w(a) _ c(>) _ w(b) eof(5)"},
		{"\"a\tb\"", "qc(\"a\\tb\") eof(5)"},
		{"\"abc\ndef", "err(unterminated string) _ w(def) eof(8)"},
		{"'a\n b", "err(unterminated string) _ _ w(b) eof(5)"},
		{"!important", "c(!) w(important) eof(10)"},
	}
	for _, tt := range tests {
		t.Run(tt.css, func(t *testing.T) {
			r := &recorder{}
			New([]byte(tt.css)).Run(r)
			test.String(t, strings.Join(r.events, " "), tt.expected)
		})
	}
}

func TestScannerStop(t *testing.T) {
	r := &recorder{stopAt: 2}
	New([]byte("a b c d")).Run(r)
	test.T(t, len(r.events), 2)
}

func TestRead(t *testing.T) {
	b, err := Read(bytes.NewBufferString("abc"), 3)
	test.T(t, err, nil)
	test.String(t, string(b), "abc")

	_, err = Read(bytes.NewBufferString("abcd"), 3)
	test.That(t, grammar.IsBudget(err), "stream ceiling must raise a budget error")
}

func TestDecodeEscape(t *testing.T) {
	var tests = []struct {
		s string
		r rune
		n int
	}{
		{`\41`, 'A', 3},
		{`\41 `, 'A', 4},
		{`\41` + "\r\n", 'A', 5},
		{`\:`, ':', 2},
		{`\0`, '�', 2},
		{`\é`, 'é', 3},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			r, n := DecodeEscape([]byte(tt.s))
			test.T(t, r, tt.r)
			test.T(t, n, tt.n)
		})
	}
}
