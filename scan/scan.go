// Package scan turns CSS source into the lexical events consumed by the grammar recognizers.
// Tokenization is done by the css lexer of github.com/tdewolff/parse/v2, each token is then
// mapped onto one or more events of the Handler interface.
package scan

import (
	"bytes"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/cssgrammar/grammar"
)

// EOF is the reserved previous-codepoint sentinel for the end of the stream.
const EOF rune = -1

// CommentKind distinguishes regular comments from SGML comment delimiters.
type CommentKind uint8

// CommentKind values.
const (
	CommentRegular CommentKind = iota // /* ... */
	CommentSGML                       // <!-- or -->
)

// String returns the string representation of a CommentKind.
func (k CommentKind) String() string {
	switch k {
	case CommentRegular:
		return "Regular"
	case CommentSGML:
		return "SGML"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// Handler receives lexical events. Positions are byte offsets into the source.
type Handler interface {
	Word(pos int, text string)
	Character(pos int, c rune)
	Escaped(pos int, c rune)
	Quoted(pos int, text string, quote rune)
	QuotedWithControl(pos int, text string, quote rune)
	Separator(pos int, c rune)
	LeftParen(pos int)
	RightParen(pos int)
	LeftBracket(pos int)
	RightBracket(pos int)
	LeftBrace(pos int)
	RightBrace(pos int)
	Commented(pos int, kind CommentKind, text string)
	EndOfStream(n int)
	LexicalError(pos int, msg string)
}

// Stopper is implemented by handlers that may abort scanning early.
type Stopper interface {
	Stopped() bool
}

////////////////////////////////////////////////////////////////

// Read reads all of r, failing with a budget error when more than limit bytes are available.
func Read(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, grammar.NewError(nil, 0, grammar.KindSyntax, grammar.ErrIO, "reading style sheet: %v", err)
	}
	if int64(len(b)) > limit {
		return nil, grammar.NewBudgetError(grammar.ErrStreamSize, "style sheet exceeds %d bytes", limit)
	}
	return b, nil
}

// Scanner emits the events of one source text.
type Scanner struct {
	src []byte
	l   *css.Lexer
	pos int
	h   Handler
}

// New returns a Scanner over src.
func New(src []byte) *Scanner {
	return &Scanner{
		src: src,
		l:   css.NewLexer(parse.NewInputBytes(src)),
	}
}

// Run emits all events to h, ending with EndOfStream. It returns early when h is a Stopper that reports being stopped.
func (s *Scanner) Run(h Handler) {
	s.h = h
	stopper, _ := h.(Stopper)
	for {
		tt, data := s.l.Next()
		if tt == css.ErrorToken {
			if err := s.l.Err(); err != nil && err != io.EOF {
				h.LexicalError(s.pos, err.Error())
			}
			h.EndOfStream(len(s.src))
			return
		}
		s.emit(tt, data)
		s.pos += len(data)
		if stopper != nil && stopper.Stopped() {
			return
		}
	}
}

func (s *Scanner) emit(tt css.TokenType, data []byte) {
	h, pos := s.h, s.pos
	switch tt {
	case css.IdentToken, css.CustomPropertyNameToken, css.NumberToken, css.PercentageToken, css.DimensionToken:
		s.emitName(pos, data)
	case css.UnicodeRangeToken:
		h.Word(pos, string(data))
	case css.FunctionToken:
		s.emitName(pos, data[:len(data)-1])
		h.LeftParen(pos + len(data) - 1)
	case css.AtKeywordToken, css.HashToken:
		h.Character(pos, rune(data[0]))
		s.emitName(pos+1, data[1:])
	case css.StringToken:
		s.emitString(pos, data)
	case css.BadStringToken:
		h.LexicalError(pos, "unterminated string")
		if n := len(data); 0 < n && (data[n-1] == '\n' || data[n-1] == '\r' || data[n-1] == '\f') {
			h.Separator(pos+n-1, rune(data[n-1]))
		}
	case css.URLToken:
		s.emitURL(pos, data)
	case css.BadURLToken:
		h.LexicalError(pos, "bad url")
	case css.DelimToken:
		r, _ := utf8.DecodeRune(data)
		h.Character(pos, r)
	case css.IncludeMatchToken, css.DashMatchToken, css.PrefixMatchToken, css.SuffixMatchToken, css.SubstringMatchToken, css.ColumnToken:
		h.Character(pos, rune(data[0]))
		h.Character(pos+1, rune(data[1]))
	case css.WhitespaceToken:
		h.Separator(pos, rune(data[0]))
	case css.CDOToken, css.CDCToken:
		h.Commented(pos, CommentSGML, string(data))
	case css.ColonToken, css.SemicolonToken, css.CommaToken:
		h.Character(pos, rune(data[0]))
	case css.LeftBracketToken:
		h.LeftBracket(pos)
	case css.RightBracketToken:
		h.RightBracket(pos)
	case css.LeftParenthesisToken:
		h.LeftParen(pos)
	case css.RightParenthesisToken:
		h.RightParen(pos)
	case css.LeftBraceToken:
		h.LeftBrace(pos)
	case css.RightBraceToken:
		h.RightBrace(pos)
	case css.CommentToken:
		text := data[2:]
		if bytes.HasSuffix(text, []byte("*/")) {
			text = text[:len(text)-2]
		}
		h.Commented(pos, CommentRegular, string(text))
	}
}

// emitName splits a name at its escapes into Word and Escaped events.
func (s *Scanner) emitName(pos int, data []byte) {
	start := 0
	for i := 0; i < len(data); {
		if data[i] != '\\' {
			i++
			continue
		}
		if start < i {
			s.h.Word(pos+start, string(data[start:i]))
		}
		r, n := DecodeEscape(data[i:])
		s.h.Escaped(pos+i, r)
		i += n
		start = i
	}
	if start < len(data) {
		s.h.Word(pos+start, string(data[start:]))
	}
}

func (s *Scanner) emitString(pos int, data []byte) {
	quote := data[0]
	content := data[1:]
	if 0 < len(content) && content[len(content)-1] == quote && !escapedAt(content, len(content)-1) {
		content = content[:len(content)-1]
	}
	text := grammar.Unescape(string(content))
	if hasControl(content) {
		s.h.QuotedWithControl(pos, text, rune(quote))
	} else {
		s.h.Quoted(pos, text, rune(quote))
	}
}

func (s *Scanner) emitURL(pos int, data []byte) {
	open := bytes.IndexByte(data, '(')
	s.emitName(pos, data[:open])
	s.h.LeftParen(pos + open)
	inner := data[open+1:]
	closed := 0 < len(inner) && inner[len(inner)-1] == ')'
	if closed {
		inner = inner[:len(inner)-1]
	}
	offset := pos + open + 1
	trimmed := bytes.TrimLeft(inner, " \t\r\n\f")
	offset += len(inner) - len(trimmed)
	trimmed = bytes.TrimRight(trimmed, " \t\r\n\f")
	if 0 < len(trimmed) && (trimmed[0] == '"' || trimmed[0] == '\'') {
		s.emitString(offset, trimmed)
	} else {
		s.h.Quoted(offset, grammar.Unescape(string(trimmed)), 0)
	}
	if closed {
		s.h.RightParen(pos + len(data) - 1)
	}
}

func escapedAt(b []byte, i int) bool {
	n := 0
	for j := i - 1; 0 <= j && b[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func hasControl(b []byte) bool {
	for _, c := range b {
		if c < 0x20 && c != '\n' && c != '\r' && c != '\f' || c == 0x7F {
			return true
		}
	}
	return false
}

// DecodeEscape decodes the escape at the start of b, returning the code point and the number of bytes consumed.
func DecodeEscape(b []byte) (rune, int) {
	if len(b) < 2 {
		return utf8.RuneError, len(b)
	}
	i := 1
	if isHex(b[i]) {
		for i < len(b) && i < 7 && isHex(b[i]) {
			i++
		}
		cp, _ := strconv.ParseUint(string(b[1:i]), 16, 32)
		if i < len(b) {
			switch b[i] {
			case ' ', '\t', '\n', '\f':
				i++
			case '\r':
				i++
				if i < len(b) && b[i] == '\n' {
					i++
				}
			}
		}
		return grammar.ValidCodepoint(rune(cp)), i
	}
	r, n := utf8.DecodeRune(b[1:])
	return r, 1 + n
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
