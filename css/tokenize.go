package css

import (
	"strconv"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2"

	"github.com/cssgrammar/grammar/lexical"
	"github.com/cssgrammar/grammar/scan"
)

// tokenKind determines the type of a token.
type tokenKind uint8

// tokenKind values.
const (
	identTok tokenKind = iota
	numberTok
	functionTok
	hashTok
	atKeywordTok
	charTok
	quotedTok
	separatorTok
	lparenTok
	rparenTok
	lbracketTok
	rbracketTok
	lbraceTok
	rbraceTok
	commentTok
	eofTok
	lexErrTok
)

var tokenKindNames = [...]string{
	"Ident", "Number", "Function", "Hash", "AtKeyword", "Char", "Quoted", "Separator",
	"LeftParen", "RightParen", "LeftBracket", "RightBracket", "LeftBrace", "RightBrace",
	"Comment", "EOF", "LexicalError",
}

// String returns the string representation of a tokenKind.
func (k tokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// token is a lexical event after coalescing names. Positions are byte offsets.
type token struct {
	kind    tokenKind
	pos     int
	end     int
	text    string // unescaped name, quoted content or comment text
	raw     string // source text
	c       rune   // character, separator or quote
	escaped bool   // name contains escapes
	control bool   // quoted text contains control characters
	lf      bool   // separator contains a line feed
	sgml    bool   // <!-- or -->
}

func (t token) isChar(c rune) bool {
	return t.kind == charTok && t.c == c
}

func (t token) isIdent(name string) bool {
	return t.kind == identTok && parse.EqualFold([]byte(t.text), []byte(name))
}

// isFunction compares the name of a function token with a lowercase name.
func (t token) isFunction(name string) bool {
	return t.kind == functionTok && parse.EqualFold([]byte(t.text), []byte(name))
}

func (t token) isSpace() bool {
	return t.kind == separatorTok || t.kind == commentTok
}

// describe returns a short text for error messages.
func (t token) describe() string {
	switch t.kind {
	case charTok:
		return strconv.QuoteRune(t.c)
	case eofTok:
		return "end of input"
	case identTok, numberTok, hashTok, atKeywordTok, functionTok:
		return strconv.Quote(t.raw)
	}
	return t.kind.String()
}

////////////////////////////////////////////////////////////////

// tokenizer implements scan.Handler. It joins contiguous words and escapes into names, and names with a following
// parenthesis, # or @ into function, hash and at-keyword tokens, before dispatching them to the manager.
type tokenizer struct {
	m        *manager
	pending  token
	hasName  bool // pending holds a name
	hasMark  bool // pending holds a # or @ awaiting a name
	escFirst bool // the name starts with an escape and cannot be a number
}

func newTokenizer(m *manager) *tokenizer {
	return &tokenizer{m: m}
}

// Stopped returns true once the parse has been aborted.
func (z *tokenizer) Stopped() bool {
	return z.m.Stopped()
}

func (z *tokenizer) flush() {
	if z.hasName {
		t := z.pending
		t.raw = string(z.m.src[t.pos:t.end])
		switch {
		case z.hasMark:
			// kind already set to hash or at-keyword
		case !z.escFirst && lexical.IsNumericStart(t.text):
			t.kind = numberTok
		default:
			t.kind = identTok
		}
		z.hasName, z.hasMark = false, false
		z.m.dispatch(t)
	} else if z.hasMark {
		z.hasMark = false
		z.m.dispatch(z.pending)
	}
}

func (z *tokenizer) name(pos, end int, text string, escaped bool) {
	if z.hasName && z.pending.end == pos {
		z.pending.text += text
		z.pending.end = end
		z.pending.escaped = z.pending.escaped || escaped
		return
	} else if z.hasMark && !z.hasName && z.pending.end == pos {
		kind := hashTok
		if z.pending.c == '@' {
			kind = atKeywordTok
		}
		z.pending = token{kind: kind, pos: z.pending.pos, end: end, text: text, escaped: escaped}
		z.hasName = true
		return
	}
	z.flush()
	z.pending = token{pos: pos, end: end, text: text, escaped: escaped}
	z.hasName = true
	z.escFirst = escaped
}

func (z *tokenizer) emit(t token) {
	z.flush()
	z.m.dispatch(t)
}

func (z *tokenizer) Word(pos int, text string) {
	z.name(pos, pos+len(text), text, false)
}

func (z *tokenizer) Escaped(pos int, c rune) {
	_, n := scan.DecodeEscape(z.m.src[pos:])
	z.name(pos, pos+n, string(c), true)
}

func (z *tokenizer) Character(pos int, c rune) {
	z.flush()
	t := token{kind: charTok, pos: pos, end: pos + utf8.RuneLen(c), c: c, raw: string(c)}
	if c == '#' || c == '@' {
		z.pending = t
		z.hasMark = true
		return
	}
	z.m.dispatch(t)
}

func (z *tokenizer) Quoted(pos int, text string, quote rune) {
	z.emit(token{kind: quotedTok, pos: pos, end: quotedEnd(z.m.src, pos, quote), text: text, c: quote})
}

func (z *tokenizer) QuotedWithControl(pos int, text string, quote rune) {
	z.emit(token{kind: quotedTok, pos: pos, end: quotedEnd(z.m.src, pos, quote), text: text, c: quote, control: true})
}

// quotedEnd returns the offset after the string starting at pos. Unquoted URLs end at whitespace or a parenthesis.
func quotedEnd(src []byte, pos int, quote rune) int {
	i := pos
	if quote != 0 {
		i++
	}
	for i < len(src) {
		c := src[i]
		if c == '\\' {
			i += 2
			continue
		} else if quote != 0 && rune(c) == quote {
			return i + 1
		} else if quote == 0 && (c == ')' || c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f') {
			return i
		} else if quote != 0 && (c == '\n' || c == '\r' || c == '\f') {
			return i
		}
		i++
	}
	return len(src)
}

func (z *tokenizer) Separator(pos int, c rune) {
	src := z.m.src
	end := pos
	lf := false
loop:
	for ; end < len(src); end++ {
		switch src[end] {
		case '\n', '\r', '\f':
			lf = true
		case ' ', '\t':
		default:
			break loop
		}
	}
	z.emit(token{kind: separatorTok, pos: pos, end: end, c: c, lf: lf})
}

func (z *tokenizer) LeftParen(pos int) {
	if z.hasName && !z.hasMark && z.pending.end == pos {
		t := z.pending
		t.kind = functionTok
		t.end = pos + 1
		t.raw = string(z.m.src[t.pos:pos])
		z.hasName = false
		z.m.dispatch(t)
		return
	}
	z.emit(token{kind: lparenTok, pos: pos, end: pos + 1})
}

func (z *tokenizer) RightParen(pos int) {
	z.emit(token{kind: rparenTok, pos: pos, end: pos + 1})
}

func (z *tokenizer) LeftBracket(pos int) {
	z.emit(token{kind: lbracketTok, pos: pos, end: pos + 1})
}

func (z *tokenizer) RightBracket(pos int) {
	z.emit(token{kind: rbracketTok, pos: pos, end: pos + 1})
}

func (z *tokenizer) LeftBrace(pos int) {
	z.emit(token{kind: lbraceTok, pos: pos, end: pos + 1})
}

func (z *tokenizer) RightBrace(pos int) {
	z.emit(token{kind: rbraceTok, pos: pos, end: pos + 1})
}

func (z *tokenizer) Commented(pos int, kind scan.CommentKind, text string) {
	end := pos + len(text)
	if kind == scan.CommentRegular {
		end += 4
	}
	if len(z.m.src) < end {
		end = len(z.m.src)
	}
	z.emit(token{kind: commentTok, pos: pos, end: end, text: text, sgml: kind == scan.CommentSGML})
}

func (z *tokenizer) EndOfStream(n int) {
	z.emit(token{kind: eofTok, pos: n, end: n})
}

func (z *tokenizer) LexicalError(pos int, msg string) {
	z.emit(token{kind: lexErrTok, pos: pos, end: pos, text: msg})
}
