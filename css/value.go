package css

import (
	"strings"

	"github.com/cssgrammar/grammar"
	"github.com/cssgrammar/grammar/lexical"
)

// frame is an open function or sub-expression of a value.
type frame struct {
	fn       lexical.Value
	last     lexical.Value
	math     bool // operands and operators alternate
	operand  bool // an operand is expected next
	brackets int

	url      bool // url() collecting its argument
	uri      string
	quote    rune
	hasURI   bool
	urlStart int
}

// valueRec builds the lexical value of a declaration, a media feature or a @supports predicate. It finishes at a
// token accepted by stop outside of functions, or at the end of the stream.
type valueRec struct {
	m      *manager
	a      *lexical.Arena
	prop   string
	custom bool
	lower  bool
	stop   func(t token) bool
	done   func(v lexical.Value, ok bool)

	first, last lexical.Value
	frames      []frame
	brackets    int
	space       bool     // a separator precedes the current token
	opSpace     bool     // the previous operator must be followed by a separator
	comments    []string // preceding comments of the next unit
	keyword     bool

	progid    bool
	progStart int
	progDepth int

	inError bool
	depth   int
	braces  int

	block      int // depth of a {} block being collected
	blockStart int
}

func newValueRec(m *manager, prop string, stop func(t token) bool, done func(v lexical.Value, ok bool)) *valueRec {
	custom := strings.HasPrefix(prop, "--")
	return &valueRec{
		m:      m,
		a:      lexical.NewArena(m.opts.EditLimit()),
		prop:   prop,
		custom: custom,
		lower:  prop != "" && !custom && !m.profile.PreservesCase(prop),
		stop:   stop,
		done:   done,
	}
}

// stopDeclaration ends declaration values.
func stopDeclaration(t token) bool {
	return t.isChar(';') || t.isChar('!') || t.kind == rbraceTok
}

// stopParen ends values inside a parenthesized predicate.
func stopParen(t token) bool {
	return t.kind == rparenTok || t.isChar('!')
}

func (v *valueRec) name() string {
	return "value"
}

func (v *valueRec) frame() *frame {
	if n := len(v.frames); 0 < n {
		return &v.frames[n-1]
	}
	return nil
}

func (v *valueRec) handle(t token) {
	if v.inError {
		v.recover(t)
		return
	} else if 0 < v.block {
		v.collectBlock(t)
		return
	} else if v.progid {
		v.collectProgid(t)
		return
	} else if v.opSpace {
		v.opSpace = false
		if t.kind != separatorTok && t.kind != eofTok {
			v.fail(t, grammar.ErrInvalidOperator, "operators + and - must be surrounded by whitespace")
			return
		}
	}

	switch t.kind {
	case separatorTok:
		v.space = true
		return
	case commentTok:
		v.comment(t.text)
		return
	}
	if len(v.frames) == 0 && (v.brackets == 0 || t.kind == rbraceTok) && v.stop(t) || t.kind == eofTok {
		v.end(t)
		return
	}
	if f := v.frame(); f != nil && f.url {
		v.urlArgument(t)
		v.space = false
		return
	}

	switch t.kind {
	case numberTok:
		v.number(t)
	case identTok:
		v.ident(t)
	case hashTok:
		v.hash(t)
	case functionTok:
		v.function(t)
	case quotedTok:
		if v.expectOperand(t) {
			if u, ok := v.newText(lexical.String, t.text); ok {
				u.SetQuote(byte(t.c))
				v.add(u)
			}
		}
	case lparenTok:
		if f := v.frame(); (f == nil || !f.math) && v.custom {
			if u, ok := v.newUnit(lexical.SubExpression); ok {
				v.add(u)
				v.frames = append(v.frames, frame{fn: u})
			}
		} else if f == nil || !f.math {
			v.fail(t, grammar.ErrUnexpectedChar, "parenthesis outside of a math function")
		} else if v.expectOperand(t) {
			if u, ok := v.newUnit(lexical.SubExpression); ok {
				v.add(u)
				v.frames = append(v.frames, frame{fn: u, math: true, operand: true})
			}
		}
	case rparenTok:
		v.closeFrame(t)
	case lbracketTok:
		if f := v.frame(); f != nil && f.math {
			v.fail(t, grammar.ErrUnexpectedChar, "bracket in a math function")
		} else if u, ok := v.newUnit(lexical.LeftBracket); ok {
			if f != nil {
				f.brackets++
			} else {
				v.brackets++
			}
			v.add(u)
		}
	case rbracketTok:
		n := &v.brackets
		if f := v.frame(); f != nil {
			n = &f.brackets
		}
		if *n == 0 {
			v.fail(t, grammar.ErrUnmatchedBracket, "unmatched ]")
		} else if u, ok := v.newUnit(lexical.RightBracket); ok {
			*n--
			v.add(u)
		}
	case lbraceTok:
		if f := v.frame(); v.custom && (f == nil || !f.math) {
			v.block, v.blockStart = 1, t.pos
		} else {
			v.fail(t, grammar.ErrUnexpectedChar, "unexpected %s in value", t.describe())
		}
	case charTok:
		v.char(t)
	default:
		v.fail(t, grammar.ErrUnexpectedChar, "unexpected %s in value", t.describe())
	}
	v.space = false
}

////////////////////////////////////////////////////////////////

func (v *valueRec) newUnit(typ lexical.Type) (lexical.Value, bool) {
	u, err := v.a.New(typ)
	if err != nil {
		v.m.abort(err)
		return u, false
	}
	return u, true
}

func (v *valueRec) newText(typ lexical.Type, text string) (lexical.Value, bool) {
	u, err := v.a.NewText(typ, text)
	if err != nil {
		v.m.abort(err)
		return u, false
	}
	return u, true
}

// add links u at the end of the current function or the value, with the pending comments.
func (v *valueRec) add(u lexical.Value) {
	for _, c := range v.comments {
		u.AddPrecedingComment(c)
	}
	v.comments = nil
	if f := v.frame(); f != nil {
		v.a.AppendParameter(f.fn, f.last, u)
		f.last = u
		return
	}
	if v.last.IsNil() {
		v.first = u
	} else {
		v.a.Append(v.last, u)
	}
	v.last = u
}

func (v *valueRec) comment(text string) {
	last := v.last
	if f := v.frame(); f != nil {
		last = f.last
	}
	if last.IsNil() || v.space {
		v.comments = append(v.comments, text)
	} else {
		last.AddTrailingComment(text)
	}
}

// expectOperand checks that an operand may follow in a math function.
func (v *valueRec) expectOperand(t token) bool {
	if f := v.frame(); f != nil && f.math {
		if !f.operand {
			v.fail(t, grammar.ErrInvalidOperator, "missing operator before %s", t.describe())
			return false
		}
		f.operand = false
	}
	return true
}

// expectOperator checks that an operator may follow in a math function.
func (v *valueRec) expectOperator(t token) bool {
	if f := v.frame(); f != nil && f.math {
		if f.operand {
			v.fail(t, grammar.ErrInvalidOperator, "missing operand before %s", t.describe())
			return false
		}
		f.operand = true
	}
	return true
}

// ieHack recognizes values ending in \9 as compatibility identifiers.
func (v *valueRec) ieHack(t token) bool {
	if !v.m.opts.Flags.Has(grammar.FlagIEValues) {
		return false
	}
	raw := strings.TrimRight(t.raw, " \t\r\n\f")
	if !strings.HasSuffix(raw, `\9`) {
		return false
	}
	v.m.warning(t.pos, grammar.WarnCompatHack, "compatibility hack %s", raw)
	if u, ok := v.newText(lexical.CompatIdent, raw); ok {
		v.add(u)
	}
	return true
}

func (v *valueRec) number(t token) {
	if v.ieHack(t) {
		return
	}
	n, ok := lexical.ParseNumeric(t.text)
	if !ok {
		v.fail(t, grammar.ErrInvalidValue, "invalid number %s", t.describe())
		return
	} else if !v.expectOperand(t) {
		return
	}
	u, err := v.a.NewNumeric(n)
	if err != nil {
		v.m.abort(err)
		return
	}
	v.add(u)
}

func (v *valueRec) ident(t token) {
	if v.ieHack(t) {
		return
	}
	lower := strings.ToLower(t.text)
	if lower == "progid" && v.m.opts.Flags.Has(grammar.FlagIEValues) && len(v.frames) == 0 {
		v.progid, v.progStart, v.progDepth = true, t.pos, 0
		return
	} else if !v.expectOperand(t) {
		return
	}

	typ := lexical.Ident
	if isUnicodeRange(t.text) {
		typ = lexical.UnicodeRange
		if strings.IndexByte(t.text, '?') != -1 {
			typ = lexical.UnicodeWildcard
		}
	} else if kt := lexical.KeywordType(lower); kt != lexical.Unknown {
		if len(v.frames) == 0 && v.first.IsNil() {
			typ = kt
			v.keyword = true
		} else if !v.custom {
			v.fail(t, grammar.ErrInvalidValue, "%s must be the only value", lower)
			return
		}
	}

	text := t.text
	if typ.IsKeyword() || v.lower && !t.escaped {
		text = lower
	}
	if u, ok := v.newText(typ, text); ok {
		u.SetEscaped(t.escaped)
		v.add(u)
	}
}

func (v *valueRec) hash(t token) {
	if !lexical.ValidHexColor(t.text) {
		v.fail(t, grammar.ErrInvalidValue, "invalid color %s", t.describe())
		return
	} else if !v.expectOperand(t) {
		return
	}
	if u, ok := v.newText(lexical.RGBColor, "#"+t.text); ok {
		v.add(u)
	}
}

func (v *valueRec) function(t token) {
	lower := strings.ToLower(t.text)
	if !v.expectOperand(t) {
		return
	} else if lower == "url" {
		v.frames = append(v.frames, frame{url: true, urlStart: t.pos})
		return
	}
	typ := lexical.FunctionType(lower)
	name := t.text
	if v.lower || typ != lexical.Function && typ != lexical.PrefixedFunction {
		name = lower
	}
	u, ok := v.newText(typ, name)
	if !ok {
		return
	}
	v.add(u)
	v.frames = append(v.frames, frame{fn: u, math: typ.IsMath(), operand: true})
}

func (v *valueRec) urlArgument(t token) {
	f := v.frame()
	switch {
	case t.kind == quotedTok && !f.hasURI:
		f.uri, f.quote, f.hasURI = t.text, t.c, true
	case t.kind == rparenTok:
		v.closeFrame(t)
	default:
		v.fail(t, grammar.ErrInvalidValue, "unexpected %s in url()", t.describe())
	}
}

func (v *valueRec) closeFrame(t token) {
	f := v.frame()
	if f == nil {
		v.fail(t, grammar.ErrUnmatchedBracket, "unmatched )")
		return
	} else if 0 < f.brackets {
		v.fail(t, grammar.ErrUnmatchedBracket, "unclosed [ in function")
		return
	} else if f.math && f.operand {
		v.fail(t, grammar.ErrInvalidOperator, "incomplete expression")
		return
	}
	v.popFrame()
}

func (v *valueRec) popFrame() {
	f := v.frames[len(v.frames)-1]
	v.frames = v.frames[:len(v.frames)-1]
	if f.url {
		if u, ok := v.newText(lexical.URI, f.uri); ok {
			u.SetQuote(byte(f.quote))
			v.add(u)
		}
	}
}

func (v *valueRec) char(t token) {
	f := v.frame()
	math := f != nil && f.math
	var typ lexical.Type
	switch t.c {
	case ',':
		if math && (f.fn.Type() == lexical.Calc || f.fn.Type() == lexical.SubExpression) {
			v.fail(t, grammar.ErrInvalidOperator, "comma in calc()")
			return
		}
		typ = lexical.OperatorComma
	case '/':
		typ = lexical.OperatorSlash
	case '*':
		if !math && !v.custom {
			v.fail(t, grammar.ErrUnexpectedChar, "* outside of a math function")
			return
		}
		typ = lexical.OperatorMultiply
	case '+', '-':
		if !math && !v.custom {
			v.fail(t, grammar.ErrUnexpectedChar, "unexpected %s", t.describe())
			return
		} else if math && !v.space {
			v.fail(t, grammar.ErrInvalidOperator, "operators + and - must be surrounded by whitespace")
			return
		}
		v.opSpace = math
		typ = lexical.OperatorPlus
		if t.c == '-' {
			typ = lexical.OperatorMinus
		}
	default:
		if v.custom && !math {
			if u, ok := v.newText(lexical.Unknown, string(t.c)); ok {
				v.add(u)
			}
			return
		}
		v.fail(t, grammar.ErrUnexpectedChar, "unexpected %s in value", t.describe())
		return
	}
	if !v.expectOperator(t) {
		return
	}
	if u, ok := v.newUnit(typ); ok {
		v.add(u)
	}
}

// collectBlock keeps a {} block of a custom property as its source text. The end of the stream closes it.
func (v *valueRec) collectBlock(t token) {
	end := t.end
	switch t.kind {
	case lbraceTok:
		v.block++
		return
	case rbraceTok:
		v.block--
		if 0 < v.block {
			return
		}
	case eofTok:
		end = t.pos
	default:
		return
	}
	text := v.m.text(v.blockStart, end) + strings.Repeat("}", v.block)
	v.block = 0
	if u, ok := v.newText(lexical.Block, text); ok {
		v.add(u)
	}
	if t.kind == eofTok {
		v.handle(t)
	}
}

// collectProgid swallows a progid: filter up to the end of the value.
func (v *valueRec) collectProgid(t token) {
	switch t.kind {
	case lparenTok, functionTok:
		v.progDepth++
		return
	case rparenTok:
		if 0 < v.progDepth {
			v.progDepth--
			return
		}
	}
	if 0 < v.progDepth || !(t.kind == eofTok || v.stop(t)) {
		return
	}
	v.progid = false
	text := strings.TrimSpace(v.m.text(v.progStart, t.pos))
	v.m.warning(v.progStart, grammar.WarnCompatHack, "compatibility value %s", text)
	if u, ok := v.newText(lexical.CompatIdent, text); ok {
		v.add(u)
		v.handle(t)
	}
}

////////////////////////////////////////////////////////////////

func (v *valueRec) end(t token) {
	for 0 < len(v.frames) {
		v.popFrame()
	}
	ok := true
	if 0 < v.brackets {
		v.m.syntaxError(t.pos, grammar.ErrUnmatchedBracket, "unclosed [")
		ok = false
	} else if v.first.IsNil() {
		if v.custom {
			u, uok := v.newUnit(lexical.Empty)
			v.add(u)
			ok = uok
		} else {
			v.m.syntaxError(t.pos, grammar.ErrEmptyValue, "empty value")
			ok = false
		}
	} else if v.keyword && !v.first.Next().IsNil() && !v.custom {
		v.m.syntaxError(v.first.Next().Index(), grammar.ErrInvalidValue, "%s must be the only value", v.first.Type())
		ok = false
	}
	v.m.restore()
	if ok {
		v.done(v.first, true)
	} else {
		v.done(lexical.Value{}, false)
	}
	v.m.handBack(t)
}

// fail reports an error and skips the rest of the value.
func (v *valueRec) fail(t token, code grammar.ErrorCode, msg string, a ...interface{}) {
	v.m.syntaxError(t.pos, code, msg, a...)
	v.inError = true
	v.depth = len(v.frames) + v.brackets
	for _, f := range v.frames {
		v.depth += f.brackets
	}
	v.recover(t)
}

func (v *valueRec) recover(t token) {
	switch t.kind {
	case eofTok:
		v.abandon(t)
	case lparenTok, functionTok, lbracketTok:
		v.depth++
	case rparenTok, rbracketTok:
		if v.depth == 0 && v.braces == 0 && v.stop(t) {
			v.abandon(t)
		} else if 0 < v.depth {
			v.depth--
		}
	case lbraceTok:
		v.braces++
	case rbraceTok:
		if v.braces == 0 {
			v.abandon(t)
		} else {
			v.braces--
		}
	default:
		if v.depth == 0 && v.braces == 0 && v.stop(t) {
			v.abandon(t)
		}
	}
}

func (v *valueRec) abandon(t token) {
	v.m.restore()
	v.done(lexical.Value{}, false)
	v.m.handBack(t)
}

// isUnicodeRange returns true for u+ followed by hex digits, wildcards and a range dash.
func isUnicodeRange(s string) bool {
	if len(s) < 3 || s[0] != 'u' && s[0] != 'U' || s[1] != '+' {
		return false
	}
	for i := 2; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' || c == '?' || c == '-') {
			return false
		}
	}
	return true
}
